// internal/models/vendor.go
package models

import (
	"github.com/google/uuid"
)

// Vendor is a seller profile attached to a user account. A user holds at
// most one non-rejected vendor record at a time; rejected applications
// stay around so the user can re-apply.
type Vendor struct {
	BaseModel
	UserID       uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;index"`
	BusinessName string       `json:"business_name" gorm:"uniqueIndex;size:255;not null"`
	Description  string       `json:"description" gorm:"type:text"`
	Status       VendorStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	// Relationships
	User     User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Listings []Listing `json:"listings,omitempty" gorm:"foreignKey:VendorID"`
}
