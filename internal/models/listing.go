// internal/models/listing.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Listing struct {
	BaseModel
	VendorID    uuid.UUID      `json:"vendor_id" gorm:"type:uuid;not null;index"`
	EntityID    *uuid.UUID     `json:"entity_id,omitempty" gorm:"type:uuid;index"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Price       float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity    int            `json:"quantity" gorm:"not null;default:0"`
	Images      pq.StringArray `json:"images" gorm:"type:text[]"`
	Status      ListingStatus  `json:"status" gorm:"type:varchar(20);default:'draft';index"`

	// Relationships
	Vendor    Vendor          `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	Entity    *CulturalEntity `json:"entity,omitempty" gorm:"foreignKey:EntityID"`
	Purchases []Purchase      `json:"purchases,omitempty" gorm:"foreignKey:ListingID"`
}
