// internal/models/content.go
package models

import (
	"github.com/google/uuid"
)

// ContentItem is immutable reference content tied to a cultural entity.
// Paid items require a completed purchase to unlock.
type ContentItem struct {
	BaseModel
	EntityID    uuid.UUID   `json:"entity_id" gorm:"type:uuid;not null;index"`
	Kind        ContentKind `json:"kind" gorm:"type:varchar(20);not null;index"`
	Title       string      `json:"title" gorm:"size:255;not null"`
	Description string      `json:"description,omitempty" gorm:"type:text"`
	Price       float64     `json:"price" gorm:"type:decimal(10,2);default:0"`
	IsPaid      bool        `json:"is_paid" gorm:"default:true"`
	PreviewURL  string      `json:"preview_url,omitempty" gorm:"size:512"`
	ContentURL  string      `json:"-" gorm:"size:512;not null"`

	// Relationships
	Entity    CulturalEntity `json:"entity,omitempty" gorm:"foreignKey:EntityID"`
	Purchases []Purchase     `json:"purchases,omitempty" gorm:"foreignKey:ContentItemID"`
}
