// internal/models/purchase.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase records one payment attempt. Exactly one of ContentItemID and
// ListingID is set: a content purchase unlocks paid content, a listing
// purchase transfers stock. TransactionID is the idempotency key supplied
// by the payment collaborator and is unique at the storage layer.
type Purchase struct {
	BaseModel
	UserID        uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index:idx_purchases_user_content"`
	ContentItemID *uuid.UUID     `json:"content_item_id,omitempty" gorm:"type:uuid;index:idx_purchases_user_content"`
	ListingID     *uuid.UUID     `json:"listing_id,omitempty" gorm:"type:uuid;index"`
	Quantity      int            `json:"quantity" gorm:"default:1"`
	Amount        float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Status        PurchaseStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	TransactionID string         `json:"transaction_id" gorm:"uniqueIndex;size:255;not null"`
	FailureReason string         `json:"failure_reason,omitempty" gorm:"type:text"`
	ProcessedAt   *time.Time     `json:"processed_at"`
	RefundedAt    *time.Time     `json:"refunded_at"`

	// Relationships
	User        User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ContentItem *ContentItem `json:"content_item,omitempty" gorm:"foreignKey:ContentItemID"`
	Listing     *Listing     `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
}

// IsListingPurchase reports whether this purchase targets marketplace
// stock rather than paid content.
func (p *Purchase) IsListingPurchase() bool {
	return p.ListingID != nil
}
