// internal/services/access_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/culturelense/culturelense-backend/internal/apperrors"
	"github.com/culturelense/culturelense-backend/internal/models"
)

// AccessService decides whether a user may open a content item. The
// decision is a point-in-time read of purchase state: a refund revokes
// access on the next evaluation without any extra bookkeeping.
type AccessService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// AccessDecision reports the outcome and which rule granted it.
type AccessDecision struct {
	HasAccess bool   `json:"has_access"`
	Reason    string `json:"reason"`
}

const (
	AccessReasonFreeContent     = "free_content"
	AccessReasonDirectPurchase  = "direct_purchase"
	AccessReasonEntityPurchase  = "entity_purchase"
	AccessReasonNoValidPurchase = "no_valid_purchase"
)

func NewAccessService(db *gorm.DB, logger *logrus.Logger) *AccessService {
	return &AccessService{db: db, logger: logger}
}

// Evaluate checks the three grant rules in order: free content, a
// completed purchase of the item itself, then a completed purchase of a
// marketplace listing attached to the same cultural entity. Only
// completed purchases count; pending, failed and refunded never grant.
func (s *AccessService) Evaluate(userID, contentItemID uuid.UUID) (*AccessDecision, error) {
	var item models.ContentItem
	if err := s.db.First(&item, "id = ?", contentItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "content item not found")
		}
		return nil, apperrors.Storage(err)
	}

	if !item.IsPaid {
		return &AccessDecision{HasAccess: true, Reason: AccessReasonFreeContent}, nil
	}

	var direct int64
	if err := s.db.Model(&models.Purchase{}).
		Where("user_id = ? AND content_item_id = ? AND status = ?",
			userID, contentItemID, models.PurchaseStatusCompleted).
		Count(&direct).Error; err != nil {
		return nil, apperrors.Storage(err)
	}
	if direct > 0 {
		return &AccessDecision{HasAccess: true, Reason: AccessReasonDirectPurchase}, nil
	}

	var viaEntity int64
	if err := s.db.Model(&models.Purchase{}).
		Joins("JOIN listings ON listings.id = purchases.listing_id").
		Where("purchases.user_id = ? AND purchases.status = ? AND listings.entity_id = ?",
			userID, models.PurchaseStatusCompleted, item.EntityID).
		Count(&viaEntity).Error; err != nil {
		return nil, apperrors.Storage(err)
	}
	if viaEntity > 0 {
		return &AccessDecision{HasAccess: true, Reason: AccessReasonEntityPurchase}, nil
	}

	return &AccessDecision{HasAccess: false, Reason: AccessReasonNoValidPurchase}, nil
}

// HasAccess is Evaluate reduced to its boolean.
func (s *AccessService) HasAccess(userID, contentItemID uuid.UUID) (bool, error) {
	decision, err := s.Evaluate(userID, contentItemID)
	if err != nil {
		return false, err
	}
	return decision.HasAccess, nil
}

// UnlockContent returns the protected content URL when access is granted.
func (s *AccessService) UnlockContent(userID, contentItemID uuid.UUID) (*models.ContentItem, error) {
	decision, err := s.Evaluate(userID, contentItemID)
	if err != nil {
		return nil, err
	}
	if !decision.HasAccess {
		return nil, apperrors.New(apperrors.KindUnauthorized, "content requires a purchase")
	}

	var item models.ContentItem
	if err := s.db.Preload("Entity").First(&item, "id = ?", contentItemID).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":         userID,
		"content_item_id": contentItemID,
		"reason":          decision.Reason,
	}).Debug("Content unlocked")

	return &item, nil
}

// AccessibleItems returns the content item IDs a user can open for one
// entity, used to decorate entity pages with lock markers.
func (s *AccessService) AccessibleItems(userID, entityID uuid.UUID) (map[uuid.UUID]bool, error) {
	var items []models.ContentItem
	if err := s.db.Where("entity_id = ?", entityID).Find(&items).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	access := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		decision, err := s.Evaluate(userID, item.ID)
		if err != nil {
			return nil, err
		}
		access[item.ID] = decision.HasAccess
	}
	return access, nil
}
