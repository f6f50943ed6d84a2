// internal/services/purchase_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/culturelense/culturelense-backend/internal/apperrors"
	"github.com/culturelense/culturelense-backend/internal/database"
	"github.com/culturelense/culturelense-backend/internal/models"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

type PurchaseService struct {
	db             *gorm.DB
	listingService *ListingService
	logger         *logrus.Logger
}

type InitiatePurchaseRequest struct {
	ListingID     *uuid.UUID `json:"listing_id,omitempty"`
	ContentItemID *uuid.UUID `json:"content_item_id,omitempty"`
	Quantity      int        `json:"quantity" validate:"gte=0"`
	TransactionID string     `json:"transaction_id" validate:"omitempty,min=8,max=255"`
}

type PurchaseSearchParams struct {
	utils.PaginationParams
	Status *models.PurchaseStatus `json:"status,omitempty"`
}

func NewPurchaseService(db *gorm.DB, listingService *ListingService, logger *logrus.Logger) *PurchaseService {
	return &PurchaseService{db: db, listingService: listingService, logger: logger}
}

// Initiate opens a pending purchase keyed by the caller's transaction ID.
// Calling it again with the same transaction ID returns the existing
// purchase in whatever state it has reached; no second row is created.
// Stock is not touched here, only at completion.
func (s *PurchaseService) Initiate(userID uuid.UUID, req *InitiatePurchaseRequest) (*models.Purchase, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid purchase request", err)
	}
	if (req.ListingID == nil) == (req.ContentItemID == nil) {
		return nil, apperrors.New(apperrors.KindValidation,
			"exactly one of listing_id and content_item_id is required")
	}

	// Callers without an external payment reference get a local key.
	if req.TransactionID == "" {
		generated, err := utils.GenerateTransactionID()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindValidation, "could not generate transaction id", err)
		}
		req.TransactionID = generated
	}

	// Replay of a known transaction ID returns the original purchase.
	if existing, err := s.GetByTransactionID(req.TransactionID); err == nil {
		if existing.UserID != userID {
			return nil, apperrors.New(apperrors.KindUnauthorized, "transaction belongs to another user")
		}
		return existing, nil
	} else if !apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, err
	}

	purchase := &models.Purchase{
		UserID:        userID,
		TransactionID: req.TransactionID,
		Status:        models.PurchaseStatusPending,
	}

	if req.ListingID != nil {
		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}

		listing, err := s.listingService.GetByID(*req.ListingID)
		if err != nil {
			return nil, err
		}
		if listing.Status != models.ListingStatusActive {
			return nil, apperrors.Newf(apperrors.KindOutOfStock, "listing is %s", listing.Status)
		}
		if listing.Vendor.UserID == userID {
			return nil, apperrors.New(apperrors.KindValidation, "cannot purchase your own listing")
		}
		if listing.Quantity < quantity {
			return nil, apperrors.Newf(apperrors.KindInsufficientStock,
				"requested %d units, %d available", quantity, listing.Quantity)
		}

		purchase.ListingID = req.ListingID
		purchase.Quantity = quantity
		purchase.Amount = listing.Price * float64(quantity)
	} else {
		var item models.ContentItem
		if err := s.db.First(&item, "id = ?", *req.ContentItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.New(apperrors.KindNotFound, "content item not found")
			}
			return nil, apperrors.Storage(err)
		}
		if !item.IsPaid {
			return nil, apperrors.New(apperrors.KindValidation, "content item is free")
		}

		var owned int64
		if err := s.db.Model(&models.Purchase{}).
			Where("user_id = ? AND content_item_id = ? AND status = ?",
				userID, item.ID, models.PurchaseStatusCompleted).
			Count(&owned).Error; err != nil {
			return nil, apperrors.Storage(err)
		}
		if owned > 0 {
			return nil, apperrors.New(apperrors.KindValidation, "content already purchased")
		}

		purchase.ContentItemID = req.ContentItemID
		purchase.Quantity = 1
		purchase.Amount = item.Price
	}

	if err := s.db.Create(purchase).Error; err != nil {
		// Two racing initiations with the same transaction ID collapse
		// onto the row the winner inserted.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.GetByTransactionID(req.TransactionID)
		}
		return nil, apperrors.Storage(err)
	}

	s.logger.WithFields(logrus.Fields{
		"purchase_id":    purchase.ID,
		"user_id":        userID,
		"transaction_id": purchase.TransactionID,
		"amount":         purchase.Amount,
	}).Info("Purchase initiated")

	return purchase, nil
}

// Complete settles a pending purchase after payment confirmation. For a
// listing purchase the stock decrement and the status flip commit
// together; if stock ran out since initiation the purchase is marked
// failed and the stock error is returned.
func (s *PurchaseService) Complete(transactionID string) (*models.Purchase, error) {
	purchase, err := s.GetByTransactionID(transactionID)
	if err != nil {
		return nil, err
	}
	if purchase.Status != models.PurchaseStatusPending {
		return nil, apperrors.Newf(apperrors.KindInvalidTransition,
			"cannot complete purchase in status %s", purchase.Status)
	}

	now := time.Now()

	txErr := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		// Claim the pending row; a concurrent settle loses the claim.
		result := tx.Model(&models.Purchase{}).
			Where("id = ? AND status = ?", purchase.ID, models.PurchaseStatusPending).
			Updates(map[string]interface{}{
				"status":       models.PurchaseStatusCompleted,
				"processed_at": now,
			})
		if result.Error != nil {
			return apperrors.Storage(result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.New(apperrors.KindInvalidTransition, "purchase is no longer pending")
		}

		if purchase.IsListingPurchase() {
			return s.listingService.DecrementStock(tx, *purchase.ListingID, purchase.Quantity)
		}
		return nil
	})

	if txErr != nil {
		kind := apperrors.KindOf(txErr)
		if kind == apperrors.KindInsufficientStock || kind == apperrors.KindOutOfStock {
			if _, failErr := s.Fail(transactionID, txErr.Error()); failErr != nil {
				s.logger.WithError(failErr).WithField("transaction_id", transactionID).
					Error("Failed to record purchase failure")
			}
		}
		return nil, txErr
	}

	purchase.Status = models.PurchaseStatusCompleted
	purchase.ProcessedAt = &now

	s.logger.WithFields(logrus.Fields{
		"purchase_id":    purchase.ID,
		"transaction_id": transactionID,
	}).Info("Purchase completed")

	return purchase, nil
}

// Fail closes a pending purchase with a reason. Stock was never taken for
// a pending purchase, so nothing is restored.
func (s *PurchaseService) Fail(transactionID, reason string) (*models.Purchase, error) {
	purchase, err := s.GetByTransactionID(transactionID)
	if err != nil {
		return nil, err
	}

	result := s.db.Model(&models.Purchase{}).
		Where("id = ? AND status = ?", purchase.ID, models.PurchaseStatusPending).
		Updates(map[string]interface{}{
			"status":         models.PurchaseStatusFailed,
			"failure_reason": reason,
		})
	if result.Error != nil {
		return nil, apperrors.Storage(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.Newf(apperrors.KindInvalidTransition,
			"cannot fail purchase in status %s", purchase.Status)
	}

	purchase.Status = models.PurchaseStatusFailed
	purchase.FailureReason = reason

	s.logger.WithFields(logrus.Fields{
		"purchase_id":    purchase.ID,
		"transaction_id": transactionID,
		"reason":         reason,
	}).Warn("Purchase failed")

	return purchase, nil
}

// Refund reverses a completed purchase. Listing stock flows back and a
// sold-out listing reopens; content access is revoked by the status flip
// alone.
func (s *PurchaseService) Refund(transactionID string, adminID uuid.UUID, reason string) (*models.Purchase, error) {
	purchase, err := s.GetByTransactionID(transactionID)
	if err != nil {
		return nil, err
	}
	if purchase.Status != models.PurchaseStatusCompleted {
		return nil, apperrors.Newf(apperrors.KindInvalidTransition,
			"cannot refund purchase in status %s", purchase.Status)
	}

	now := time.Now()

	txErr := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		result := tx.Model(&models.Purchase{}).
			Where("id = ? AND status = ?", purchase.ID, models.PurchaseStatusCompleted).
			Updates(map[string]interface{}{
				"status":         models.PurchaseStatusRefunded,
				"refunded_at":    now,
				"failure_reason": reason,
			})
		if result.Error != nil {
			return apperrors.Storage(result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.New(apperrors.KindInvalidTransition, "purchase is no longer completed")
		}

		if purchase.IsListingPurchase() {
			if err := s.listingService.RestoreStock(tx, *purchase.ListingID, purchase.Quantity); err != nil {
				return err
			}
		}

		return createAuditLog(tx, &adminID, "purchase_refunded", "purchase", &purchase.ID,
			models.JSONB{"status": string(models.PurchaseStatusCompleted)},
			models.JSONB{"status": string(models.PurchaseStatusRefunded), "reason": reason})
	})
	if txErr != nil {
		return nil, txErr
	}

	purchase.Status = models.PurchaseStatusRefunded
	purchase.RefundedAt = &now
	purchase.FailureReason = reason

	s.logger.WithFields(logrus.Fields{
		"purchase_id":    purchase.ID,
		"transaction_id": transactionID,
		"admin_id":       adminID,
	}).Info("Purchase refunded")

	return purchase, nil
}

func (s *PurchaseService) GetByID(purchaseID uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.Preload("Listing").Preload("ContentItem").First(&purchase, "id = ?", purchaseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "purchase not found")
		}
		return nil, apperrors.Storage(err)
	}
	return &purchase, nil
}

func (s *PurchaseService) GetByTransactionID(transactionID string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.First(&purchase, "transaction_id = ?", transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "purchase not found")
		}
		return nil, apperrors.Storage(err)
	}
	return &purchase, nil
}

// GetUserPurchases lists a buyer's purchase history, newest first.
func (s *PurchaseService) GetUserPurchases(userID uuid.UUID, params *PurchaseSearchParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Purchase{}).
		Where("user_id = ?", userID).
		Preload("Listing").Preload("ContentItem")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	var purchases []models.Purchase
	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "amount", "status"})
	query = utils.ApplyPagination(query, params.PaginationParams)

	if err := query.Find(&purchases).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	result := utils.CreatePaginationResult(purchases, total, params.PaginationParams)
	return &result, nil
}
