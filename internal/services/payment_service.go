// internal/services/payment_service.go
package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"gorm.io/gorm"

	"github.com/culturelense/culturelense-backend/internal/apperrors"
	"github.com/culturelense/culturelense-backend/internal/config"
	"github.com/culturelense/culturelense-backend/internal/models"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

// PaymentService drives the purchase lifecycle through Stripe. The Stripe
// payment intent ID doubles as the purchase transaction ID, so a webhook
// or confirmation replay maps onto the same purchase row.
type PaymentService struct {
	db              *gorm.DB
	config          *config.Config
	purchaseService *PurchaseService
	logger          *logrus.Logger
}

type CheckoutRequest struct {
	ListingID     *uuid.UUID `json:"listing_id,omitempty"`
	ContentItemID *uuid.UUID `json:"content_item_id,omitempty"`
	Quantity      int        `json:"quantity" validate:"gte=0"`
}

type CheckoutResponse struct {
	Purchase     *models.Purchase `json:"purchase"`
	ClientSecret string           `json:"client_secret"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type RefundRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
	Reason        string `json:"reason" validate:"required,max=500"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, purchaseService *PurchaseService, logger *logrus.Logger) *PaymentService {
	stripe.Key = cfg.Payment.StripeSecretKey

	return &PaymentService{
		db:              db,
		config:          cfg,
		purchaseService: purchaseService,
		logger:          logger,
	}
}

// Checkout prices the target, opens a Stripe payment intent and records a
// pending purchase under the intent's ID.
func (s *PaymentService) Checkout(userID uuid.UUID, req *CheckoutRequest) (*CheckoutResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid checkout request", err)
	}
	if (req.ListingID == nil) == (req.ContentItemID == nil) {
		return nil, apperrors.New(apperrors.KindValidation,
			"exactly one of listing_id and content_item_id is required")
	}

	amount, err := s.priceFor(req)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(s.config.Payment.Currency),
	}
	params.AddMetadata("user_id", userID.String())
	if req.ListingID != nil {
		params.AddMetadata("listing_id", req.ListingID.String())
	}
	if req.ContentItemID != nil {
		params.AddMetadata("content_item_id", req.ContentItemID.String())
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorageUnavailable, "payment provider error", err)
	}

	purchase, err := s.purchaseService.Initiate(userID, &InitiatePurchaseRequest{
		ListingID:     req.ListingID,
		ContentItemID: req.ContentItemID,
		Quantity:      req.Quantity,
		TransactionID: pi.ID,
	})
	if err != nil {
		// The intent is orphaned; cancel it so the user is never charged.
		if _, cancelErr := paymentintent.Cancel(pi.ID, nil); cancelErr != nil {
			s.logger.WithError(cancelErr).WithField("payment_intent", pi.ID).
				Warn("Failed to cancel orphaned payment intent")
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"purchase_id":    purchase.ID,
		"payment_intent": pi.ID,
		"amount":         amount,
	}).Info("Checkout created")

	return &CheckoutResponse{
		Purchase:     purchase,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// ConfirmPayment reconciles a purchase with the payment intent's state. A
// succeeded intent settles the purchase, a terminally failed one fails
// it, and an intent still in flight leaves the purchase pending.
func (s *PaymentService) ConfirmPayment(req *ConfirmPaymentRequest) (*models.Purchase, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid confirmation", err)
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorageUnavailable, "payment provider error", err)
	}

	purchase, err := s.purchaseService.GetByTransactionID(pi.ID)
	if err != nil {
		return nil, err
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		if purchase.Status == models.PurchaseStatusCompleted {
			return purchase, nil
		}
		return s.purchaseService.Complete(pi.ID)

	case stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusCanceled:
		if purchase.Status == models.PurchaseStatusFailed {
			return purchase, nil
		}
		return s.purchaseService.Fail(pi.ID, "payment "+string(pi.Status))

	default:
		// requires_action, requires_confirmation, processing
		return purchase, nil
	}
}

// ProcessRefund refunds the charge at Stripe and reverses the purchase.
func (s *PaymentService) ProcessRefund(adminID uuid.UUID, req *RefundRequest) (*models.Purchase, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid refund request", err)
	}

	purchase, err := s.purchaseService.GetByTransactionID(req.TransactionID)
	if err != nil {
		return nil, err
	}
	if purchase.Status != models.PurchaseStatusCompleted {
		return nil, apperrors.Newf(apperrors.KindInvalidTransition,
			"cannot refund purchase in status %s", purchase.Status)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(purchase.TransactionID),
		Reason:        stripe.String("requested_by_customer"),
	}
	if _, err := refund.New(params); err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorageUnavailable, "payment provider error", err)
	}

	return s.purchaseService.Refund(req.TransactionID, adminID, req.Reason)
}

func (s *PaymentService) priceFor(req *CheckoutRequest) (float64, error) {
	if req.ListingID != nil {
		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}

		var listing models.Listing
		if err := s.db.First(&listing, "id = ?", *req.ListingID).Error; err != nil {
			return 0, apperrors.New(apperrors.KindNotFound, "listing not found")
		}
		return listing.Price * float64(quantity), nil
	}

	var item models.ContentItem
	if err := s.db.First(&item, "id = ?", *req.ContentItemID).Error; err != nil {
		return 0, apperrors.New(apperrors.KindNotFound, "content item not found")
	}
	return item.Price, nil
}
