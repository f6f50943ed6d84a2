// internal/services/purchase_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/culturelense/culturelense-backend/internal/apperrors"
	"github.com/culturelense/culturelense-backend/internal/models"
)

type PurchaseServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	listings *ListingService
	service  *PurchaseService
}

func (s *PurchaseServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	logger := newTestLogger()
	s.listings = NewListingService(s.db, logger)
	s.service = NewPurchaseService(s.db, s.listings, logger)
}

func (s *PurchaseServiceTestSuite) TestInitiateCreatesPendingPurchase() {
	buyer := createTestUser(s.T(), s.db, models.UserRoleUser)
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 120, 3)

	purchase, err := s.service.Initiate(buyer.ID, &InitiatePurchaseRequest{
		ListingID:     &listing.ID,
		Quantity:      2,
		TransactionID: "txn_test_0001",
	})

	s.Require().NoError(err)
	s.Equal(models.PurchaseStatusPending, purchase.Status)
	s.Equal(240.0, purchase.Amount)
	s.Equal(2, purchase.Quantity)

	// Stock is only taken at completion.
	var after models.Listing
	s.Require().NoError(s.db.First(&after, "id = ?", listing.ID).Error)
	s.Equal(3, after.Quantity)
}

func (s *PurchaseServiceTestSuite) TestInitiateIsIdempotent() {
	buyer := createTestUser(s.T(), s.db, models.UserRoleUser)
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 120, 3)

	req := &InitiatePurchaseRequest{
		ListingID:     &listing.ID,
		Quantity:      1,
		TransactionID: "txn_replay",
	}

	first, err := s.service.Initiate(buyer.ID, req)
	s.Require().NoError(err)

	second, err := s.service.Initiate(buyer.ID, req)
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	var count int64
	s.Require().NoError(s.db.Model(&models.Purchase{}).
		Where("transaction_id = ?", "txn_replay").Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *PurchaseServiceTestSuite) TestInitiateReplayAfterCompletionReturnsSettledPurchase() {
	buyer := createTestUser(s.T(), s.db, models.UserRoleUser)
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 120, 3)

	req := &InitiatePurchaseRequest{
		ListingID:     &listing.ID,
		Quantity:      1,
		TransactionID: "txn_settled_replay",
	}

	_, err := s.service.Initiate(buyer.ID, req)
	s.Require().NoError(err)
	_, err = s.service.Complete("txn_settled_replay")
	s.Require().NoError(err)

	replayed, err := s.service.Initiate(buyer.ID, req)
	s.Require().NoError(err)
	s.Equal(models.PurchaseStatusCompleted, replayed.Status)
}

func (s *PurchaseServiceTestSuite) TestInitiateRejectsOwnListing() {
	owner, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 120, 3)

	_, err := s.service.Initiate(owner.ID, &InitiatePurchaseRequest{
		ListingID:     &listing.ID,
		Quantity:      1,
		TransactionID: "txn_self",
	})
	s.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (s *PurchaseServiceTestSuite) TestInitiateRejectsFreeContent() {
	buyer := createTestUser(s.T(), s.db, models.UserRoleUser)
	entity := createTestEntity(s.T(), s.db)
	item := createContentItem(s.T(), s.db, entity.ID, false, 0)

	_, err := s.service.Initiate(buyer.ID, &InitiatePurchaseRequest{
		ContentItemID: &item.ID,
		TransactionID: "txn_free",
	})
	s.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (s *PurchaseServiceTestSuite) TestCompleteSettlesAndDecrementsStock() {
	buyer := createTestUser(s.T(), s.db, models.UserRoleUser)
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 120, 3)

	_, err := s.service.Initiate(buyer.ID, &InitiatePurchaseRequest{
		ListingID:     &listing.ID,
		Quantity:      2,
		TransactionID: "txn_complete",
	})
	s.Require().NoError(err)

	completed, err := s.service.Complete("txn_complete")
	s.Require().NoError(err)
	s.Equal(models.PurchaseStatusCompleted, completed.Status)
	s.NotNil(completed.ProcessedAt)

	var after models.Listing
	s.Require().NoError(s.db.First(&after, "id = ?", listing.ID).Error)
	s.Equal(1, after.Quantity)

	_, err = s.service.Complete("txn_complete")
	s.True(apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func (s *PurchaseServiceTestSuite) TestCompetingPurchasesOneFails() {
	alice := createTestUser(s.T(), s.db, models.UserRoleUser)
	bob := createTestUser(s.T(), s.db, models.UserRoleUser)
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 100, 3)

	_, err := s.service.Initiate(alice.ID, &InitiatePurchaseRequest{
		ListingID:     &listing.ID,
		Quantity:      2,
		TransactionID: "txn_alice",
	})
	s.Require().NoError(err)

	_, err = s.service.Initiate(bob.ID, &InitiatePurchaseRequest{
		ListingID:     &listing.ID,
		Quantity:      2,
		TransactionID: "txn_bob",
	})
	s.Require().NoError(err)

	_, err = s.service.Complete("txn_alice")
	s.Require().NoError(err)

	_, err = s.service.Complete("txn_bob")
	s.True(apperrors.IsKind(err, apperrors.KindInsufficientStock))

	failed, err := s.service.GetByTransactionID("txn_bob")
	s.Require().NoError(err)
	s.Equal(models.PurchaseStatusFailed, failed.Status)
	s.NotEmpty(failed.FailureReason)

	// The losing settlement never takes stock.
	var after models.Listing
	s.Require().NoError(s.db.First(&after, "id = ?", listing.ID).Error)
	s.Equal(1, after.Quantity)
	s.Equal(models.ListingStatusActive, after.Status)
}

func (s *PurchaseServiceTestSuite) TestFailClosesPendingPurchase() {
	buyer := createTestUser(s.T(), s.db, models.UserRoleUser)
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 100, 2)

	_, err := s.service.Initiate(buyer.ID, &InitiatePurchaseRequest{
		ListingID:     &listing.ID,
		Quantity:      1,
		TransactionID: "txn_fail",
	})
	s.Require().NoError(err)

	failed, err := s.service.Fail("txn_fail", "card declined")
	s.Require().NoError(err)
	s.Equal(models.PurchaseStatusFailed, failed.Status)
	s.Equal("card declined", failed.FailureReason)

	_, err = s.service.Complete("txn_fail")
	s.True(apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func (s *PurchaseServiceTestSuite) TestRefundRestoresStockAndReopensListing() {
	buyer := createTestUser(s.T(), s.db, models.UserRoleUser)
	admin := createTestUser(s.T(), s.db, models.UserRoleAdmin)
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 100, 2)

	_, err := s.service.Initiate(buyer.ID, &InitiatePurchaseRequest{
		ListingID:     &listing.ID,
		Quantity:      2,
		TransactionID: "txn_refund",
	})
	s.Require().NoError(err)

	_, err = s.service.Complete("txn_refund")
	s.Require().NoError(err)

	var sold models.Listing
	s.Require().NoError(s.db.First(&sold, "id = ?", listing.ID).Error)
	s.Equal(models.ListingStatusSold, sold.Status)

	refunded, err := s.service.Refund("txn_refund", admin.ID, "damaged in transit")
	s.Require().NoError(err)
	s.Equal(models.PurchaseStatusRefunded, refunded.Status)
	s.NotNil(refunded.RefundedAt)

	var after models.Listing
	s.Require().NoError(s.db.First(&after, "id = ?", listing.ID).Error)
	s.Equal(2, after.Quantity)
	s.Equal(models.ListingStatusActive, after.Status)

	_, err = s.service.Refund("txn_refund", admin.ID, "again")
	s.True(apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func (s *PurchaseServiceTestSuite) TestRefundRequiresCompletedPurchase() {
	buyer := createTestUser(s.T(), s.db, models.UserRoleUser)
	admin := createTestUser(s.T(), s.db, models.UserRoleAdmin)
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 100, 2)

	_, err := s.service.Initiate(buyer.ID, &InitiatePurchaseRequest{
		ListingID:     &listing.ID,
		Quantity:      1,
		TransactionID: "txn_pending_refund",
	})
	s.Require().NoError(err)

	_, err = s.service.Refund("txn_pending_refund", admin.ID, "too early")
	s.True(apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func (s *PurchaseServiceTestSuite) TestContentPurchaseLifecycle() {
	buyer := createTestUser(s.T(), s.db, models.UserRoleUser)
	entity := createTestEntity(s.T(), s.db)
	item := createContentItem(s.T(), s.db, entity.ID, true, 9.99)

	purchase, err := s.service.Initiate(buyer.ID, &InitiatePurchaseRequest{
		ContentItemID: &item.ID,
		TransactionID: "txn_content",
	})
	s.Require().NoError(err)
	s.Equal(9.99, purchase.Amount)

	_, err = s.service.Complete("txn_content")
	s.Require().NoError(err)

	// A second buy of owned content is refused at initiation.
	_, err = s.service.Initiate(buyer.ID, &InitiatePurchaseRequest{
		ContentItemID: &item.ID,
		TransactionID: "txn_content_again",
	})
	s.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func TestPurchaseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PurchaseServiceTestSuite))
}
