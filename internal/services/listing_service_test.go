// internal/services/listing_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/culturelense/culturelense-backend/internal/apperrors"
	"github.com/culturelense/culturelense-backend/internal/models"
)

type ListingServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ListingService
}

func (s *ListingServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.service = NewListingService(s.db, newTestLogger())
}

func (s *ListingServiceTestSuite) TestCreateStartsAsDraft() {
	_, vendor := createApprovedVendor(s.T(), s.db)

	listing, err := s.service.Create(vendor.ID, &CreateListingRequest{
		Title:    "Tanjore painting, gold leaf",
		Price:    240.00,
		Quantity: 2,
	})

	s.Require().NoError(err)
	s.Equal(models.ListingStatusDraft, listing.Status)
	s.Equal(2, listing.Quantity)
}

func (s *ListingServiceTestSuite) TestPendingVendorStagesDraftsButCannotActivate() {
	user := createTestUser(s.T(), s.db, models.UserRoleUser)
	vendor := &models.Vendor{
		UserID:       user.ID,
		BusinessName: "Pending Shop",
		Status:       models.VendorStatusPending,
	}
	s.Require().NoError(s.db.Create(vendor).Error)

	listing, err := s.service.Create(vendor.ID, &CreateListingRequest{
		Title:    "Tanjore painting",
		Price:    240.00,
		Quantity: 2,
	})
	s.Require().NoError(err)
	s.Equal(models.ListingStatusDraft, listing.Status)

	_, err = s.service.Activate(listing.ID, vendor.ID)
	s.True(apperrors.IsKind(err, apperrors.KindVendorNotApproved))
}

func (s *ListingServiceTestSuite) TestActivateRequiresStock() {
	_, vendor := createApprovedVendor(s.T(), s.db)

	listing, err := s.service.Create(vendor.ID, &CreateListingRequest{
		Title:    "Tanjore painting",
		Price:    240.00,
		Quantity: 0,
	})
	s.Require().NoError(err)

	_, err = s.service.Activate(listing.ID, vendor.ID)
	s.True(apperrors.IsKind(err, apperrors.KindOutOfStock))
}

func (s *ListingServiceTestSuite) TestActivatePublishesDraft() {
	_, vendor := createApprovedVendor(s.T(), s.db)

	listing, err := s.service.Create(vendor.ID, &CreateListingRequest{
		Title:    "Tanjore painting",
		Price:    240.00,
		Quantity: 2,
	})
	s.Require().NoError(err)

	activated, err := s.service.Activate(listing.ID, vendor.ID)
	s.Require().NoError(err)
	s.Equal(models.ListingStatusActive, activated.Status)
}

func (s *ListingServiceTestSuite) TestActivateRejectsSold() {
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 100, 1)

	s.Require().NoError(s.db.Model(listing).
		Updates(map[string]interface{}{"status": models.ListingStatusSold, "quantity": 0}).Error)

	_, err := s.service.Activate(listing.ID, vendor.ID)
	s.True(apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func (s *ListingServiceTestSuite) TestDecrementStockFlipsToSoldAtZero() {
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 100, 3)

	s.Require().NoError(s.service.DecrementStock(s.db, listing.ID, 2))

	var after models.Listing
	s.Require().NoError(s.db.First(&after, "id = ?", listing.ID).Error)
	s.Equal(1, after.Quantity)
	s.Equal(models.ListingStatusActive, after.Status)

	s.Require().NoError(s.service.DecrementStock(s.db, listing.ID, 1))

	s.Require().NoError(s.db.First(&after, "id = ?", listing.ID).Error)
	s.Equal(0, after.Quantity)
	s.Equal(models.ListingStatusSold, after.Status)
}

func (s *ListingServiceTestSuite) TestDecrementStockReportsInsufficient() {
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 100, 1)

	err := s.service.DecrementStock(s.db, listing.ID, 2)
	s.True(apperrors.IsKind(err, apperrors.KindInsufficientStock))

	// The failed attempt must not touch the row.
	var after models.Listing
	s.Require().NoError(s.db.First(&after, "id = ?", listing.ID).Error)
	s.Equal(1, after.Quantity)
	s.Equal(models.ListingStatusActive, after.Status)
}

func (s *ListingServiceTestSuite) TestDecrementStockOnSoldListing() {
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 100, 1)

	s.Require().NoError(s.service.DecrementStock(s.db, listing.ID, 1))

	err := s.service.DecrementStock(s.db, listing.ID, 1)
	s.True(apperrors.IsKind(err, apperrors.KindOutOfStock))
}

func (s *ListingServiceTestSuite) TestRestoreStockReopensSoldListing() {
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 100, 1)

	s.Require().NoError(s.service.DecrementStock(s.db, listing.ID, 1))
	s.Require().NoError(s.service.RestoreStock(s.db, listing.ID, 1))

	var after models.Listing
	s.Require().NoError(s.db.First(&after, "id = ?", listing.ID).Error)
	s.Equal(1, after.Quantity)
	s.Equal(models.ListingStatusActive, after.Status)
}

func (s *ListingServiceTestSuite) TestRestockReopensSoldListing() {
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 100, 1)

	s.Require().NoError(s.service.DecrementStock(s.db, listing.ID, 1))

	restocked, err := s.service.Restock(listing.ID, vendor.ID, 4)
	s.Require().NoError(err)
	s.Equal(4, restocked.Quantity)
	s.Equal(models.ListingStatusActive, restocked.Status)
}

func (s *ListingServiceTestSuite) TestArchiveRejectsSoldListing() {
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 100, 1)

	s.Require().NoError(s.service.DecrementStock(s.db, listing.ID, 1))

	_, err := s.service.Archive(listing.ID, vendor.ID)
	s.True(apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func (s *ListingServiceTestSuite) TestUpdateChecksOwnership() {
	_, owner := createApprovedVendor(s.T(), s.db)
	_, intruder := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, owner.ID, 100, 1)

	price := 50.0
	_, err := s.service.Update(listing.ID, intruder.ID, &UpdateListingRequest{Price: &price})
	s.True(apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestListingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ListingServiceTestSuite))
}
