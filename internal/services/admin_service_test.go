// internal/services/admin_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/culturelense/culturelense-backend/internal/models"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

type AdminServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AdminService
}

func (s *AdminServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.service = NewAdminService(s.db, newTestLogger())
}

func (s *AdminServiceTestSuite) TestDashboardStats() {
	buyer := createTestUser(s.T(), s.db, models.UserRoleUser)
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 100, 5)

	pendingUser := createTestUser(s.T(), s.db, models.UserRoleUser)
	pendingVendor := &models.Vendor{
		UserID:       pendingUser.ID,
		BusinessName: "Awaiting Review",
		Status:       models.VendorStatusPending,
	}
	s.Require().NoError(s.db.Create(pendingVendor).Error)

	logger := newTestLogger()
	listings := NewListingService(s.db, logger)
	purchases := NewPurchaseService(s.db, listings, logger)

	_, err := purchases.Initiate(buyer.ID, &InitiatePurchaseRequest{
		ListingID:     &listing.ID,
		Quantity:      2,
		TransactionID: "txn_stats_completed",
	})
	s.Require().NoError(err)
	_, err = purchases.Complete("txn_stats_completed")
	s.Require().NoError(err)

	_, err = purchases.Initiate(buyer.ID, &InitiatePurchaseRequest{
		ListingID:     &listing.ID,
		Quantity:      1,
		TransactionID: "txn_stats_pending",
	})
	s.Require().NoError(err)

	stats, err := s.service.GetDashboardStats()
	s.Require().NoError(err)

	s.Equal(int64(3), stats.TotalUsers)
	s.Equal(int64(1), stats.TotalVendors)
	s.Equal(int64(1), stats.PendingVendors)
	s.Equal(int64(1), stats.ActiveListings)
	s.Equal(int64(1), stats.CompletedPurchases)
	s.Equal(int64(1), stats.PendingPurchases)
	s.Equal(200.0, stats.TotalRevenue)
}

func (s *AdminServiceTestSuite) TestDashboardStatsEmptyDatabase() {
	stats, err := s.service.GetDashboardStats()
	s.Require().NoError(err)

	s.Equal(int64(0), stats.TotalUsers)
	s.Equal(int64(0), stats.CompletedPurchases)
	s.Equal(0.0, stats.TotalRevenue)
}

func (s *AdminServiceTestSuite) TestPendingVendorsOldestFirst() {
	older := createTestUser(s.T(), s.db, models.UserRoleUser)
	newer := createTestUser(s.T(), s.db, models.UserRoleUser)

	first := &models.Vendor{
		UserID:       older.ID,
		BusinessName: "First In Queue",
		Status:       models.VendorStatusPending,
	}
	s.Require().NoError(s.db.Create(first).Error)
	s.Require().NoError(s.db.Model(first).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	second := &models.Vendor{
		UserID:       newer.ID,
		BusinessName: "Second In Queue",
		Status:       models.VendorStatusPending,
	}
	s.Require().NoError(s.db.Create(second).Error)

	params := utils.PaginationParams{Page: 1, Limit: 20}
	result, err := s.service.GetPendingVendors(&params)
	s.Require().NoError(err)
	s.Equal(int64(2), result.Total)

	vendors := result.Data.([]models.Vendor)
	s.Require().Len(vendors, 2)
	s.Equal("First In Queue", vendors[0].BusinessName)
	s.Equal("Second In Queue", vendors[1].BusinessName)
}

func (s *AdminServiceTestSuite) TestRecentTransactionsNewestFirst() {
	buyer := createTestUser(s.T(), s.db, models.UserRoleUser)
	_, vendor := createApprovedVendor(s.T(), s.db)
	listing := createActiveListing(s.T(), s.db, vendor.ID, 100, 5)

	logger := newTestLogger()
	listings := NewListingService(s.db, logger)
	purchases := NewPurchaseService(s.db, listings, logger)

	older, err := purchases.Initiate(buyer.ID, &InitiatePurchaseRequest{
		ListingID:     &listing.ID,
		Quantity:      1,
		TransactionID: "txn_older",
	})
	s.Require().NoError(err)
	s.Require().NoError(s.db.Model(&models.Purchase{}).
		Where("id = ?", older.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	_, err = purchases.Initiate(buyer.ID, &InitiatePurchaseRequest{
		ListingID:     &listing.ID,
		Quantity:      1,
		TransactionID: "txn_newer",
	})
	s.Require().NoError(err)

	params := PurchaseSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 20},
	}
	result, err := s.service.GetRecentTransactions(&params)
	s.Require().NoError(err)

	rows := result.Data.([]models.Purchase)
	s.Require().Len(rows, 2)
	s.Equal("txn_newer", rows[0].TransactionID)
	s.Equal("txn_older", rows[1].TransactionID)
}

func (s *AdminServiceTestSuite) TestAuditLogFilters() {
	admin := createTestUser(s.T(), s.db, models.UserRoleAdmin)
	_, vendor := createApprovedVendor(s.T(), s.db)

	vendors := NewVendorService(s.db, newTestLogger())
	_, err := vendors.Suspend(vendor.ID, admin.ID, "dispute")
	s.Require().NoError(err)

	params := AuditLogSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 20},
		Action:           "vendor_suspended",
	}
	result, err := s.service.GetAuditLogs(&params)
	s.Require().NoError(err)
	s.Equal(int64(1), result.Total)

	params.Action = "vendor_approved"
	result, err = s.service.GetAuditLogs(&params)
	s.Require().NoError(err)
	s.Equal(int64(0), result.Total)
}

func TestAdminServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceTestSuite))
}
