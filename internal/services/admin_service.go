// internal/services/admin_service.go
package services

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/culturelense/culturelense-backend/internal/apperrors"
	"github.com/culturelense/culturelense-backend/internal/models"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

type AdminService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// DashboardStats aggregates marketplace health for the admin overview.
// Each metric degrades independently: a failing query logs and reports
// zero instead of taking the whole dashboard down.
type DashboardStats struct {
	TotalUsers         int64   `json:"total_users"`
	TotalVendors       int64   `json:"total_vendors"`
	PendingVendors     int64   `json:"pending_vendors"`
	ActiveListings     int64   `json:"active_listings"`
	CompletedPurchases int64   `json:"completed_purchases"`
	PendingPurchases   int64   `json:"pending_purchases"`
	TotalRevenue       float64 `json:"total_revenue"`
}

type AuditLogSearchParams struct {
	utils.PaginationParams
	Action       string `json:"action,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
}

func NewAdminService(db *gorm.DB, logger *logrus.Logger) *AdminService {
	return &AdminService{db: db, logger: logger}
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	stats.TotalUsers = s.countOrZero("total_users",
		s.db.Model(&models.User{}))
	stats.TotalVendors = s.countOrZero("total_vendors",
		s.db.Model(&models.Vendor{}).Where("status = ?", models.VendorStatusApproved))
	stats.PendingVendors = s.countOrZero("pending_vendors",
		s.db.Model(&models.Vendor{}).Where("status = ?", models.VendorStatusPending))
	stats.ActiveListings = s.countOrZero("active_listings",
		s.db.Model(&models.Listing{}).Where("status = ?", models.ListingStatusActive))
	stats.CompletedPurchases = s.countOrZero("completed_purchases",
		s.db.Model(&models.Purchase{}).Where("status = ?", models.PurchaseStatusCompleted))
	stats.PendingPurchases = s.countOrZero("pending_purchases",
		s.db.Model(&models.Purchase{}).Where("status = ?", models.PurchaseStatusPending))

	var revenue *float64
	err := s.db.Model(&models.Purchase{}).
		Where("status = ?", models.PurchaseStatusCompleted).
		Select("SUM(amount)").Scan(&revenue).Error
	if err != nil {
		s.logger.WithError(err).Warn("Dashboard metric total_revenue unavailable")
	} else if revenue != nil {
		stats.TotalRevenue = *revenue
	}

	return stats, nil
}

func (s *AdminService) countOrZero(metric string, query *gorm.DB) int64 {
	var count int64
	if err := query.Count(&count).Error; err != nil {
		s.logger.WithError(err).WithField("metric", metric).Warn("Dashboard metric unavailable")
		return 0
	}
	return count
}

// GetPendingVendors lists applications awaiting review, oldest first so
// the queue is worked in arrival order.
func (s *AdminService) GetPendingVendors(params *utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Vendor{}).
		Where("status = ?", models.VendorStatusPending).
		Preload("User")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	var vendors []models.Vendor
	query = query.Order("created_at ASC")
	query = utils.ApplyPagination(query, *params)

	if err := query.Find(&vendors).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	result := utils.CreatePaginationResult(vendors, total, *params)
	return &result, nil
}

// GetRecentTransactions returns the latest purchases across all users,
// newest first.
func (s *AdminService) GetRecentTransactions(params *PurchaseSearchParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Purchase{}).
		Preload("User").Preload("Listing").Preload("ContentItem")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	var purchases []models.Purchase
	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params.PaginationParams)

	if err := query.Find(&purchases).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	result := utils.CreatePaginationResult(purchases, total, params.PaginationParams)
	return &result, nil
}

func (s *AdminService) GetAuditLogs(params *AuditLogSearchParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.AuditLog{}).Preload("User")

	if params.Action != "" {
		query = query.Where("action = ?", params.Action)
	}
	if params.ResourceType != "" {
		query = query.Where("resource_type = ?", params.ResourceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	var logs []models.AuditLog
	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params.PaginationParams)

	if err := query.Find(&logs).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	result := utils.CreatePaginationResult(logs, total, params.PaginationParams)
	return &result, nil
}
