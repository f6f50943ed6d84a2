// internal/services/vendor_service.go
package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/culturelense/culturelense-backend/internal/apperrors"
	"github.com/culturelense/culturelense-backend/internal/database"
	"github.com/culturelense/culturelense-backend/internal/models"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

type VendorService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

type VendorApplicationRequest struct {
	BusinessName string `json:"business_name" validate:"required,business_name"`
	Description  string `json:"description" validate:"max=2000"`
}

type VendorSearchParams struct {
	utils.PaginationParams
	Status *models.VendorStatus `json:"status,omitempty"`
}

func NewVendorService(db *gorm.DB, logger *logrus.Logger) *VendorService {
	return &VendorService{db: db, logger: logger}
}

// Apply files a vendor application for the given user. A user may hold at
// most one application that is not rejected; a rejected user may re-apply.
func (s *VendorService) Apply(userID uuid.UUID, req *VendorApplicationRequest) (*models.Vendor, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid vendor application", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "user not found")
		}
		return nil, apperrors.Storage(err)
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.New(apperrors.KindValidation, "account is not active")
	}

	// A pending, approved or suspended application blocks a new one.
	var existing models.Vendor
	err := s.db.Where("user_id = ? AND status <> ?", userID, models.VendorStatusRejected).
		First(&existing).Error
	if err == nil {
		return nil, apperrors.Newf(apperrors.KindDuplicateApplication,
			"an application already exists with status %s", existing.Status)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Storage(err)
	}

	businessName := strings.TrimSpace(req.BusinessName)

	var nameCount int64
	if err := s.db.Model(&models.Vendor{}).
		Where("business_name = ? AND status <> ?", businessName, models.VendorStatusRejected).
		Count(&nameCount).Error; err != nil {
		return nil, apperrors.Storage(err)
	}
	if nameCount > 0 {
		return nil, apperrors.New(apperrors.KindDuplicateApplication, "business name is already taken")
	}

	vendor := &models.Vendor{
		UserID:       userID,
		BusinessName: businessName,
		Description:  strings.TrimSpace(req.Description),
		Status:       models.VendorStatusPending,
	}

	if err := s.db.Create(vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.New(apperrors.KindDuplicateApplication, "business name is already taken")
		}
		return nil, apperrors.Storage(err)
	}

	s.logger.WithFields(logrus.Fields{
		"vendor_id":     vendor.ID,
		"user_id":       userID,
		"business_name": businessName,
	}).Info("Vendor application submitted")

	return vendor, nil
}

// Approve moves a pending application to approved and elevates the user's
// role so vendor-only surfaces open up.
func (s *VendorService) Approve(vendorID, adminID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&vendor, "id = ?", vendorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "vendor application not found")
			}
			return apperrors.Storage(err)
		}

		if vendor.Status != models.VendorStatusPending {
			return apperrors.Newf(apperrors.KindInvalidTransition,
				"cannot approve vendor in status %s", vendor.Status)
		}

		vendor.Status = models.VendorStatusApproved
		if err := tx.Save(&vendor).Error; err != nil {
			return apperrors.Storage(err)
		}

		// user -> vendor; admins keep their role
		if err := tx.Model(&models.User{}).
			Where("id = ? AND role = ?", vendor.UserID, models.UserRoleUser).
			Update("role", models.UserRoleVendor).Error; err != nil {
			return apperrors.Storage(err)
		}

		return createAuditLog(tx, &adminID, "vendor_approved", "vendor", &vendor.ID,
			models.JSONB{"status": string(models.VendorStatusPending)},
			models.JSONB{"status": string(models.VendorStatusApproved)})
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"vendor_id": vendor.ID,
		"admin_id":  adminID,
	}).Info("Vendor approved")

	return &vendor, nil
}

// Reject closes a pending application with a reason. The record is kept so
// the user can re-apply later.
func (s *VendorService) Reject(vendorID, adminID uuid.UUID, reason string) (*models.Vendor, error) {
	var vendor models.Vendor

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&vendor, "id = ?", vendorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "vendor application not found")
			}
			return apperrors.Storage(err)
		}

		if vendor.Status != models.VendorStatusPending {
			return apperrors.Newf(apperrors.KindInvalidTransition,
				"cannot reject vendor in status %s", vendor.Status)
		}

		vendor.Status = models.VendorStatusRejected
		if err := tx.Save(&vendor).Error; err != nil {
			return apperrors.Storage(err)
		}

		return createAuditLog(tx, &adminID, "vendor_rejected", "vendor", &vendor.ID,
			models.JSONB{"status": string(models.VendorStatusPending)},
			models.JSONB{"status": string(models.VendorStatusRejected), "reason": reason})
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"vendor_id": vendor.ID,
		"admin_id":  adminID,
		"reason":    reason,
	}).Info("Vendor rejected")

	return &vendor, nil
}

// Suspend takes an approved vendor off the marketplace. Every active
// listing of the vendor is archived in the same transaction, so a reader
// never sees a suspended vendor with live listings.
func (s *VendorService) Suspend(vendorID, adminID uuid.UUID, reason string) (*models.Vendor, error) {
	var vendor models.Vendor
	var archived int64

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&vendor, "id = ?", vendorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "vendor not found")
			}
			return apperrors.Storage(err)
		}

		if vendor.Status != models.VendorStatusApproved {
			return apperrors.Newf(apperrors.KindInvalidTransition,
				"cannot suspend vendor in status %s", vendor.Status)
		}

		vendor.Status = models.VendorStatusSuspended
		if err := tx.Save(&vendor).Error; err != nil {
			return apperrors.Storage(err)
		}

		result := tx.Model(&models.Listing{}).
			Where("vendor_id = ? AND status = ?", vendor.ID, models.ListingStatusActive).
			Update("status", models.ListingStatusArchived)
		if result.Error != nil {
			return apperrors.Storage(result.Error)
		}
		archived = result.RowsAffected

		return createAuditLog(tx, &adminID, "vendor_suspended", "vendor", &vendor.ID,
			models.JSONB{"status": string(models.VendorStatusApproved)},
			models.JSONB{
				"status":            string(models.VendorStatusSuspended),
				"reason":            reason,
				"listings_archived": archived,
			})
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"vendor_id":         vendor.ID,
		"admin_id":          adminID,
		"listings_archived": archived,
	}).Warn("Vendor suspended")

	return &vendor, nil
}

// Reinstate returns a suspended vendor to approved. Archived listings stay
// archived; the vendor re-activates them explicitly.
func (s *VendorService) Reinstate(vendorID, adminID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&vendor, "id = ?", vendorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "vendor not found")
			}
			return apperrors.Storage(err)
		}

		if vendor.Status != models.VendorStatusSuspended {
			return apperrors.Newf(apperrors.KindInvalidTransition,
				"cannot reinstate vendor in status %s", vendor.Status)
		}

		vendor.Status = models.VendorStatusApproved
		if err := tx.Save(&vendor).Error; err != nil {
			return apperrors.Storage(err)
		}

		return createAuditLog(tx, &adminID, "vendor_reinstated", "vendor", &vendor.ID,
			models.JSONB{"status": string(models.VendorStatusSuspended)},
			models.JSONB{"status": string(models.VendorStatusApproved)})
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("vendor_id", vendor.ID).Info("Vendor reinstated")

	return &vendor, nil
}

func (s *VendorService) GetByID(vendorID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.db.Preload("User").First(&vendor, "id = ?", vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "vendor not found")
		}
		return nil, apperrors.Storage(err)
	}
	return &vendor, nil
}

// GetByUserID returns the user's current (non-rejected) vendor record.
func (s *VendorService) GetByUserID(userID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := s.db.Where("user_id = ? AND status <> ?", userID, models.VendorStatusRejected).
		First(&vendor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "vendor profile not found")
		}
		return nil, apperrors.Storage(err)
	}
	return &vendor, nil
}

func (s *VendorService) List(params *VendorSearchParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Vendor{}).Preload("User")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("business_name ILIKE ?", search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	var vendors []models.Vendor
	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "business_name", "status"})
	query = utils.ApplyPagination(query, params.PaginationParams)

	if err := query.Find(&vendors).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	result := utils.CreatePaginationResult(vendors, total, params.PaginationParams)
	return &result, nil
}

// createAuditLog records an admin action inside the caller's transaction.
func createAuditLog(tx *gorm.DB, userID *uuid.UUID, action, resourceType string, resourceID *uuid.UUID, oldValues, newValues models.JSONB) error {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
	}
	if err := tx.Create(entry).Error; err != nil {
		return apperrors.Storage(err)
	}
	return nil
}
