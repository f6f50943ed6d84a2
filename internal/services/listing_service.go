// internal/services/listing_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/culturelense/culturelense-backend/internal/apperrors"
	"github.com/culturelense/culturelense-backend/internal/models"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

type ListingService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

type CreateListingRequest struct {
	EntityID    *uuid.UUID `json:"entity_id,omitempty"`
	Title       string     `json:"title" validate:"required,min=3,max=255"`
	Description string     `json:"description" validate:"max=5000"`
	Price       float64    `json:"price" validate:"required,gt=0"`
	Quantity    int        `json:"quantity" validate:"gte=0"`
	Images      []string   `json:"images,omitempty"`
}

type UpdateListingRequest struct {
	Title       string   `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Images      []string `json:"images,omitempty"`
}

type ListingSearchParams struct {
	utils.PaginationParams
	VendorID *uuid.UUID            `json:"vendor_id,omitempty"`
	EntityID *uuid.UUID            `json:"entity_id,omitempty"`
	Status   *models.ListingStatus `json:"status,omitempty"`
	PriceMin *float64              `json:"price_min,omitempty"`
	PriceMax *float64              `json:"price_max,omitempty"`
}

func NewListingService(db *gorm.DB, logger *logrus.Logger) *ListingService {
	return &ListingService{db: db, logger: logger}
}

// Create adds a draft listing. Vendors may stage drafts before approval;
// the approval gate sits on Activate, and drafts are invisible to buyers.
func (s *ListingService) Create(vendorID uuid.UUID, req *CreateListingRequest) (*models.Listing, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid listing", err)
	}

	var vendor models.Vendor
	if err := s.db.First(&vendor, "id = ?", vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "vendor not found")
		}
		return nil, apperrors.Storage(err)
	}

	if req.EntityID != nil {
		var count int64
		if err := s.db.Model(&models.CulturalEntity{}).
			Where("id = ?", *req.EntityID).Count(&count).Error; err != nil {
			return nil, apperrors.Storage(err)
		}
		if count == 0 {
			return nil, apperrors.New(apperrors.KindNotFound, "cultural entity not found")
		}
	}

	listing := &models.Listing{
		VendorID:    vendor.ID,
		EntityID:    req.EntityID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Images:      pq.StringArray(req.Images),
		Status:      models.ListingStatusDraft,
	}

	if err := s.db.Create(listing).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	s.logger.WithFields(logrus.Fields{
		"listing_id": listing.ID,
		"vendor_id":  vendor.ID,
	}).Info("Listing created")

	return listing, nil
}

// Activate publishes a draft listing. Activation requires stock on hand
// and an approved vendor. Archived listings are withdrawn for good.
func (s *ListingService) Activate(listingID, vendorID uuid.UUID) (*models.Listing, error) {
	listing, err := s.getOwnedListing(listingID, vendorID)
	if err != nil {
		return nil, err
	}

	if _, err := s.requireApprovedVendor(vendorID); err != nil {
		return nil, err
	}

	if listing.Status != models.ListingStatusDraft {
		return nil, apperrors.Newf(apperrors.KindInvalidTransition,
			"cannot activate listing in status %s", listing.Status)
	}
	if listing.Quantity <= 0 {
		return nil, apperrors.New(apperrors.KindOutOfStock, "cannot activate a listing with no stock")
	}

	listing.Status = models.ListingStatusActive
	if err := s.db.Save(listing).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	s.logger.WithField("listing_id", listing.ID).Info("Listing activated")
	return listing, nil
}

// Archive withdraws a listing from sale. Sold listings stay sold.
func (s *ListingService) Archive(listingID, vendorID uuid.UUID) (*models.Listing, error) {
	listing, err := s.getOwnedListing(listingID, vendorID)
	if err != nil {
		return nil, err
	}

	if listing.Status == models.ListingStatusArchived {
		return listing, nil
	}
	if listing.Status == models.ListingStatusSold {
		return nil, apperrors.New(apperrors.KindInvalidTransition, "cannot archive a sold-out listing")
	}

	listing.Status = models.ListingStatusArchived
	if err := s.db.Save(listing).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	s.logger.WithField("listing_id", listing.ID).Info("Listing archived")
	return listing, nil
}

// Update edits listing metadata. Quantity and status move through their
// own operations so stock accounting stays consistent.
func (s *ListingService) Update(listingID, vendorID uuid.UUID, req *UpdateListingRequest) (*models.Listing, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid listing update", err)
	}

	listing, err := s.getOwnedListing(listingID, vendorID)
	if err != nil {
		return nil, err
	}
	if listing.Status == models.ListingStatusSold {
		return nil, apperrors.New(apperrors.KindInvalidTransition, "cannot edit a sold-out listing")
	}

	if req.Title != "" {
		listing.Title = req.Title
	}
	if req.Description != "" {
		listing.Description = req.Description
	}
	if req.Price != nil {
		listing.Price = *req.Price
	}
	if req.Images != nil {
		listing.Images = pq.StringArray(req.Images)
	}

	if err := s.db.Save(listing).Error; err != nil {
		return nil, apperrors.Storage(err)
	}
	return listing, nil
}

// Restock adds units to a listing. Restocking a sold listing reopens it
// as active.
func (s *ListingService) Restock(listingID, vendorID uuid.UUID, quantity int) (*models.Listing, error) {
	if quantity <= 0 {
		return nil, apperrors.New(apperrors.KindValidation, "restock quantity must be positive")
	}

	listing, err := s.getOwnedListing(listingID, vendorID)
	if err != nil {
		return nil, err
	}
	if listing.Status == models.ListingStatusArchived {
		return nil, apperrors.New(apperrors.KindInvalidTransition, "cannot restock an archived listing")
	}

	updates := map[string]interface{}{
		"quantity": gorm.Expr("quantity + ?", quantity),
	}
	if listing.Status == models.ListingStatusSold {
		updates["status"] = models.ListingStatusActive
	}

	if err := s.db.Model(&models.Listing{}).
		Where("id = ?", listing.ID).Updates(updates).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	return s.GetByID(listing.ID)
}

// DecrementStock atomically takes quantity units from an active listing.
// The conditional update is the only writer of quantity during a sale, so
// two concurrent buyers can never oversell: the guard fails for the loser
// and the caller sees InsufficientStock or OutOfStock. A listing that hits
// zero flips to sold in the same statement.
func (s *ListingService) DecrementStock(tx *gorm.DB, listingID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperrors.New(apperrors.KindValidation, "quantity must be positive")
	}

	result := tx.Model(&models.Listing{}).
		Where("id = ? AND status = ? AND quantity >= ?", listingID, models.ListingStatusActive, quantity).
		Updates(map[string]interface{}{
			"quantity": gorm.Expr("quantity - ?", quantity),
		})
	if result.Error != nil {
		return apperrors.Storage(result.Error)
	}

	if result.RowsAffected == 0 {
		// Guard failed; look at the row to report why.
		var listing models.Listing
		if err := tx.First(&listing, "id = ?", listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "listing not found")
			}
			return apperrors.Storage(err)
		}
		if listing.Status != models.ListingStatusActive {
			return apperrors.Newf(apperrors.KindOutOfStock, "listing is %s", listing.Status)
		}
		if listing.Quantity == 0 {
			return apperrors.New(apperrors.KindOutOfStock, "listing is out of stock")
		}
		return apperrors.Newf(apperrors.KindInsufficientStock,
			"requested %d units, %d available", quantity, listing.Quantity)
	}

	if err := tx.Model(&models.Listing{}).
		Where("id = ? AND quantity = 0 AND status = ?", listingID, models.ListingStatusActive).
		Update("status", models.ListingStatusSold).Error; err != nil {
		return apperrors.Storage(err)
	}

	return nil
}

// RestoreStock returns units to a listing after a failed or refunded
// purchase. A sold listing becomes active again.
func (s *ListingService) RestoreStock(tx *gorm.DB, listingID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperrors.New(apperrors.KindValidation, "quantity must be positive")
	}

	result := tx.Model(&models.Listing{}).
		Where("id = ?", listingID).
		Updates(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", quantity),
		})
	if result.Error != nil {
		return apperrors.Storage(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.KindNotFound, "listing not found")
	}

	if err := tx.Model(&models.Listing{}).
		Where("id = ? AND status = ?", listingID, models.ListingStatusSold).
		Update("status", models.ListingStatusActive).Error; err != nil {
		return apperrors.Storage(err)
	}

	return nil
}

func (s *ListingService) GetByID(listingID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.Preload("Vendor").Preload("Entity").First(&listing, "id = ?", listingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "listing not found")
		}
		return nil, apperrors.Storage(err)
	}
	return &listing, nil
}

// ListActive is the public marketplace browse surface.
func (s *ListingService) ListActive(params *ListingSearchParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Listing{}).
		Where("listings.status = ?", models.ListingStatusActive).
		Preload("Vendor").Preload("Entity")

	if params.EntityID != nil {
		query = query.Where("entity_id = ?", *params.EntityID)
	}
	if params.PriceMin != nil {
		query = query.Where("price >= ?", *params.PriceMin)
	}
	if params.PriceMax != nil {
		query = query.Where("price <= ?", *params.PriceMax)
	}
	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	var listings []models.Listing
	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "price", "title"})
	query = utils.ApplyPagination(query, params.PaginationParams)

	if err := query.Find(&listings).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	result := utils.CreatePaginationResult(listings, total, params.PaginationParams)
	return &result, nil
}

// GetVendorListings returns a vendor's own listings in every status.
func (s *ListingService) GetVendorListings(vendorID uuid.UUID, params *ListingSearchParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Listing{}).Where("vendor_id = ?", vendorID)

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	var listings []models.Listing
	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "price", "title", "status"})
	query = utils.ApplyPagination(query, params.PaginationParams)

	if err := query.Find(&listings).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	result := utils.CreatePaginationResult(listings, total, params.PaginationParams)
	return &result, nil
}

func (s *ListingService) requireApprovedVendor(vendorID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.db.First(&vendor, "id = ?", vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "vendor not found")
		}
		return nil, apperrors.Storage(err)
	}
	if vendor.Status != models.VendorStatusApproved {
		return nil, apperrors.Newf(apperrors.KindVendorNotApproved,
			"vendor is %s", vendor.Status)
	}
	return &vendor, nil
}

func (s *ListingService) getOwnedListing(listingID, vendorID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "listing not found")
		}
		return nil, apperrors.Storage(err)
	}
	if listing.VendorID != vendorID {
		return nil, apperrors.New(apperrors.KindUnauthorized, "listing belongs to another vendor")
	}
	return &listing, nil
}
