// internal/handlers/vendor.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/culturelense/culturelense-backend/internal/models"
	"github.com/culturelense/culturelense-backend/internal/services"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

type VendorHandler struct {
	vendorService  *services.VendorService
	listingService *services.ListingService
}

func NewVendorHandler(vendorService *services.VendorService, listingService *services.ListingService) *VendorHandler {
	return &VendorHandler{
		vendorService:  vendorService,
		listingService: listingService,
	}
}

// POST /vendors/apply
func (h *VendorHandler) Apply(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.VendorApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	vendor, err := h.vendorService.Apply(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, vendor)
}

// GET /vendors/me
func (h *VendorHandler) GetMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	vendor, err := h.vendorService.GetByUserID(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, vendor)
}

// GET /vendors/me/listings
func (h *VendorHandler) GetMyListings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	vendor, err := h.vendorService.GetByUserID(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	params := services.ListingSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if status := c.Query("status"); status != "" {
		listingStatus := models.ListingStatus(status)
		params.Status = &listingStatus
	}

	result, err := h.listingService.GetVendorListings(vendor.ID, &params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /vendors/:id
func (h *VendorHandler) GetVendor(c *gin.Context) {
	vendorID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	vendor, err := h.vendorService.GetByID(vendorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, vendor)
}
