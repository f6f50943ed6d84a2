// internal/handlers/listing.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/culturelense/culturelense-backend/internal/models"
	"github.com/culturelense/culturelense-backend/internal/services"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

type ListingHandler struct {
	listingService *services.ListingService
	vendorService  *services.VendorService
	storageService *services.StorageService
}

func NewListingHandler(listingService *services.ListingService, vendorService *services.VendorService, storageService *services.StorageService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		vendorService:  vendorService,
		storageService: storageService,
	}
}

// GET /listings
func (h *ListingHandler) Browse(c *gin.Context) {
	params := services.ListingSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if entityIDStr := c.Query("entity_id"); entityIDStr != "" {
		if entityID, err := uuid.Parse(entityIDStr); err == nil {
			params.EntityID = &entityID
		}
	}
	if priceMinStr := c.Query("price_min"); priceMinStr != "" {
		if priceMin, err := strconv.ParseFloat(priceMinStr, 64); err == nil {
			params.PriceMin = &priceMin
		}
	}
	if priceMaxStr := c.Query("price_max"); priceMaxStr != "" {
		if priceMax, err := strconv.ParseFloat(priceMaxStr, 64); err == nil {
			params.PriceMax = &priceMax
		}
	}

	result, err := h.listingService.ListActive(&params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	listing, err := h.listingService.GetByID(listingID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}

// POST /listings
func (h *ListingHandler) Create(c *gin.Context) {
	vendor, ok := h.requireVendor(c)
	if !ok {
		return
	}

	var req services.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	listing, err := h.listingService.Create(vendor.ID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, listing)
}

// PUT /listings/:id
func (h *ListingHandler) Update(c *gin.Context) {
	listingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	vendor, ok := h.requireVendor(c)
	if !ok {
		return
	}

	var req services.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	listing, err := h.listingService.Update(listingID, vendor.ID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}

// POST /listings/:id/activate
func (h *ListingHandler) Activate(c *gin.Context) {
	listingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	vendor, ok := h.requireVendor(c)
	if !ok {
		return
	}

	listing, err := h.listingService.Activate(listingID, vendor.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}

// POST /listings/:id/archive
func (h *ListingHandler) Archive(c *gin.Context) {
	listingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	vendor, ok := h.requireVendor(c)
	if !ok {
		return
	}

	listing, err := h.listingService.Archive(listingID, vendor.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}

// POST /listings/:id/restock
func (h *ListingHandler) Restock(c *gin.Context) {
	listingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	vendor, ok := h.requireVendor(c)
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	listing, err := h.listingService.Restock(listingID, vendor.ID, req.Quantity)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}

// POST /listings/images
func (h *ListingHandler) UploadImage(c *gin.Context) {
	if _, ok := h.requireVendor(c); !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "File is required", nil)
		return
	}
	defer file.Close()

	options := h.storageService.GetDefaultUploadOptions("listing_images")
	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.APIResponse{Success: true, Data: result})
}

func (h *ListingHandler) requireVendor(c *gin.Context) (*models.Vendor, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}

	vendor, err := h.vendorService.GetByUserID(userID)
	if err != nil {
		handleServiceError(c, err)
		return nil, false
	}

	return vendor, true
}
