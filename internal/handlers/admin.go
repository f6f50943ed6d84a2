// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/culturelense/culturelense-backend/internal/models"
	"github.com/culturelense/culturelense-backend/internal/services"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

type AdminHandler struct {
	adminService   *services.AdminService
	vendorService  *services.VendorService
	paymentService *services.PaymentService
	entityService  *services.EntityService
}

func NewAdminHandler(adminService *services.AdminService, vendorService *services.VendorService, paymentService *services.PaymentService, entityService *services.EntityService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		vendorService:  vendorService,
		paymentService: paymentService,
		entityService:  entityService,
	}
}

// GET /admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /admin/vendors/pending
func (h *AdminHandler) GetPendingVendors(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.adminService.GetPendingVendors(&params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /admin/vendors
func (h *AdminHandler) GetVendors(c *gin.Context) {
	params := services.VendorSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if status := c.Query("status"); status != "" {
		vendorStatus := models.VendorStatus(status)
		params.Status = &vendorStatus
	}

	result, err := h.vendorService.List(&params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /admin/vendors/:id/approve
func (h *AdminHandler) ApproveVendor(c *gin.Context) {
	vendorID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	vendor, err := h.vendorService.Approve(vendorID, adminID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, vendor)
}

// POST /admin/vendors/:id/reject
func (h *AdminHandler) RejectVendor(c *gin.Context) {
	vendorID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	vendor, err := h.vendorService.Reject(vendorID, adminID, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, vendor)
}

// POST /admin/vendors/:id/suspend
func (h *AdminHandler) SuspendVendor(c *gin.Context) {
	vendorID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	vendor, err := h.vendorService.Suspend(vendorID, adminID, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, vendor)
}

// POST /admin/vendors/:id/reinstate
func (h *AdminHandler) ReinstateVendor(c *gin.Context) {
	vendorID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	vendor, err := h.vendorService.Reinstate(vendorID, adminID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, vendor)
}

// GET /admin/transactions
func (h *AdminHandler) GetTransactions(c *gin.Context) {
	params := services.PurchaseSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if status := c.Query("status"); status != "" {
		purchaseStatus := models.PurchaseStatus(status)
		params.Status = &purchaseStatus
	}

	result, err := h.adminService.GetRecentTransactions(&params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /admin/refunds
func (h *AdminHandler) ProcessRefund(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	purchase, err := h.paymentService.ProcessRefund(adminID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, purchase)
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	params := services.AuditLogSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
		Action:           c.Query("action"),
		ResourceType:     c.Query("resource_type"),
	}

	result, err := h.adminService.GetAuditLogs(&params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /admin/entities
func (h *AdminHandler) CreateEntity(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	entity, err := h.entityService.Create(adminID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, entity)
}

// POST /admin/entities/:id/content
func (h *AdminHandler) AddContentItem(c *gin.Context) {
	entityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateContentItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	item, err := h.entityService.AddContentItem(adminID, entityID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, item)
}

// POST /admin/entities/:id/relationships
func (h *AdminHandler) RelateEntities(c *gin.Context) {
	fromID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		ToEntityID       string `json:"to_entity_id" binding:"required,uuid"`
		RelationshipType string `json:"relationship_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	toID, err := uuid.Parse(req.ToEntityID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid to_entity_id", nil)
		return
	}

	if err := h.entityService.Relate(fromID, toID, req.RelationshipType); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"from": fromID, "to": toID, "type": req.RelationshipType})
}
