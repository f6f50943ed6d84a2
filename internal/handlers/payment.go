// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/culturelense/culturelense-backend/internal/models"
	"github.com/culturelense/culturelense-backend/internal/services"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService  *services.PaymentService
	purchaseService *services.PurchaseService
}

func NewPaymentHandler(paymentService *services.PaymentService, purchaseService *services.PurchaseService) *PaymentHandler {
	return &PaymentHandler{
		paymentService:  paymentService,
		purchaseService: purchaseService,
	}
}

// POST /checkout
func (h *PaymentHandler) Checkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	resp, err := h.paymentService.Checkout(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, resp)
}

// POST /checkout/confirm
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req services.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	purchase, err := h.paymentService.ConfirmPayment(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, purchase)
}

// GET /purchases
func (h *PaymentHandler) GetMyPurchases(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := services.PurchaseSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if status := c.Query("status"); status != "" {
		purchaseStatus := models.PurchaseStatus(status)
		params.Status = &purchaseStatus
	}

	result, err := h.purchaseService.GetUserPurchases(userID, &params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /purchases/:transaction_id
func (h *PaymentHandler) GetPurchase(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	purchase, err := h.purchaseService.GetByTransactionID(c.Param("transaction_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if purchase.UserID != userID {
		utils.ForbiddenResponse(c, "")
		return
	}

	utils.SuccessResponse(c, purchase)
}
