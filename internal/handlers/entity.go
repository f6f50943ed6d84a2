// internal/handlers/entity.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/culturelense/culturelense-backend/internal/models"
	"github.com/culturelense/culturelense-backend/internal/services"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

type EntityHandler struct {
	entityService  *services.EntityService
	accessService  *services.AccessService
	storageService *services.StorageService
}

func NewEntityHandler(entityService *services.EntityService, accessService *services.AccessService, storageService *services.StorageService) *EntityHandler {
	return &EntityHandler{
		entityService:  entityService,
		accessService:  accessService,
		storageService: storageService,
	}
}

// GET /entities
func (h *EntityHandler) Browse(c *gin.Context) {
	params := services.EntitySearchParams{
		PaginationParams: utils.GetPaginationParams(c),
		Tag:              c.Query("tag"),
	}
	if typeStr := c.Query("type"); typeStr != "" {
		entityType := models.EntityType(typeStr)
		params.Type = &entityType
	}

	result, err := h.entityService.List(&params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /entities/:slug
func (h *EntityHandler) GetBySlug(c *gin.Context) {
	entity, err := h.entityService.GetBySlug(c.Param("slug"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// Decorate content items with lock state for signed-in readers.
	response := gin.H{"entity": entity}
	if userID, ok := currentUserIDOptional(c); ok {
		access, err := h.accessService.AccessibleItems(userID, entity.ID)
		if err == nil {
			unlocked := make(map[string]bool, len(access))
			for id, granted := range access {
				unlocked[id.String()] = granted
			}
			response["unlocked"] = unlocked
		}
	}

	utils.SuccessResponse(c, response)
}

// GET /entities/:slug/related
func (h *EntityHandler) Related(c *gin.Context) {
	entity, err := h.entityService.GetBySlug(c.Param("slug"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	rels, err := h.entityService.Related(entity.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, rels)
}

// GET /content/:id/access
func (h *EntityHandler) CheckAccess(c *gin.Context) {
	contentItemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	decision, err := h.accessService.Evaluate(userID, contentItemID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, decision)
}

// GET /content/:id/open
func (h *EntityHandler) OpenContent(c *gin.Context) {
	contentItemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	item, err := h.accessService.UnlockContent(userID, contentItemID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	contentURL := item.ContentURL
	if signed, err := h.storageService.GeneratePresignedURL(item.ContentURL, 15*time.Minute); err == nil {
		contentURL = signed
	}

	utils.SuccessResponse(c, gin.H{
		"content_item": item,
		"content_url":  contentURL,
	})
}

// currentUserIDOptional reads the user from context without writing an
// error response for anonymous requests.
func currentUserIDOptional(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return parsed, true
}
