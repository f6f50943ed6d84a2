// internal/handlers/respond.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/culturelense/culturelense-backend/internal/apperrors"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

// handleServiceError translates the error taxonomy into HTTP. Storage
// failures map to 503 and are the only responses a client should retry.
func handleServiceError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)

	switch kind {
	case apperrors.KindValidation:
		utils.BadRequestResponse(c, err.Error(), nil)
	case apperrors.KindNotFound:
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case apperrors.KindInvalidTransition:
		utils.ConflictResponse(c, err.Error())
	case apperrors.KindInsufficientStock, apperrors.KindOutOfStock:
		utils.ConflictResponse(c, err.Error())
	case apperrors.KindDuplicateApplication:
		utils.ConflictResponse(c, err.Error())
	case apperrors.KindVendorNotApproved:
		utils.ForbiddenResponse(c, err.Error())
	case apperrors.KindUnauthorized:
		utils.ForbiddenResponse(c, err.Error())
	case apperrors.KindStorageUnavailable:
		utils.ServiceUnavailableResponse(c, "")
	default:
		utils.InternalErrorResponse(c, "")
	}
}

// currentUserID pulls the authenticated user out of the request context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses a UUID path parameter, answering 400 on garbage.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
