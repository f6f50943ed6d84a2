// internal/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturelense/culturelense-backend/internal/utils"
)

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("middleware-test-secret")

	r := gin.New()
	r.GET("/private", AuthRequired(), func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	r.GET("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/maybe", OptionalAuth(), func(c *gin.Context) {
		if _, ok := c.Get("user_id"); ok {
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	r := setupAuthRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/private", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsMalformedHeader(t *testing.T) {
	r := setupAuthRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	r := setupAuthRouter()

	token, err := utils.GenerateJWT(uuid.New(), "reader@example.com", "user", 1)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRequiredRejectsNonAdmin(t *testing.T) {
	r := setupAuthRouter()

	token, err := utils.GenerateJWT(uuid.New(), "reader@example.com", "user", 1)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminRequiredAcceptsAdmin(t *testing.T) {
	r := setupAuthRouter()

	token, err := utils.GenerateJWT(uuid.New(), "admin@example.com", "admin", 1)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuthIgnoresBadToken(t *testing.T) {
	r := setupAuthRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/maybe", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
