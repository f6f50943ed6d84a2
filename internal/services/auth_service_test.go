// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/culturelense/culturelense-backend/internal/apperrors"
	"github.com/culturelense/culturelense-backend/internal/config"
	"github.com/culturelense/culturelense-backend/internal/models"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())

	cfg := &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	s.service = NewAuthService(s.db, cfg, newTestLogger())
}

func (s *AuthServiceTestSuite) TestRegisterIssuesTokens() {
	resp, err := s.service.Register(&RegisterRequest{
		Email:       "Reader@Example.com",
		Password:    "Str0ng!Pass",
		DisplayName: "Curious Reader",
	})

	s.Require().NoError(err)
	s.NotEmpty(resp.AccessToken)
	s.NotEmpty(resp.RefreshToken)
	s.Equal("reader@example.com", resp.User.Email)
	s.Equal(models.UserRoleUser, resp.User.Role)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	s.Require().NoError(err)
	s.Equal(resp.User.ID.String(), claims.UserID)
}

func (s *AuthServiceTestSuite) TestRegisterRejectsWeakPassword() {
	_, err := s.service.Register(&RegisterRequest{
		Email:       "reader@example.com",
		Password:    "password",
		DisplayName: "Curious Reader",
	})
	s.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (s *AuthServiceTestSuite) TestRegisterRejectsDuplicateEmail() {
	req := &RegisterRequest{
		Email:       "reader@example.com",
		Password:    "Str0ng!Pass",
		DisplayName: "Curious Reader",
	}

	_, err := s.service.Register(req)
	s.Require().NoError(err)

	_, err = s.service.Register(req)
	s.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (s *AuthServiceTestSuite) TestLogin() {
	_, err := s.service.Register(&RegisterRequest{
		Email:       "reader@example.com",
		Password:    "Str0ng!Pass",
		DisplayName: "Curious Reader",
	})
	s.Require().NoError(err)

	resp, err := s.service.Login(&LoginRequest{
		Email:    "reader@example.com",
		Password: "Str0ng!Pass",
	})
	s.Require().NoError(err)
	s.NotEmpty(resp.AccessToken)

	_, err = s.service.Login(&LoginRequest{
		Email:    "reader@example.com",
		Password: "wrong-password",
	})
	s.True(apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func (s *AuthServiceTestSuite) TestLoginRejectsSuspendedAccount() {
	resp, err := s.service.Register(&RegisterRequest{
		Email:       "reader@example.com",
		Password:    "Str0ng!Pass",
		DisplayName: "Curious Reader",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.db.Model(&models.User{}).
		Where("id = ?", resp.User.ID).
		Update("status", models.UserStatusSuspended).Error)

	_, err = s.service.Login(&LoginRequest{
		Email:    "reader@example.com",
		Password: "Str0ng!Pass",
	})
	s.True(apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func (s *AuthServiceTestSuite) TestRefreshToken() {
	registered, err := s.service.Register(&RegisterRequest{
		Email:       "reader@example.com",
		Password:    "Str0ng!Pass",
		DisplayName: "Curious Reader",
	})
	s.Require().NoError(err)

	refreshed, err := s.service.RefreshToken(registered.RefreshToken)
	s.Require().NoError(err)
	s.NotEmpty(refreshed.AccessToken)
	s.Equal(registered.User.ID, refreshed.User.ID)

	_, err = s.service.RefreshToken("not-a-token")
	s.True(apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
