// internal/services/auth_service.go
package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/culturelense/culturelense-backend/internal/apperrors"
	"github.com/culturelense/culturelense-backend/internal/config"
	"github.com/culturelense/culturelense-backend/internal/models"
	"github.com/culturelense/culturelense-backend/internal/utils"
)

type AuthService struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,strong_password"`
	DisplayName string `json:"display_name" validate:"required,min=2,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *AuthService {
	return &AuthService{db: db, config: cfg, logger: logger}
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid registration", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Storage(err)
	}
	if count > 0 {
		return nil, apperrors.New(apperrors.KindValidation, "email is already registered")
	}

	user := &models.User{
		Email:  email,
		Role:   models.UserRoleUser,
		Status: models.UserStatusActive,
		ProfileData: models.JSONB{
			"display_name": req.DisplayName,
		},
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "could not hash password", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.New(apperrors.KindValidation, "email is already registered")
		}
		return nil, apperrors.Storage(err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	return s.issueTokens(user)
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid login", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindUnauthorized, "invalid credentials")
		}
		return nil, apperrors.Storage(err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, apperrors.New(apperrors.KindUnauthorized, "invalid credentials")
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.Newf(apperrors.KindUnauthorized, "account is %s", user.Status)
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to record login time")
	}

	return s.issueTokens(&user)
}

// RefreshToken trades a valid refresh token for a new token pair.
func (s *AuthService) RefreshToken(refreshToken string) (*AuthResponse, error) {
	subject, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, "invalid refresh token", err)
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, apperrors.New(apperrors.KindUnauthorized, "invalid refresh token subject")
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.Newf(apperrors.KindUnauthorized, "account is %s", user.Status)
	}

	return s.issueTokens(user)
}

func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Vendor").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "user not found")
		}
		return nil, apperrors.Storage(err)
	}
	return &user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Email, string(user.Role), s.config.JWT.AccessTokenTTL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, "could not issue access token", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.config.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, "could not issue refresh token", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.config.JWT.AccessTokenTTL * 3600,
	}, nil
}
