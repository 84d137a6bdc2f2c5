package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"haven/internal/middleware"
	"haven/internal/models"
	"haven/internal/repository"
)

const tokenTTL = 24 * time.Hour

// AuthService authenticates administrators and issues session tokens.
type AuthService struct {
	admins    repository.AdminRepository
	jwtSecret string
}

// NewAuthService creates a new AuthService.
func NewAuthService(admins repository.AdminRepository, jwtSecret string) *AuthService {
	return &AuthService{admins: admins, jwtSecret: jwtSecret}
}

// LoginInput carries admin credentials.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the issued session.
type LoginResult struct {
	Token string        `json:"token"`
	Admin *models.Admin `json:"admin"`
}

// Login verifies credentials and returns a signed HS256 token with the admin
// ID in the subject claim. Bad username and bad password produce the same
// error so the response does not reveal which one was wrong.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, models.NewValidationError("username and password are required")
	}
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("invalid credentials")
		}
		return nil, models.NewInternalError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(input.Password)) != nil {
		middleware.Logger.WarnContext(ctx, "failed login attempt", "username", username)
		return nil, models.NewUnauthorizedError("invalid credentials")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(admin.ID), 10),
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	middleware.Logger.InfoContext(ctx, "admin logged in", "admin_id", admin.ID)
	return &LoginResult{Token: signed, Admin: admin}, nil
}

// CurrentAdmin loads the admin for an authenticated request.
func (s *AuthService) CurrentAdmin(ctx context.Context, id uint) (*models.Admin, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("admin", id)
		}
		return nil, models.NewInternalError(err)
	}
	return admin, nil
}
