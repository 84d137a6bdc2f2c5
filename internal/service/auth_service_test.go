package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"haven/internal/models"
)

type stubAdminRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*models.Admin, error)
	getByIDFn       func(ctx context.Context, id uint) (*models.Admin, error)
}

func (s *stubAdminRepo) Create(_ context.Context, _ *models.Admin) error { return nil }

func (s *stubAdminRepo) GetByID(ctx context.Context, id uint) (*models.Admin, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAdminRepo) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	if s.getByUsernameFn != nil {
		return s.getByUsernameFn(ctx, username)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAdminRepo) Count(_ context.Context) (int64, error) { return 1, nil }

const testSecret = "0123456789abcdef0123456789abcdef"

func adminWithPassword(t *testing.T, password string) *models.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Admin{ID: 12, Username: "haven-admin", Password: string(hash)}
}

func TestLoginIssuesToken(t *testing.T) {
	t.Parallel()

	admin := adminWithPassword(t, "correct horse")
	repo := &stubAdminRepo{
		getByUsernameFn: func(_ context.Context, username string) (*models.Admin, error) {
			require.Equal(t, "haven-admin", username)
			return admin, nil
		},
	}
	svc := NewAuthService(repo, testSecret)

	result, err := svc.Login(context.Background(), LoginInput{
		Username: " haven-admin ",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	token, err := jwt.Parse(result.Token, func(_ *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "12", claims["sub"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	admin := adminWithPassword(t, "correct horse")
	repo := &stubAdminRepo{
		getByUsernameFn: func(_ context.Context, username string) (*models.Admin, error) {
			if username == "haven-admin" {
				return admin, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewAuthService(repo, testSecret)

	assertUnauthorized := func(t *testing.T, err error) {
		t.Helper()
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeUnauthorized, appErr.Code)
	}

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{
			Username: "haven-admin", Password: "wrong",
		})
		assertUnauthorized(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{
			Username: "nobody", Password: "whatever",
		})
		assertUnauthorized(t, err)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{})
		assertValidationError(t, err)
	})
}
