package usecase

import (
	"context"
	"testing"
	"time"

	authdomain "reliance-backend/internal/auth/domain"
	authdto "reliance-backend/internal/auth/dto"
	"reliance-backend/internal/auth/repository"
	"reliance-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "Secret123!"

func setupAuth() (AuthUsecase, *repository.MemoryUserRepository, *config.Config) {
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
	repo := repository.NewMemoryUserRepository()
	return NewAuthUsecase(repo, cfg), repo, cfg
}

func register(t *testing.T, uc AuthUsecase, email string) *authdto.TokenResponse {
	t.Helper()
	resp, err := uc.Register(context.Background(), &authdto.RegisterRequest{
		Email:     email,
		Password:  testPassword,
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	uc, repo, _ := setupAuth()
	ctx := context.Background()

	resp := register(t, uc, "Ada@Example.com")
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "ada@example.com", resp.User.Email)

	stored, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, testPassword, stored.Password)

	login, err := uc.Login(ctx, &authdto.LoginRequest{Email: "ada@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = uc.Login(ctx, &authdto.LoginRequest{Email: "ada@example.com", Password: "Wrong123!"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	_, err = uc.Login(ctx, &authdto.LoginRequest{Email: "nobody@example.com", Password: testPassword})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	uc, _, _ := setupAuth()
	register(t, uc, "ada@example.com")

	_, err := uc.Register(context.Background(), &authdto.RegisterRequest{
		Email: "ADA@example.com", Password: testPassword, FirstName: "Ada", LastName: "Byron",
	})
	assert.ErrorIs(t, err, authdomain.ErrEmailTaken)
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Secret123!", true},
		{"Aa1@aaaa", true},
		{"secret123!", false},
		{"SECRET123!", false},
		{"Secretabc!", false},
		{"Secret1234", false},
		{"Se1!", false},
		{"Secret 123!", false},
		{"Secret123#", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, strongPassword(tt.password))
		})
	}
}

func TestValidateToken(t *testing.T) {
	uc, _, cfg := setupAuth()
	ctx := context.Background()
	resp := register(t, uc, "ada@example.com")

	user, err := uc.ValidateToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	// refresh tokens are not accepted as access tokens
	_, err = uc.ValidateToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	_, err = uc.ValidateToken(ctx, "garbage")
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": resp.User.ID,
		"type":    tokenTypeAccess,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)
	_, err = uc.ValidateToken(ctx, signed)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": resp.User.ID,
		"type":    tokenTypeAccess,
		"exp":     time.Now().Add(time.Minute).Unix(),
	})
	signed, err = forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = uc.ValidateToken(ctx, signed)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)
}

func TestRefreshTokenRotates(t *testing.T) {
	uc, _, _ := setupAuth()
	ctx := context.Background()
	resp := register(t, uc, "ada@example.com")

	refreshed, err := uc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)

	_, err = uc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	_, err = uc.RefreshToken(ctx, refreshed.AccessToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	uc, _, _ := setupAuth()
	ctx := context.Background()
	resp := register(t, uc, "ada@example.com")

	require.NoError(t, uc.Logout(ctx, resp.RefreshToken))

	_, err := uc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)
}

func TestGetUser(t *testing.T) {
	uc, _, _ := setupAuth()
	ctx := context.Background()
	resp := register(t, uc, "ada@example.com")

	user, err := uc.GetUser(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.FirstName)

	_, err = uc.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, authdomain.ErrUserNotFound)
}
