package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdash/stockdash/internal/domain"
	"github.com/stockdash/stockdash/internal/infrastructure/persistence/memory"
)

type stubVerifier struct {
	user *domain.User
	err  error
}

func (v *stubVerifier) Verify(ctx context.Context, token string) (*domain.User, error) {
	return v.user, v.err
}

type stubIssuer struct {
	err error
}

func (i *stubIssuer) Issue(email string) (string, error) {
	if i.err != nil {
		return "", i.err
	}
	return "token-for-" + email, nil
}

type failingUserRepo struct{}

func (r *failingUserRepo) UpsertUser(ctx context.Context, u *domain.User) error {
	return fmt.Errorf("db down")
}

func TestAuthService_VerifyToken_Success(t *testing.T) {
	repo := memory.NewRepository()
	service := NewAuthService(
		&stubVerifier{user: &domain.User{Email: "user@example.com", Name: "Test User"}},
		repo,
		&stubIssuer{},
	)

	user, accessToken, err := service.VerifyToken(context.Background(), "raw")

	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.Equal(t, "token-for-user@example.com", accessToken)

	stored, ok := repo.User("user@example.com")
	require.True(t, ok)
	assert.Equal(t, "Test User", stored.Name)
}

func TestAuthService_VerifyToken_Invalid(t *testing.T) {
	service := NewAuthService(
		&stubVerifier{err: fmt.Errorf("%w: expired", domain.ErrInvalidToken)},
		memory.NewRepository(),
		&stubIssuer{},
	)

	_, _, err := service.VerifyToken(context.Background(), "raw")

	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestAuthService_VerifyToken_UpsertFailureStillSucceeds(t *testing.T) {
	service := NewAuthService(
		&stubVerifier{user: &domain.User{Email: "user@example.com"}},
		&failingUserRepo{},
		&stubIssuer{},
	)

	user, accessToken, err := service.VerifyToken(context.Background(), "raw")

	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.NotEmpty(t, accessToken)
}

func TestAuthService_VerifyToken_IssuerFailure(t *testing.T) {
	service := NewAuthService(
		&stubVerifier{user: &domain.User{Email: "user@example.com"}},
		memory.NewRepository(),
		&stubIssuer{err: errors.New("no secret")},
	)

	_, _, err := service.VerifyToken(context.Background(), "raw")

	assert.Error(t, err)
}
