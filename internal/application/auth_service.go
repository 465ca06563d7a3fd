package application

import (
	"context"
	"log/slog"

	"github.com/stockdash/stockdash/internal/domain"
)

// TokenVerifier checks an opaque ID token and returns the embedded profile.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.User, error)
}

// AccessTokenIssuer mints the dashboard's own session token.
type AccessTokenIssuer interface {
	Issue(email string) (string, error)
}

// AuthService verifies Google logins, mirrors the profile into the store and
// hands out an access token.
type AuthService struct {
	verifier TokenVerifier
	users    domain.UserRepository
	issuer   AccessTokenIssuer
}

func NewAuthService(verifier TokenVerifier, users domain.UserRepository, issuer AccessTokenIssuer) *AuthService {
	return &AuthService{
		verifier: verifier,
		users:    users,
		issuer:   issuer,
	}
}

// VerifyToken validates the raw ID token and returns the user plus a signed
// access token. The user upsert is best-effort: a store failure is logged
// and the login still succeeds.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*domain.User, string, error) {
	user, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.UpsertUser(ctx, user); err != nil {
		slog.Error("Failed to upsert user", "email", user.Email, "error", err)
	}

	accessToken, err := s.issuer.Issue(user.Email)
	if err != nil {
		return nil, "", err
	}

	return user, accessToken, nil
}
