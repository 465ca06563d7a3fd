package google

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/stockdash/stockdash/internal/domain"
)

// validateFunc matches idtoken.Validate; swappable for tests.
type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Verifier checks Google-issued ID tokens against the configured OAuth
// client ID and maps the claims to a domain user.
type Verifier struct {
	clientID string
	validate validateFunc
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{
		clientID: clientID,
		validate: idtoken.Validate,
	}
}

// NewVerifierWithValidate creates a verifier with a custom validate function
// (for testing).
func NewVerifierWithValidate(clientID string, validate validateFunc) *Verifier {
	return &Verifier{
		clientID: clientID,
		validate: validate,
	}
}

// Verify validates the raw token and returns the embedded profile. Any
// verification failure is reported as domain.ErrInvalidToken.
func (v *Verifier) Verify(ctx context.Context, token string) (*domain.User, error) {
	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	email := claimString(payload, "email")
	if email == "" {
		return nil, fmt.Errorf("%w: token has no email claim", domain.ErrInvalidToken)
	}

	return &domain.User{
		Email:      email,
		Name:       claimString(payload, "name"),
		PictureURL: claimString(payload, "picture"),
	}, nil
}

func claimString(payload *idtoken.Payload, key string) string {
	if v, ok := payload.Claims[key].(string); ok {
		return v
	}
	return ""
}
