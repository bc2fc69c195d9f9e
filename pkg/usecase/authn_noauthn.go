package usecase

import (
	"context"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model/auth"
)

// NoAuthnUseCase accepts every request as a fixed user (for development/testing)
type NoAuthnUseCase struct {
	sub   string
	email string
	name  string
}

// NewNoAuthnUseCase creates a NoAuthnUseCase. An empty sub means the anonymous user.
func NewNoAuthnUseCase(sub, email, name string) *NoAuthnUseCase {
	if sub == "" {
		anon := auth.NewAnonymousUser()
		sub, name = anon.Sub, anon.Name
	}
	return &NoAuthnUseCase{
		sub:   sub,
		email: email,
		name:  name,
	}
}

// ValidateToken ignores the bearer and returns the configured user
func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, bearer string) (*auth.Token, error) {
	return &auth.Token{
		Sub:   uc.sub,
		Email: uc.email,
		Name:  uc.name,
	}, nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
