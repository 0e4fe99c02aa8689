package auth

import (
	"context"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
)

// Ensure StaticTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*StaticTokenProvider)(nil)

// StaticTokenProvider serves a pre-acquired bearer token.
// The token is never refreshed; an expired token surfaces as a 401 from Drive.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider for a fixed access token.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

// GetToken returns the configured token.
func (p *StaticTokenProvider) GetToken(_ context.Context) (string, error) {
	if p.token == "" {
		return "", domain.ErrAuthRequired
	}
	return p.token, nil
}

// IsAuthenticated returns true if a token is configured.
func (p *StaticTokenProvider) IsAuthenticated() bool {
	return p.token != ""
}
