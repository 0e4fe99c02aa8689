package auth

import (
	"context"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
)

// NewTokenProvider picks a provider for the configured credentials.
// A refresh token flow wins over a bare access token.
// Returns domain.ErrAuthRequired when nothing is configured.
func NewTokenProvider(ctx context.Context, creds domain.AuthSettings) (driven.TokenProvider, error) {
	switch {
	case creds.HasRefresh():
		return NewRefreshTokenProvider(ctx, creds), nil
	case creds.AccessToken != "":
		return NewStaticTokenProvider(creds.AccessToken), nil
	default:
		return nil, domain.ErrAuthRequired
	}
}
