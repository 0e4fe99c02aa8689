package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/custodia-labs/salasync/internal/connectors/google"
	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
)

// Ensure RefreshTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*RefreshTokenProvider)(nil)

// refreshBuffer is how long before expiry a token is refreshed.
const refreshBuffer = 5 * time.Minute

// RefreshTokenProvider provides OAuth access tokens with automatic refresh
// from a long-lived refresh token.
type RefreshTokenProvider struct {
	mu     sync.Mutex
	source oauth2.TokenSource
	last   *oauth2.Token
}

// NewRefreshTokenProvider creates a provider for Google's token endpoint.
func NewRefreshTokenProvider(ctx context.Context, creds domain.AuthSettings) *RefreshTokenProvider {
	return NewRefreshTokenProviderWithEndpoint(ctx, creds, googleoauth.Endpoint)
}

// NewRefreshTokenProviderWithEndpoint creates a provider against a custom token endpoint.
func NewRefreshTokenProviderWithEndpoint(
	ctx context.Context, creds domain.AuthSettings, endpoint oauth2.Endpoint,
) *RefreshTokenProvider {
	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{google.DriveReadOnlyScope},
	}

	seed := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	}
	if creds.AccessToken == "" {
		// Force a refresh on first use
		seed.Expiry = time.Unix(1, 0)
	} else {
		// An access token from config has unknown expiry; trust it briefly
		seed.Expiry = time.Now().Add(refreshBuffer + time.Minute)
	}

	return &RefreshTokenProvider{
		source: oauth2.ReuseTokenSourceWithExpiry(seed, cfg.TokenSource(ctx, seed), refreshBuffer),
	}
}

// GetToken returns a valid access token, refreshing if necessary.
func (p *RefreshTokenProvider) GetToken(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tok, err := p.source.Token()
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	p.last = tok
	return tok.AccessToken, nil
}

// IsAuthenticated returns true once a token has been obtained, or while
// the refresh flow is still untried.
func (p *RefreshTokenProvider) IsAuthenticated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last == nil || p.last.AccessToken != ""
}
