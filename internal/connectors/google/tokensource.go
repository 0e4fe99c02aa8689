package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
)

// TokenSourceAdapter adapts a driven.TokenProvider to oauth2.TokenSource.
type TokenSourceAdapter struct {
	provider driven.TokenProvider
	ctx      context.Context
}

// NewTokenSource creates an oauth2.TokenSource from a TokenProvider.
// The returned TokenSource can be passed to NewDriveService.
func NewTokenSource(ctx context.Context, provider driven.TokenProvider) oauth2.TokenSource {
	return &TokenSourceAdapter{
		provider: provider,
		ctx:      ctx,
	}
}

// Token implements oauth2.TokenSource.
// Called by the Drive client whenever it needs an access token.
func (t *TokenSourceAdapter) Token() (*oauth2.Token, error) {
	if !t.provider.IsAuthenticated() {
		return nil, domain.ErrAuthRequired
	}

	accessToken, err := t.provider.GetToken(t.ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthRequired, err)
	}
	if accessToken == "" {
		return nil, domain.ErrAuthRequired
	}

	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}
