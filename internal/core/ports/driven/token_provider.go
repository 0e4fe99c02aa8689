package driven

import "context"

// TokenProvider provides access tokens for the document store.
// Implementations handle token refresh transparently. Acquiring the
// first token (consent flow) is outside this application.
type TokenProvider interface {
	// GetToken returns a valid access token.
	// If the current token is expired, it will be refreshed automatically.
	GetToken(ctx context.Context) (string, error)

	// IsAuthenticated returns true if a token can be produced.
	IsAuthenticated() bool
}
