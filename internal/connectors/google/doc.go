// Package google provides shared infrastructure for the Google Drive connector.
//
// It contains:
//   - a TokenSource adapter bridging salasync's TokenProvider to oauth2.TokenSource
//   - the Drive service factory
//   - error mapping for common Google API errors (401, 403, 404, 429)
//   - a rate limiter that honours Retry-After on 429 responses
//
// # Usage
//
//	ts := google.NewTokenSource(ctx, tokenProvider)
//	svc, err := google.NewDriveService(ctx, ts)
//
// # OAuth2 Scopes
//
// Only https://www.googleapis.com/auth/drive.readonly is required.
package google
