// Package auth provides TokenProvider implementations for Google Drive:
// a static bearer token and an OAuth refresh-token flow built on
// golang.org/x/oauth2.
package auth
