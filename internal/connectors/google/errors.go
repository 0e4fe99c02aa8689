package google

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/salasync/internal/core/domain"
)

// Common Google API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = fmt.Errorf("google: unauthorised (invalid credentials): %w", domain.ErrAuthRequired)

	// ErrForbidden indicates insufficient permissions.
	ErrForbidden = errors.New("google: forbidden (insufficient permissions)")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = fmt.Errorf("google: resource not found: %w", domain.ErrNotFound)

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("google: rate limit exceeded")

	// ErrQuotaExceeded indicates the daily API quota was exceeded.
	ErrQuotaExceeded = errors.New("google: quota exceeded")

	// ErrExportTooLarge indicates a Google Doc exceeds the export size limit.
	ErrExportTooLarge = errors.New("google: document too large to export")
)

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	return statusCode(err) == http.StatusUnauthorized
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	return statusCode(err) == http.StatusNotFound
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return isRateLimitStatus(gerr)
	}
	return false
}

// WrapError converts a Google API error to a more specific error type.
// The API message is kept in the wrapped error text.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch {
	case gerr.Code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, gerr.Message)
	case isRateLimitStatus(gerr):
		return fmt.Errorf("%w: %s", ErrRateLimited, gerr.Message)
	case hasReason(gerr, "dailyLimitExceeded", "quotaExceeded"):
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, gerr.Message)
	case hasReason(gerr, "exportSizeLimitExceeded"):
		return fmt.Errorf("%w: %s", ErrExportTooLarge, gerr.Message)
	case gerr.Code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, gerr.Message)
	case gerr.Code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, gerr.Message)
	default:
		return err
	}
}

func statusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

func hasReason(gerr *googleapi.Error, reasons ...string) bool {
	for _, item := range gerr.Errors {
		for _, r := range reasons {
			if item.Reason == r {
				return true
			}
		}
	}
	return false
}
