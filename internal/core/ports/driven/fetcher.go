package driven

import (
	"context"

	"github.com/custodia-labs/salasync/internal/core/domain"
)

// DocumentFetcher retrieves the plain text of a document.
// Documents whose format has no text path yield empty text and no error.
type DocumentFetcher interface {
	// FetchText returns the document's text, possibly empty.
	FetchText(ctx context.Context, doc domain.SourceDocument) (string, error)
}

// FormatFetcher retrieves text for a single document format.
// DocumentFetcher implementations dispatch to one FormatFetcher per format.
type FormatFetcher interface {
	// Format returns the document format this fetcher handles.
	Format() domain.DocumentFormat

	// Fetch returns the document's text.
	Fetch(ctx context.Context, doc domain.SourceDocument) (string, error)
}
