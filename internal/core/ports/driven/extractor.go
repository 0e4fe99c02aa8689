package driven

import "github.com/custodia-labs/salasync/internal/core/domain"

// FieldExtractor pulls semantic fields out of free text.
// Implementations are pure: text in, fields out, no knowledge of file names.
type FieldExtractor interface {
	// Extract returns the fields found in text. Missing fields are empty.
	Extract(text string) domain.ExtractedFields
}
