package driven

import "context"

// Normaliser converts a downloaded office document into plain text.
// Each normaliser handles specific MIME types (e.g. DOCX, ODT).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise converts raw bytes to text, keeping paragraph boundaries as newlines.
	Normalise(ctx context.Context, content []byte) (string, error)
}
