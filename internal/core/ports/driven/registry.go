package driven

import "context"

// NormaliserRegistry selects the appropriate normaliser for a MIME type.
// It maintains a priority-ordered list of normalisers per MIME type.
type NormaliserRegistry interface {
	// Normalise converts content using the best matching normaliser.
	// Returns domain.ErrUnsupportedFormat if no normaliser handles mimeType.
	Normalise(ctx context.Context, mimeType string, content []byte) (string, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// Supports reports whether some normaliser handles mimeType.
	Supports(mimeType string) bool

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}
