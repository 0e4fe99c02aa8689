// Package office converts OpenDocument text files to text using
// github.com/lu4p/cat.
package office

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/lu4p/cat"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
)

// MIMETypeODT is the OpenDocument text MIME type.
const MIMETypeODT = "application/vnd.oasis.opendocument.text"

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles ODT documents.
type Normaliser struct {
	fromBytes func([]byte) (string, error)
}

// New creates a new office normaliser.
func New() *Normaliser {
	return &Normaliser{fromBytes: cat.FromBytes}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMETypeODT}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts content to text with LF line endings.
// cat reads anything it does not recognise as plain text, so the package
// structure is checked first.
func (n *Normaliser) Normalise(ctx context.Context, content []byte) (string, error) {
	if len(content) == 0 {
		return "", domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkPackage(content); err != nil {
		return "", err
	}

	text, err := n.fromBytes(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrConversion, err)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text), nil
}

// checkPackage verifies content is a zip archive holding content.xml and,
// when present, an OpenDocument text mimetype entry.
func checkPackage(content []byte) error {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return fmt.Errorf("%w: not an opendocument package: %v", domain.ErrConversion, err)
	}

	hasContent := false
	for _, file := range reader.File {
		switch file.Name {
		case "content.xml":
			hasContent = true
		case "mimetype":
			rc, err := file.Open()
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrConversion, err)
			}
			var buf bytes.Buffer
			_, err = buf.ReadFrom(rc)
			rc.Close()
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrConversion, err)
			}
			if got := strings.TrimSpace(buf.String()); got != MIMETypeODT {
				return fmt.Errorf("%w: package mimetype %q", domain.ErrConversion, got)
			}
		}
	}
	if !hasContent {
		return fmt.Errorf("%w: content.xml missing", domain.ErrConversion)
	}
	return nil
}
