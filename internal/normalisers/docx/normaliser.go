package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
)

// MIMEType is the Office Open XML word processing MIME type.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of word/document.xml, one line per paragraph.
func (n *Normaliser) Normalise(ctx context.Context, content []byte) (string, error) {
	if len(content) == 0 {
		return "", domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: not a docx archive: %v", domain.ErrConversion, err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrConversion, err)
		}
		defer rc.Close()

		return parseDocumentXML(rc)
	}
	return "", fmt.Errorf("%w: word/document.xml missing", domain.ErrConversion)
}

// parseDocumentXML walks the body tokens. Paragraphs become lines, tabs and
// breaks inside runs are kept, and paragraphs nested in tables are included.
// Tab stop definitions in paragraph properties (w:pPr/w:tabs/w:tab) are not text.
func parseDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		result strings.Builder
		line   strings.Builder
		inText bool
		inRun  int
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrConversion, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				inRun++
			case "t":
				inText = true
			case "tab":
				if inRun > 0 {
					line.WriteByte('\t')
				}
			case "br", "cr":
				if inRun > 0 {
					line.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				inRun--
			case "t":
				inText = false
			case "p":
				if result.Len() > 0 {
					result.WriteByte('\n')
				}
				result.WriteString(line.String())
				line.Reset()
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		}
	}

	return strings.TrimSpace(result.String()), nil
}
