package drive

import (
	"strings"

	"github.com/custodia-labs/salasync/internal/core/domain"
)

// Drive MIME types.
const (
	MimeTypeFolder    = "application/vnd.google-apps.folder"
	MimeTypeGoogleDoc = "application/vnd.google-apps.document"
	MimeTypeDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTypeODT       = "application/vnd.oasis.opendocument.text"
	MimeTypeRTF       = "application/rtf"
	MimeTypeTextRTF   = "text/rtf"
)

// ExportMimeText is the export format requested for Google Docs.
const ExportMimeText = "text/plain"

var officeTypes = map[string]bool{
	MimeTypeDOCX:    true,
	MimeTypeODT:     true,
	MimeTypeRTF:     true,
	MimeTypeTextRTF: true,
}

// Classify maps a Drive MIME type to a document format.
func Classify(mimeType string) domain.DocumentFormat {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case mimeType == MimeTypeFolder:
		return domain.FormatFolder
	case mimeType == MimeTypeGoogleDoc:
		return domain.FormatNativeRichDoc
	case officeTypes[mimeType]:
		return domain.FormatBinaryOfficeDoc
	default:
		return domain.FormatOther
	}
}
