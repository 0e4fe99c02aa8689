package domain

// NodeKind classifies a folder tree entry by the level it was found at.
type NodeKind int

const (
	// NodeRoom is a folder directly under the master folder.
	NodeRoom NodeKind = iota
	// NodeBucket is a folder inside a room (e.g. the final-reports folder).
	NodeBucket
	// NodeLeaf is a file inside a bucket.
	NodeLeaf
)

// String returns the lowercase name of the kind.
func (k NodeKind) String() string {
	switch k {
	case NodeRoom:
		return "room"
	case NodeBucket:
		return "bucket"
	case NodeLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// DocumentFormat is the declared format of a document, derived from its MIME type.
type DocumentFormat int

const (
	// FormatOther has no extractable text path.
	FormatOther DocumentFormat = iota
	// FormatNativeRichDoc is a document native to the store, exported as plain text.
	FormatNativeRichDoc
	// FormatBinaryOfficeDoc is an uploaded office file, downloaded and converted locally.
	FormatBinaryOfficeDoc
	// FormatFolder is a folder entry.
	FormatFolder
)

// String returns the lowercase name of the format.
func (f DocumentFormat) String() string {
	switch f {
	case FormatNativeRichDoc:
		return "native"
	case FormatBinaryOfficeDoc:
		return "office"
	case FormatFolder:
		return "folder"
	default:
		return "other"
	}
}

// FolderNode is an entry returned by a traversal call.
// It is never persisted; nodes live for the duration of one sync pass.
type FolderNode struct {
	// ID is the document store identifier.
	ID string

	// Name is the display name of the folder or file.
	Name string

	// ParentID is the folder the node was listed under.
	ParentID string

	// Kind is the traversal level the node was found at.
	Kind NodeKind

	// MIMEType is the raw MIME type reported by the store.
	MIMEType string

	// Format is the format class derived from MIMEType.
	Format DocumentFormat

	// WebLink is the browser URL of the node, when the store reports one.
	WebLink string
}

// IsFolder reports whether the node is a folder.
func (n FolderNode) IsFolder() bool {
	return n.Format == FormatFolder
}

// SourceDocument is a file selected for text extraction.
type SourceDocument struct {
	// ID is the document store identifier.
	ID string

	// Name is the file name, used as the identity fallback.
	Name string

	// MIMEType is the raw MIME type reported by the store.
	MIMEType string

	// Format selects the fetch strategy.
	Format DocumentFormat
}

// AsDocument converts a leaf node into a SourceDocument.
func (n FolderNode) AsDocument() SourceDocument {
	return SourceDocument{
		ID:       n.ID,
		Name:     n.Name,
		MIMEType: n.MIMEType,
		Format:   n.Format,
	}
}

// ListOptions filters a traversal call.
type ListOptions struct {
	// OnlyFolders restricts results to folder entries.
	OnlyFolders bool
}
