// Package domain defines the core business entities for salasync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - FolderNode: A folder or file returned by a traversal of the document store
//   - SourceDocument: A document selected for text extraction
//   - ExtractedFields: The best-effort result of field extraction
//   - PatientRecord, RoomRecord: The persisted registry entries
//   - SyncReport: Aggregate counts of a sync pass
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, golang.org/x/text (identity key folding)
//   - Cannot Import: Any internal/ package, any other external dependency
package domain
