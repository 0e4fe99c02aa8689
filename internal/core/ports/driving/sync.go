package driving

import (
	"context"

	"github.com/custodia-labs/salasync/internal/core/domain"
)

// SyncOrchestrator coordinates ingestion of the folder tree into the registry.
type SyncOrchestrator interface {
	// SyncMaster walks master folder -> rooms -> final-reports folder -> documents.
	// Only a failure listing the master folder aborts the pass; the partial
	// report is returned alongside any error.
	SyncMaster(ctx context.Context, masterFolderID string) (*domain.SyncReport, error)

	// SyncRoomFolders upserts one patient per child folder of a room folder.
	SyncRoomFolders(ctx context.Context, roomName, folderID string) (*domain.FolderSyncReport, error)

	// Status returns the state of the running pass, if any.
	Status(ctx context.Context) (*SyncStatus, error)
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// Running indicates if sync is currently in progress.
	Running bool

	// RoomsProcessed is the count of rooms finished so far.
	RoomsProcessed int

	// DocumentsProcessed is the count of documents merged so far.
	DocumentsProcessed int

	// ErrorCount is the number of per-document failures so far.
	ErrorCount int
}
