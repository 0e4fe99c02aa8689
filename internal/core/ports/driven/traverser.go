package driven

import (
	"context"

	"github.com/custodia-labs/salasync/internal/core/domain"
)

// FolderTraverser lists the children of a folder in the external document store.
// Trashed entries are never returned. Result order is unspecified; callers
// that need determinism sort explicitly.
type FolderTraverser interface {
	// ListChildren returns the direct children of parentID.
	// Kind is provisional (folders are buckets, files leaves); callers
	// reassign it when they know the level, as for rooms.
	// Failures wrap domain.ErrTraversal.
	ListChildren(ctx context.Context, parentID string, opts domain.ListOptions) ([]domain.FolderNode, error)
}
