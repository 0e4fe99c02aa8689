package driven

import "github.com/custodia-labs/salasync/internal/core/domain"

// Document outcomes recorded by SyncMetrics.
const (
	OutcomeProcessed = "processed"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// SyncMetrics records sync outcomes. Implementations must be safe for concurrent use.
type SyncMetrics interface {
	// DocumentDone records one document with its outcome.
	DocumentDone(outcome string)

	// SyncDone records a finished pass.
	SyncDone(report domain.SyncReport, err error)
}
