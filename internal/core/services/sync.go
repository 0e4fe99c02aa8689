package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
	"github.com/custodia-labs/salasync/internal/core/ports/driving"
	"github.com/custodia-labs/salasync/internal/extraction"
	"github.com/custodia-labs/salasync/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator walks master folder -> rooms -> final-reports folder -> documents
// and merges what it extracts into the registry.
type SyncOrchestrator struct {
	traverser driven.FolderTraverser
	fetcher   driven.DocumentFetcher
	extractor driven.FieldExtractor
	merger    *RecordMerger
	metrics   driven.SyncMetrics

	workers      int
	fetchTimeout time.Duration
	tokens       []string

	// Status tracking
	mu      sync.RWMutex
	current *tally
}

// tally holds the counters of one pass. Fields are updated from many goroutines.
type tally struct {
	roomsProcessed      atomic.Int64
	roomsWithoutReports atomic.Int64
	roomsFailed         atomic.Int64
	processed           atomic.Int64
	failed              atomic.Int64
	skipped             atomic.Int64
}

// NewSyncOrchestrator creates a new sync orchestrator.
// metrics may be nil.
func NewSyncOrchestrator(
	traverser driven.FolderTraverser,
	fetcher driven.DocumentFetcher,
	extractor driven.FieldExtractor,
	merger *RecordMerger,
	settings domain.SyncSettings,
	metrics driven.SyncMetrics,
) *SyncOrchestrator {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	tokens := settings.ReportsTokens
	if len(tokens) == 0 {
		tokens = domain.DefaultAppSettings().Sync.ReportsTokens
	}
	timeout := settings.FetchTimeout
	if timeout <= 0 {
		timeout = domain.DefaultAppSettings().Sync.FetchTimeout
	}

	return &SyncOrchestrator{
		traverser:    traverser,
		fetcher:      fetcher,
		extractor:    extractor,
		merger:       merger,
		metrics:      metrics,
		workers:      domain.ClampWorkers(settings.Workers),
		fetchTimeout: timeout,
		tokens:       tokens,
	}
}

// SyncMaster runs one ingestion pass over the master folder.
//
// Only a failure listing the master folder is returned as an error
// (*domain.FatalTraversalError). Room and document failures are logged and
// counted in the report. A cancelled context stops the pass between rooms and
// between documents; the partial report is returned with ctx.Err().
func (o *SyncOrchestrator) SyncMaster(ctx context.Context, masterFolderID string) (*domain.SyncReport, error) {
	report := &domain.SyncReport{StartedAt: time.Now()}

	masterFolderID = strings.TrimSpace(masterFolderID)
	if masterFolderID == "" {
		logger.Debug("No master folder configured, nothing to sync")
		return report, nil
	}

	t, err := o.begin()
	if err != nil {
		return report, err
	}
	defer o.end()

	logger.Section("Sync")
	logger.Info("Listing rooms under %s", masterFolderID)

	rooms, err := o.traverser.ListChildren(ctx, masterFolderID, domain.ListOptions{OnlyFolders: true})
	if err != nil {
		err = &domain.FatalTraversalError{FolderID: masterFolderID, Err: err}
		report.Duration = time.Since(report.StartedAt)
		o.metrics.SyncDone(*report, err)
		return report, err
	}
	sortNodes(rooms)
	report.RoomsSeen = len(rooms)

	if len(rooms) == 0 {
		logger.Info("Master folder %s has no rooms", masterFolderID)
	}

	var g errgroup.Group
	g.SetLimit(o.workers)
	docs := semaphore.NewWeighted(int64(o.workers))

	for _, room := range rooms {
		if ctx.Err() != nil {
			break
		}
		room.Kind = domain.NodeRoom
		g.Go(func() error {
			o.syncRoom(ctx, room, docs, t)
			return nil
		})
	}
	_ = g.Wait()

	t.fill(report)
	report.Duration = time.Since(report.StartedAt)

	err = ctx.Err()
	if err != nil {
		logger.Warn("Sync cancelled after %d documents", report.DocumentsProcessed)
	} else {
		logger.Info("Sync complete: %d rooms, %d documents processed, %d failed, %d skipped",
			report.RoomsSeen, report.DocumentsProcessed, report.DocumentsFailed, report.DocumentsSkipped)
	}
	o.metrics.SyncDone(*report, err)
	return report, err
}

// syncRoom upserts the room, finds its final-reports folder and processes
// every document in it. Failures are contained to the room.
func (o *SyncOrchestrator) syncRoom(ctx context.Context, room domain.FolderNode, docs *semaphore.Weighted, t *tally) {
	if ctx.Err() != nil {
		return
	}

	record, err := o.merger.MergeRoom(ctx, room.Name, room.ID)
	if err != nil {
		o.roomFailed(ctx, room, err, t)
		return
	}

	children, err := o.traverser.ListChildren(ctx, room.ID, domain.ListOptions{OnlyFolders: true})
	if err != nil {
		o.roomFailed(ctx, room, err, t)
		return
	}

	bucket, matches := FindReportsFolder(children, o.tokens)
	if matches == 0 {
		logger.Debug("Room %q has no final-reports folder, skipping", room.Name)
		t.roomsWithoutReports.Add(1)
		t.roomsProcessed.Add(1)
		return
	}
	if matches > 1 {
		logger.Warn("Room %q has %d final-reports folders, using %q", room.Name, matches, bucket.Name)
	}
	bucket.Kind = domain.NodeBucket

	entries, err := o.traverser.ListChildren(ctx, bucket.ID, domain.ListOptions{})
	if err != nil {
		o.roomFailed(ctx, room, err, t)
		return
	}
	sortNodes(entries)

	var g errgroup.Group
	g.SetLimit(o.workers)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		entry.Kind = domain.NodeLeaf
		g.Go(func() error {
			if err := docs.Acquire(ctx, 1); err != nil {
				return nil
			}
			defer docs.Release(1)
			o.processDocument(ctx, entry, record.ID, bucket.ID, t)
			return nil
		})
	}
	_ = g.Wait()

	t.roomsProcessed.Add(1)
}

// roomFailed counts a room branch failure unless the pass was cancelled.
func (o *SyncOrchestrator) roomFailed(ctx context.Context, room domain.FolderNode, err error, t *tally) {
	if ctx.Err() != nil {
		return
	}
	logger.Warn("Room %q: %v", room.Name, err)
	t.roomsFailed.Add(1)
}

// processDocument runs fetch -> extract -> merge for one entry.
func (o *SyncOrchestrator) processDocument(ctx context.Context, entry domain.FolderNode, roomID, folderID string, t *tally) {
	if ctx.Err() != nil {
		return
	}
	if entry.IsFolder() || entry.Format == domain.FormatOther {
		logger.Debug("Skipping %q (%s)", entry.Name, entry.Format)
		t.skipped.Add(1)
		o.metrics.DocumentDone(driven.OutcomeSkipped)
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	text, err := o.fetcher.FetchText(fetchCtx, entry.AsDocument())
	cancel()
	if err != nil {
		o.documentFailed(ctx, entry, err, t)
		return
	}

	var fields domain.ExtractedFields
	if strings.TrimSpace(text) != "" {
		fields = o.extractor.Extract(text)
	}
	if fields.Name == "" {
		fields.Name = extraction.NameFromFilename(entry.Name)
	}

	patient, err := o.merger.MergePatient(ctx, PatientFromFields(fields, roomID, folderID))
	if err != nil {
		o.documentFailed(ctx, entry, err, t)
		return
	}

	logger.Debug("Merged %q from %q", patient.Name, entry.Name)
	t.processed.Add(1)
	o.metrics.DocumentDone(driven.OutcomeProcessed)
}

// documentFailed counts a per-document failure unless the pass was cancelled.
// A fetch that hits its own timeout is a failure; a cancelled pass is not.
func (o *SyncOrchestrator) documentFailed(ctx context.Context, entry domain.FolderNode, err error, t *tally) {
	if ctx.Err() != nil {
		return
	}
	logger.Warn("Document %q: %v", entry.Name, err)
	t.failed.Add(1)
	o.metrics.DocumentDone(driven.OutcomeFailed)
}

// SyncRoomFolders upserts one patient per child folder of a room folder.
// The room itself is upserted first so patients reference its id.
func (o *SyncOrchestrator) SyncRoomFolders(ctx context.Context, roomName, folderID string) (*domain.FolderSyncReport, error) {
	report := &domain.FolderSyncReport{}

	folderID = strings.TrimSpace(folderID)
	if folderID == "" {
		return report, nil
	}

	room, err := o.merger.MergeRoom(ctx, roomName, folderID)
	if err != nil {
		return report, err
	}

	children, err := o.traverser.ListChildren(ctx, folderID, domain.ListOptions{OnlyFolders: true})
	if err != nil {
		return report, err
	}
	sortNodes(children)
	report.FoldersSeen = len(children)

	var merged, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(o.workers)
	for _, child := range children {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			_, err := o.merger.MergePatient(ctx, domain.PatientRecord{
				Name:           child.Name,
				RoomID:         room.ID,
				SourceFolderID: child.ID,
			})
			if err != nil {
				logger.Warn("Folder %q: %v", child.Name, err)
				failed.Add(1)
				return nil
			}
			merged.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	report.PatientsMerged = int(merged.Load())
	report.Failed = int(failed.Load())
	logger.Info("Room %q: %d patient folders merged, %d failed", room.Name, report.PatientsMerged, report.Failed)
	return report, ctx.Err()
}

// Status returns the state of the running pass.
func (o *SyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.current == nil {
		return &driving.SyncStatus{Running: false}, nil
	}

	// Return a snapshot to avoid sharing counters
	return &driving.SyncStatus{
		Running:            true,
		RoomsProcessed:     int(o.current.roomsProcessed.Load() + o.current.roomsFailed.Load()),
		DocumentsProcessed: int(o.current.processed.Load()),
		ErrorCount:         int(o.current.failed.Load()),
	}, nil
}

func (o *SyncOrchestrator) begin() (*tally, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current != nil {
		return nil, domain.ErrSyncInProgress
	}
	o.current = &tally{}
	return o.current, nil
}

func (o *SyncOrchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = nil
}

func (t *tally) fill(r *domain.SyncReport) {
	r.RoomsWithoutReports = int(t.roomsWithoutReports.Load())
	r.RoomsFailed = int(t.roomsFailed.Load())
	r.DocumentsProcessed = int(t.processed.Load())
	r.DocumentsFailed = int(t.failed.Load())
	r.DocumentsSkipped = int(t.skipped.Load())
}

// FindReportsFolder returns the first folder, by name then id, whose lower-cased
// name contains every token, together with the number of folders that match.
func FindReportsFolder(children []domain.FolderNode, tokens []string) (domain.FolderNode, int) {
	sorted := make([]domain.FolderNode, len(children))
	copy(sorted, children)
	sortNodes(sorted)

	var (
		found   domain.FolderNode
		matches int
	)
	for _, child := range sorted {
		if !containsAll(strings.ToLower(child.Name), tokens) {
			continue
		}
		if matches == 0 {
			found = child
		}
		matches++
	}
	return found, matches
}

func containsAll(name string, tokens []string) bool {
	for _, token := range tokens {
		if !strings.Contains(name, strings.ToLower(token)) {
			return false
		}
	}
	return true
}

func sortNodes(nodes []domain.FolderNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Name != nodes[j].Name {
			return nodes[i].Name < nodes[j].Name
		}
		return nodes[i].ID < nodes[j].ID
	})
}

type noopMetrics struct{}

func (noopMetrics) DocumentDone(string)               {}
func (noopMetrics) SyncDone(domain.SyncReport, error) {}
