package domain

import "time"

// SyncReport aggregates the outcome of one sync pass.
type SyncReport struct {
	// RoomsSeen is the number of room folders listed under the master folder.
	RoomsSeen int

	// RoomsWithoutReports is the number of rooms with no final-reports folder.
	RoomsWithoutReports int

	// RoomsFailed is the number of rooms whose branch failed (upsert or listing).
	RoomsFailed int

	// DocumentsProcessed is the number of documents merged into the registry.
	DocumentsProcessed int

	// DocumentsFailed is the number of documents that failed to fetch, convert or merge.
	DocumentsFailed int

	// DocumentsSkipped is the number of entries with no text path (folders, other formats).
	DocumentsSkipped int

	// StartedAt is when the pass began.
	StartedAt time.Time

	// Duration is how long the pass took.
	Duration time.Duration
}

// FolderSyncReport aggregates the outcome of a room patient-folder sync.
type FolderSyncReport struct {
	// FoldersSeen is the number of child folders listed.
	FoldersSeen int

	// PatientsMerged is the number of patient records written.
	PatientsMerged int

	// Failed is the number of folders whose upsert failed.
	Failed int
}
