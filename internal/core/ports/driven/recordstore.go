package driven

import (
	"context"

	"github.com/custodia-labs/salasync/internal/core/domain"
)

// RecordStore persists registry records keyed by identity key.
// Upserts replace every column of an existing row sharing the key.
type RecordStore interface {
	// UpsertRoom inserts or replaces a room by IdentityKey.
	// The stored ID of an existing room is preserved.
	UpsertRoom(ctx context.Context, room domain.RoomRecord) (*domain.RoomRecord, error)

	// GetRoom retrieves a room by identity key.
	GetRoom(ctx context.Context, key string) (*domain.RoomRecord, error)

	// ListRooms returns all rooms ordered by name.
	ListRooms(ctx context.Context) ([]domain.RoomRecord, error)

	// UpsertPatient inserts or replaces a patient by IdentityKey.
	UpsertPatient(ctx context.Context, patient domain.PatientRecord) (*domain.PatientRecord, error)

	// GetPatient retrieves a patient by identity key.
	GetPatient(ctx context.Context, key string) (*domain.PatientRecord, error)

	// ListPatients returns patients ordered by name.
	// An empty roomID returns every patient.
	ListPatients(ctx context.Context, roomID string) ([]domain.PatientRecord, error)

	// Close releases the underlying connection.
	Close() error
}
