package driving

import (
	"context"

	"github.com/custodia-labs/salasync/internal/core/domain"
)

// RegistryService reads the local registry.
type RegistryService interface {
	// ListRooms returns all rooms ordered by name.
	ListRooms(ctx context.Context) ([]domain.RoomRecord, error)

	// ListPatients returns patients, optionally restricted to a room name.
	ListPatients(ctx context.Context, roomName string) ([]domain.PatientRecord, error)

	// GetPatient looks a patient up by name; the name is normalised first.
	GetPatient(ctx context.Context, name string) (*domain.PatientRecord, error)

	// Counts returns the number of rooms and patients.
	Counts(ctx context.Context) (rooms, patients int, err error)
}

// FolderService browses the external document store.
type FolderService interface {
	// ListFiles returns the non-trashed children of a folder sorted by name.
	ListFiles(ctx context.Context, folderID string) ([]domain.FolderNode, error)
}
