package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
	"github.com/custodia-labs/salasync/internal/core/ports/driving"
)

// Ensure services implement the interfaces.
var (
	_ driving.RegistryService = (*RegistryService)(nil)
	_ driving.FolderService   = (*FolderService)(nil)
)

// RegistryService reads rooms and patients from the registry.
type RegistryService struct {
	store driven.RecordStore
}

// NewRegistryService creates a new registry service.
func NewRegistryService(store driven.RecordStore) *RegistryService {
	return &RegistryService{store: store}
}

// ListRooms returns all rooms ordered by name.
func (s *RegistryService) ListRooms(ctx context.Context) ([]domain.RoomRecord, error) {
	return s.store.ListRooms(ctx)
}

// ListPatients returns patients, optionally restricted to a room.
// The room name is normalised before lookup; an unknown room returns ErrNotFound.
func (s *RegistryService) ListPatients(ctx context.Context, roomName string) ([]domain.PatientRecord, error) {
	if strings.TrimSpace(roomName) == "" {
		return s.store.ListPatients(ctx, "")
	}

	room, err := s.store.GetRoom(ctx, domain.IdentityKey(roomName))
	if err != nil {
		return nil, fmt.Errorf("room %q: %w", roomName, err)
	}
	return s.store.ListPatients(ctx, room.ID)
}

// GetPatient looks a patient up by name.
func (s *RegistryService) GetPatient(ctx context.Context, name string) (*domain.PatientRecord, error) {
	key := domain.IdentityKey(name)
	if key == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.store.GetPatient(ctx, key)
}

// Counts returns the number of rooms and patients.
func (s *RegistryService) Counts(ctx context.Context) (int, int, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return 0, 0, err
	}
	patients, err := s.store.ListPatients(ctx, "")
	if err != nil {
		return 0, 0, err
	}
	return len(rooms), len(patients), nil
}

// FolderService lists folders in the document store.
type FolderService struct {
	traverser driven.FolderTraverser
}

// NewFolderService creates a new folder service.
func NewFolderService(traverser driven.FolderTraverser) *FolderService {
	return &FolderService{traverser: traverser}
}

// ListFiles returns the non-trashed children of folderID sorted by name.
func (s *FolderService) ListFiles(ctx context.Context, folderID string) ([]domain.FolderNode, error) {
	if strings.TrimSpace(folderID) == "" {
		return nil, domain.ErrInvalidInput
	}
	if s.traverser == nil {
		return nil, errors.New("document store not configured")
	}

	nodes, err := s.traverser.ListChildren(ctx, folderID, domain.ListOptions{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return strings.ToLower(nodes[i].Name) < strings.ToLower(nodes[j].Name)
	})
	return nodes, nil
}
