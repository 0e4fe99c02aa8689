package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu       sync.RWMutex
	rooms    map[string]domain.RoomRecord
	patients map[string]domain.PatientRecord
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		rooms:    make(map[string]domain.RoomRecord),
		patients: make(map[string]domain.PatientRecord),
	}
}

// UpsertRoom inserts or replaces a room, preserving the ID of an existing row.
func (s *RecordStore) UpsertRoom(_ context.Context, room domain.RoomRecord) (*domain.RoomRecord, error) {
	if room.IdentityKey == "" {
		return nil, domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rooms[room.IdentityKey]; ok {
		room.ID = existing.ID
	} else if room.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	s.rooms[room.IdentityKey] = room
	return &room, nil
}

// GetRoom retrieves a room by identity key.
func (s *RecordStore) GetRoom(_ context.Context, key string) (*domain.RoomRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &room, nil
}

// ListRooms returns all rooms ordered by name.
func (s *RecordStore) ListRooms(_ context.Context) ([]domain.RoomRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]domain.RoomRecord, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

// UpsertPatient inserts or replaces a patient.
func (s *RecordStore) UpsertPatient(_ context.Context, patient domain.PatientRecord) (*domain.PatientRecord, error) {
	if patient.IdentityKey == "" {
		return nil, domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[patient.IdentityKey] = patient
	return &patient, nil
}

// GetPatient retrieves a patient by identity key.
func (s *RecordStore) GetPatient(_ context.Context, key string) (*domain.PatientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	patient, ok := s.patients[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &patient, nil
}

// ListPatients returns patients ordered by name, optionally filtered by room.
func (s *RecordStore) ListPatients(_ context.Context, roomID string) ([]domain.PatientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	patients := make([]domain.PatientRecord, 0, len(s.patients))
	for _, p := range s.patients {
		if roomID != "" && p.RoomID != roomID {
			continue
		}
		patients = append(patients, p)
	}
	sort.Slice(patients, func(i, j int) bool { return patients[i].Name < patients[j].Name })
	return patients, nil
}

// Close is a no-op for the memory store.
func (s *RecordStore) Close() error {
	return nil
}
