package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
)

// RecordMerger normalises candidate records and upserts them into the registry.
// Merges of the same identity key run one at a time, so a read-modify-write
// under MergeNonEmpty never loses a concurrent writer's fields.
type RecordMerger struct {
	store  driven.RecordStore
	policy domain.MergePolicy
	newID  func() string
	keys   keyLocks
}

// NewRecordMerger creates a merger. An empty policy means MergeReplace.
func NewRecordMerger(store driven.RecordStore, policy domain.MergePolicy) *RecordMerger {
	if policy == "" {
		policy = domain.MergeReplace
	}
	return &RecordMerger{
		store:  store,
		policy: policy,
		newID:  uuid.NewString,
	}
}

// Policy returns the merge policy in use.
func (m *RecordMerger) Policy() domain.MergePolicy {
	return m.policy
}

// MergeRoom upserts a room keyed by its normalised name.
// A new room receives a fresh id; an existing room keeps its id.
func (m *RecordMerger) MergeRoom(ctx context.Context, name, folderID string) (*domain.RoomRecord, error) {
	key := domain.IdentityKey(name)
	if key == "" {
		return nil, fmt.Errorf("%w: room %q: %w", domain.ErrMerge, name, domain.ErrInvalidInput)
	}

	unlock := m.keys.lock("room:" + key)
	defer unlock()

	room, err := m.store.UpsertRoom(ctx, domain.RoomRecord{
		ID:             m.newID(),
		IdentityKey:    key,
		Name:           strings.TrimSpace(name),
		SourceFolderID: folderID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: room %q: %w", domain.ErrMerge, name, err)
	}
	return room, nil
}

// MergePatient upserts a patient keyed by its normalised name.
//
// With MergeReplace every stored field is overwritten, so a field missing
// from the candidate erases the stored value. With MergeNonEmpty the stored
// value survives when the candidate field is empty.
func (m *RecordMerger) MergePatient(ctx context.Context, candidate domain.PatientRecord) (*domain.PatientRecord, error) {
	candidate.Name = strings.TrimSpace(candidate.Name)
	candidate.IdentityKey = domain.IdentityKey(candidate.Name)
	if candidate.IdentityKey == "" {
		return nil, fmt.Errorf("%w: patient with empty name: %w", domain.ErrMerge, domain.ErrInvalidInput)
	}

	unlock := m.keys.lock("patient:" + candidate.IdentityKey)
	defer unlock()

	if m.policy == domain.MergeNonEmpty {
		existing, err := m.store.GetPatient(ctx, candidate.IdentityKey)
		switch {
		case err == nil:
			candidate = fillEmpty(candidate, *existing)
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("%w: patient %q: %w", domain.ErrMerge, candidate.Name, err)
		}
	}

	stored, err := m.store.UpsertPatient(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: patient %q: %w", domain.ErrMerge, candidate.Name, err)
	}
	return stored, nil
}

// fillEmpty copies fields from existing into the empty fields of candidate.
func fillEmpty(candidate, existing domain.PatientRecord) domain.PatientRecord {
	keep := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	keep(&candidate.DNI, existing.DNI)
	keep(&candidate.SocialSecurity, existing.SocialSecurity)
	keep(&candidate.Diagnosis, existing.Diagnosis)
	keep(&candidate.RoomID, existing.RoomID)
	keep(&candidate.SourceFolderID, existing.SourceFolderID)
	return candidate
}

// PatientFromFields builds a candidate from extracted fields.
func PatientFromFields(fields domain.ExtractedFields, roomID, folderID string) domain.PatientRecord {
	return domain.PatientRecord{
		Name:           fields.Name,
		DNI:            fields.DNI,
		SocialSecurity: fields.SocialSecurity,
		Diagnosis:      fields.Diagnosis,
		RoomID:         roomID,
		SourceFolderID: folderID,
	}
}
