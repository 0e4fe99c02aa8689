package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// ExtractedFields is the best-effort result of running the field rules over a text.
// An empty string means the field was not found.
type ExtractedFields struct {
	Name           string
	DNI            string
	SocialSecurity string
	Diagnosis      string
}

// IsEmpty reports whether no field was found.
func (f ExtractedFields) IsEmpty() bool {
	return f.Name == "" && f.DNI == "" && f.SocialSecurity == "" && f.Diagnosis == ""
}

// PatientRecord is a persisted registry entry for one patient.
// IdentityKey is the sole deduplication key across the registry.
type PatientRecord struct {
	// IdentityKey is the trimmed, case-folded name.
	IdentityKey string

	// Name is the display name as last extracted.
	Name string

	// DNI is the national document number. Empty when absent.
	DNI string

	// SocialSecurity is the health coverage provider. Empty when absent.
	SocialSecurity string

	// Diagnosis is the main diagnosis or admission reason. Empty when absent.
	Diagnosis string

	// RoomID references the RoomRecord the patient was found under.
	RoomID string

	// SourceFolderID is the folder the record was derived from.
	SourceFolderID string
}

// RoomRecord is a persisted registry entry for one room folder.
type RoomRecord struct {
	// ID is assigned on first insert and preserved on replace.
	ID string

	// IdentityKey is the trimmed, case-folded name.
	IdentityKey string

	// Name is the folder name.
	Name string

	// SourceFolderID is the room's folder in the document store.
	SourceFolderID string
}

// IdentityKey normalises a name into a registry key.
// "  Maria Lopez " and "maria lopez" yield the same key.
func IdentityKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// MergePolicy controls how a candidate replaces an existing record.
type MergePolicy string

const (
	// MergeReplace overwrites every field, erasing fields absent from the candidate.
	MergeReplace MergePolicy = "replace"

	// MergeNonEmpty keeps stored values for fields absent from the candidate.
	MergeNonEmpty MergePolicy = "merge-non-empty"
)

// ParseMergePolicy converts a configuration value to a MergePolicy.
// Empty input yields MergeReplace.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MergeReplace:
		return MergeReplace, nil
	case MergeNonEmpty:
		return MergeNonEmpty, nil
	default:
		return "", ErrInvalidInput
	}
}
