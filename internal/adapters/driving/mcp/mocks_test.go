package mcp

import (
	"context"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driving"
)

// Ensure mockRegistryService implements the interface.
var _ driving.RegistryService = (*mockRegistryService)(nil)

// mockRegistryService is a mock implementation of driving.RegistryService.
type mockRegistryService struct {
	rooms    []domain.RoomRecord
	patients []domain.PatientRecord
	patient  *domain.PatientRecord
	err      error

	lastRoom string
	lastName string
}

func (m *mockRegistryService) ListRooms(_ context.Context) ([]domain.RoomRecord, error) {
	return m.rooms, m.err
}

func (m *mockRegistryService) ListPatients(_ context.Context, roomName string) ([]domain.PatientRecord, error) {
	m.lastRoom = roomName
	return m.patients, m.err
}

func (m *mockRegistryService) GetPatient(_ context.Context, name string) (*domain.PatientRecord, error) {
	m.lastName = name
	if m.err != nil {
		return nil, m.err
	}
	return m.patient, nil
}

func (m *mockRegistryService) Counts(_ context.Context) (int, int, error) {
	return len(m.rooms), len(m.patients), m.err
}
