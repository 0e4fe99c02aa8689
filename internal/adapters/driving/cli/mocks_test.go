package cli

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driving"
)

// mockSyncOrchestrator implements driving.SyncOrchestrator for testing.
type mockSyncOrchestrator struct {
	mu         sync.Mutex
	report     *domain.SyncReport
	roomReport *domain.FolderSyncReport
	err        error
	delay      time.Duration
	masterID   string
	roomArgs   []string
}

func (m *mockSyncOrchestrator) SyncMaster(_ context.Context, masterID string) (*domain.SyncReport, error) {
	m.mu.Lock()
	m.masterID = masterID
	m.mu.Unlock()
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	report := m.report
	if report == nil {
		report = &domain.SyncReport{}
	}
	return report, m.err
}

func (m *mockSyncOrchestrator) SyncRoomFolders(_ context.Context, roomName, folderID string) (*domain.FolderSyncReport, error) {
	m.roomArgs = []string{roomName, folderID}
	if m.roomReport == nil {
		return &domain.FolderSyncReport{}, m.err
	}
	return m.roomReport, m.err
}

func (m *mockSyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{Running: true, RoomsProcessed: 1, DocumentsProcessed: 3}, nil
}

// mockRegistryService implements driving.RegistryService for testing.
type mockRegistryService struct {
	rooms    []domain.RoomRecord
	patients []domain.PatientRecord
	patient  *domain.PatientRecord
	err      error
	lastRoom string
}

func (m *mockRegistryService) ListRooms(_ context.Context) ([]domain.RoomRecord, error) {
	return m.rooms, m.err
}

func (m *mockRegistryService) ListPatients(_ context.Context, roomName string) ([]domain.PatientRecord, error) {
	m.lastRoom = roomName
	return m.patients, m.err
}

func (m *mockRegistryService) GetPatient(_ context.Context, _ string) (*domain.PatientRecord, error) {
	return m.patient, m.err
}

func (m *mockRegistryService) Counts(_ context.Context) (int, int, error) {
	return len(m.rooms), len(m.patients), m.err
}

// mockFolderService implements driving.FolderService for testing.
type mockFolderService struct {
	nodes []domain.FolderNode
	err   error
}

func (m *mockFolderService) ListFiles(_ context.Context, _ string) ([]domain.FolderNode, error) {
	return m.nodes, m.err
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings *domain.AppSettings
	err      error
	setErr   error
	set      map[string]string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.settings == nil {
		s := domain.DefaultAppSettings()
		return &s, nil
	}
	return m.settings, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{
		"auth.access_token", "drive.master_folder_id", "registry.backend",
		"sync.merge_policy", "sync.workers",
	}
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// mockMetricsWriter records textfile writes.
type mockMetricsWriter struct {
	path string
	err  error
}

func (m *mockMetricsWriter) WriteTextfile(path string) error {
	m.path = path
	return m.err
}

// setupTestServices injects fresh mocks and returns them with a cleanup func.
func setupTestServices() (*testServices, func()) {
	old := Services{
		Sync:     syncOrchestrator,
		Registry: registryService,
		Folders:  folderService,
		Settings: settingsService,
		Metrics:  metricsWriter,
	}
	oldTerminal := isTerminal

	ts := &testServices{
		sync:     &mockSyncOrchestrator{},
		registry: &mockRegistryService{},
		folders:  &mockFolderService{},
		settings: &mockSettingsService{},
		metrics:  &mockMetricsWriter{},
	}
	SetServices(Services{
		Sync:     ts.sync,
		Registry: ts.registry,
		Folders:  ts.folders,
		Settings: ts.settings,
		Metrics:  ts.metrics,
	})
	isTerminal = func() bool { return false }

	return ts, func() {
		SetServices(old)
		isTerminal = oldTerminal
		metricsFile = ""
		_ = patientsCmd.Flags().Set("room", "")
		rootCmd.SetArgs(nil)
	}
}

type testServices struct {
	sync     *mockSyncOrchestrator
	registry *mockRegistryService
	folders  *mockFolderService
	settings *mockSettingsService
	metrics  *mockMetricsWriter
}
