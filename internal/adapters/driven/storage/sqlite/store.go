package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/salasync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RecordStore = (*Store)(nil)

// Store is the SQLite-backed registry.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.salasync/data/registry.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".salasync", "data")
	}

	// Patient data: owner-only permissions
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "registry.db")

	// Open database with WAL mode so concurrent sync workers do not block readers
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(context.Background(), migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending up migrations and records each applied version.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_registry.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(ctx, version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(ctx context.Context, version int, script string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Rooms ====================

// UpsertRoom inserts or replaces a room by identity key.
// The id of an existing row is kept.
func (s *Store) UpsertRoom(ctx context.Context, room domain.RoomRecord) (*domain.RoomRecord, error) {
	if room.IdentityKey == "" || room.ID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO rooms (id, identity_key, name, source_folder_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity_key) DO UPDATE SET
			name = excluded.name,
			source_folder_id = excluded.source_folder_id,
			updated_at = excluded.updated_at
		RETURNING id
	`, room.ID, room.IdentityKey, room.Name, nullString(room.SourceFolderID), now, now)

	if err := row.Scan(&room.ID); err != nil {
		return nil, fmt.Errorf("saving room: %w", err)
	}
	return &room, nil
}

// GetRoom retrieves a room by identity key.
func (s *Store) GetRoom(ctx context.Context, key string) (*domain.RoomRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, identity_key, name, source_folder_id
		FROM rooms WHERE identity_key = ?
	`, key)

	room, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning room: %w", err)
	}
	return room, nil
}

// ListRooms returns all rooms ordered by name.
func (s *Store) ListRooms(ctx context.Context) ([]domain.RoomRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, identity_key, name, source_folder_id
		FROM rooms ORDER BY name, identity_key
	`)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	defer rows.Close()

	rooms := []domain.RoomRecord{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		rooms = append(rooms, *room)
	}
	return rooms, rows.Err()
}

// ==================== Patients ====================

// UpsertPatient inserts or replaces a patient by identity key.
// Every column is replaced; absent fields are stored as NULL.
func (s *Store) UpsertPatient(ctx context.Context, p domain.PatientRecord) (*domain.PatientRecord, error) {
	if p.IdentityKey == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO patients (identity_key, name, dni, social_security, diagnosis,
			room_id, source_folder_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity_key) DO UPDATE SET
			name = excluded.name,
			dni = excluded.dni,
			social_security = excluded.social_security,
			diagnosis = excluded.diagnosis,
			room_id = excluded.room_id,
			source_folder_id = excluded.source_folder_id,
			updated_at = excluded.updated_at
	`, p.IdentityKey, p.Name, nullString(p.DNI), nullString(p.SocialSecurity), nullString(p.Diagnosis),
		nullString(p.RoomID), nullString(p.SourceFolderID), now, now)

	if err != nil {
		return nil, fmt.Errorf("saving patient: %w", err)
	}
	return &p, nil
}

// GetPatient retrieves a patient by identity key.
func (s *Store) GetPatient(ctx context.Context, key string) (*domain.PatientRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT identity_key, name, dni, social_security, diagnosis, room_id, source_folder_id
		FROM patients WHERE identity_key = ?
	`, key)

	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning patient: %w", err)
	}
	return p, nil
}

// ListPatients returns patients ordered by name, optionally filtered by room.
func (s *Store) ListPatients(ctx context.Context, roomID string) ([]domain.PatientRecord, error) {
	query := `
		SELECT identity_key, name, dni, social_security, diagnosis, room_id, source_folder_id
		FROM patients`
	var args []any
	if roomID != "" {
		query += " WHERE room_id = ?"
		args = append(args, roomID)
	}
	query += " ORDER BY name, identity_key"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	defer rows.Close()

	patients := []domain.PatientRecord{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning patient: %w", err)
		}
		patients = append(patients, *p)
	}
	return patients, rows.Err()
}

// ==================== Helpers ====================

type scanner interface {
	Scan(dest ...any) error
}

func scanRoom(row scanner) (*domain.RoomRecord, error) {
	var room domain.RoomRecord
	var folderID sql.NullString
	if err := row.Scan(&room.ID, &room.IdentityKey, &room.Name, &folderID); err != nil {
		return nil, err
	}
	room.SourceFolderID = folderID.String
	return &room, nil
}

func scanPatient(row scanner) (*domain.PatientRecord, error) {
	var p domain.PatientRecord
	var dni, socialSecurity, diagnosis, roomID, folderID sql.NullString
	if err := row.Scan(&p.IdentityKey, &p.Name, &dni, &socialSecurity, &diagnosis, &roomID, &folderID); err != nil {
		return nil, err
	}
	p.DNI = dni.String
	p.SocialSecurity = socialSecurity.String
	p.Diagnosis = diagnosis.String
	p.RoomID = roomID.String
	p.SourceFolderID = folderID.String
	return &p, nil
}

// nullString converts an empty string to a NULL value.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
