package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
	"github.com/custodia-labs/salasync/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.RecordStore = (*Store)(nil)

const (
	prefix         = "salasync:"
	roomsIndex     = prefix + "rooms"
	patientsIndex  = prefix + "patients"
	maxTxRetries   = 5
	pingTimeout    = 3 * time.Second
	fieldID        = "id"
	fieldKey       = "identity_key"
	fieldName      = "name"
	fieldFolder    = "source_folder_id"
	fieldDNI       = "dni"
	fieldSocial    = "social_security"
	fieldDiagnosis = "diagnosis"
	fieldRoomID    = "room_id"
	fieldUpdatedAt = "updated_at"
)

// Store is the Redis-backed registry.
type Store struct {
	client *redis.Client
}

// NewStore connects to addr and verifies the server answers.
func NewStore(ctx context.Context, addr string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:                  addr,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s offline: %w", addr, err)
	}

	logger.Debug("redis registry connected at %s", addr)
	return NewStoreWithClient(client), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func roomKey(key string) string        { return prefix + "room:" + key }
func patientKey(key string) string     { return prefix + "patient:" + key }
func roomPatientsKey(id string) string { return prefix + "room-patients:" + id }

// ==================== Rooms ====================

// UpsertRoom inserts or replaces a room by identity key, keeping an existing id.
func (s *Store) UpsertRoom(ctx context.Context, room domain.RoomRecord) (*domain.RoomRecord, error) {
	if room.IdentityKey == "" || room.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	hashKey := roomKey(room.IdentityKey)

	txf := func(tx *redis.Tx) error {
		existing, err := tx.HGet(ctx, hashKey, fieldID).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if existing != "" {
			room.ID = existing
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, hashKey)
			pipe.HSet(ctx, hashKey, compact(map[string]string{
				fieldID:        room.ID,
				fieldKey:       room.IdentityKey,
				fieldName:      room.Name,
				fieldFolder:    room.SourceFolderID,
				fieldUpdatedAt: time.Now().UTC().Format(time.RFC3339),
			}))
			pipe.SAdd(ctx, roomsIndex, room.IdentityKey)
			return nil
		})
		return err
	}

	if err := s.watch(ctx, txf, hashKey); err != nil {
		return nil, fmt.Errorf("saving room: %w", err)
	}
	return &room, nil
}

// GetRoom retrieves a room by identity key.
func (s *Store) GetRoom(ctx context.Context, key string) (*domain.RoomRecord, error) {
	fields, err := s.client.HGetAll(ctx, roomKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading room: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrNotFound
	}
	room := toRoom(fields)
	return &room, nil
}

// ListRooms returns all rooms ordered by name.
func (s *Store) ListRooms(ctx context.Context) ([]domain.RoomRecord, error) {
	hashes, err := s.loadAll(ctx, roomsIndex, roomKey)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}

	rooms := make([]domain.RoomRecord, 0, len(hashes))
	for _, h := range hashes {
		rooms = append(rooms, toRoom(h))
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name != rooms[j].Name {
			return rooms[i].Name < rooms[j].Name
		}
		return rooms[i].IdentityKey < rooms[j].IdentityKey
	})
	return rooms, nil
}

// ==================== Patients ====================

// UpsertPatient replaces a patient hash entirely and moves it between room indexes.
func (s *Store) UpsertPatient(ctx context.Context, p domain.PatientRecord) (*domain.PatientRecord, error) {
	if p.IdentityKey == "" {
		return nil, domain.ErrInvalidInput
	}
	hashKey := patientKey(p.IdentityKey)

	txf := func(tx *redis.Tx) error {
		oldRoom, err := tx.HGet(ctx, hashKey, fieldRoomID).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, hashKey)
			pipe.HSet(ctx, hashKey, compact(map[string]string{
				fieldKey:       p.IdentityKey,
				fieldName:      p.Name,
				fieldDNI:       p.DNI,
				fieldSocial:    p.SocialSecurity,
				fieldDiagnosis: p.Diagnosis,
				fieldRoomID:    p.RoomID,
				fieldFolder:    p.SourceFolderID,
				fieldUpdatedAt: time.Now().UTC().Format(time.RFC3339),
			}))
			pipe.SAdd(ctx, patientsIndex, p.IdentityKey)
			if oldRoom != "" && oldRoom != p.RoomID {
				pipe.SRem(ctx, roomPatientsKey(oldRoom), p.IdentityKey)
			}
			if p.RoomID != "" {
				pipe.SAdd(ctx, roomPatientsKey(p.RoomID), p.IdentityKey)
			}
			return nil
		})
		return err
	}

	if err := s.watch(ctx, txf, hashKey); err != nil {
		return nil, fmt.Errorf("saving patient: %w", err)
	}
	return &p, nil
}

// GetPatient retrieves a patient by identity key.
func (s *Store) GetPatient(ctx context.Context, key string) (*domain.PatientRecord, error) {
	fields, err := s.client.HGetAll(ctx, patientKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading patient: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrNotFound
	}
	p := toPatient(fields)
	return &p, nil
}

// ListPatients returns patients ordered by name, optionally filtered by room.
func (s *Store) ListPatients(ctx context.Context, roomID string) ([]domain.PatientRecord, error) {
	index := patientsIndex
	if roomID != "" {
		index = roomPatientsKey(roomID)
	}

	hashes, err := s.loadAll(ctx, index, patientKey)
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}

	patients := make([]domain.PatientRecord, 0, len(hashes))
	for _, h := range hashes {
		patients = append(patients, toPatient(h))
	}
	sort.Slice(patients, func(i, j int) bool {
		if patients[i].Name != patients[j].Name {
			return patients[i].Name < patients[j].Name
		}
		return patients[i].IdentityKey < patients[j].IdentityKey
	})
	return patients, nil
}

// ==================== Helpers ====================

// watch runs txf under optimistic locking, retrying on concurrent writes.
func (s *Store) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

// loadAll reads every hash referenced by an index set in one pipeline.
func (s *Store) loadAll(ctx context.Context, index string, keyFn func(string) string) ([]map[string]string, error) {
	members, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(members))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, m := range members {
			cmds[i] = pipe.HGetAll(ctx, keyFn(m))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]map[string]string, 0, len(cmds))
	for _, cmd := range cmds {
		if fields := cmd.Val(); len(fields) > 0 {
			out = append(out, fields)
		}
	}
	return out, nil
}

// compact drops empty values so absent fields are not stored.
func compact(fields map[string]string) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func toRoom(f map[string]string) domain.RoomRecord {
	return domain.RoomRecord{
		ID:             f[fieldID],
		IdentityKey:    f[fieldKey],
		Name:           f[fieldName],
		SourceFolderID: f[fieldFolder],
	}
}

func toPatient(f map[string]string) domain.PatientRecord {
	return domain.PatientRecord{
		IdentityKey:    f[fieldKey],
		Name:           f[fieldName],
		DNI:            f[fieldDNI],
		SocialSecurity: f[fieldSocial],
		Diagnosis:      f[fieldDiagnosis],
		RoomID:         f[fieldRoomID],
		SourceFolderID: f[fieldFolder],
	}
}
