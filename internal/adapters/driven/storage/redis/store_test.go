package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/salasync/internal/core/domain"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store := NewStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestNewStore_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewStore(context.Background(), mr.Addr())
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestNewStore_Offline(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewStore(context.Background(), addr)
	assert.Error(t, err)
}

func TestUpsertRoom_PreservesID(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertRoom(ctx, domain.RoomRecord{
		ID: "room-1", IdentityKey: "sala a", Name: "Sala A", SourceFolderID: "f1",
	})
	require.NoError(t, err)

	second, err := store.UpsertRoom(ctx, domain.RoomRecord{
		ID: "room-2", IdentityKey: "sala a", Name: "SALA A", SourceFolderID: "f2",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := store.GetRoom(ctx, "sala a")
	require.NoError(t, err)
	assert.Equal(t, "room-1", got.ID)
	assert.Equal(t, "SALA A", got.Name)
	assert.Equal(t, "f2", got.SourceFolderID)
}

func TestUpsertRoom_InvalidInput(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.UpsertRoom(context.Background(), domain.RoomRecord{IdentityKey: "sala"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.UpsertRoom(context.Background(), domain.RoomRecord{ID: "r1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetRoom_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.GetRoom(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListRooms_SortedByName(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	for i, name := range []string{"Sala C", "Sala A", "Sala B"} {
		_, err := store.UpsertRoom(ctx, domain.RoomRecord{
			ID: string(rune('1' + i)), IdentityKey: domain.IdentityKey(name), Name: name,
		})
		require.NoError(t, err)
	}

	rooms, err := store.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, "Sala A", rooms[0].Name)
	assert.Equal(t, "Sala B", rooms[1].Name)
	assert.Equal(t, "Sala C", rooms[2].Name)
}

func TestUpsertPatient_ReplacesAllFields(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertPatient(ctx, domain.PatientRecord{
		IdentityKey: "juan perez", Name: "Juan Perez", DNI: "12345678",
		Diagnosis: "Neumonia", RoomID: "room-1",
	})
	require.NoError(t, err)

	_, err = store.UpsertPatient(ctx, domain.PatientRecord{
		IdentityKey: "juan perez", Name: "Juan Perez", SocialSecurity: "OSDE", RoomID: "room-1",
	})
	require.NoError(t, err)

	got, err := store.GetPatient(ctx, "juan perez")
	require.NoError(t, err)
	assert.Empty(t, got.DNI)
	assert.Empty(t, got.Diagnosis)
	assert.Equal(t, "OSDE", got.SocialSecurity)

	// Absent fields are not stored at all.
	fields, err := mr.HKeys(patientKey("juan perez"))
	require.NoError(t, err)
	assert.NotContains(t, fields, fieldDNI)
	assert.NotContains(t, fields, fieldDiagnosis)
}

func TestUpsertPatient_InvalidInput(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.UpsertPatient(context.Background(), domain.PatientRecord{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetPatient_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.GetPatient(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPatients_FilterAndMoveBetweenRooms(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	for _, p := range []domain.PatientRecord{
		{IdentityKey: "b", Name: "B", RoomID: "room-1"},
		{IdentityKey: "a", Name: "A", RoomID: "room-1"},
		{IdentityKey: "c", Name: "C", RoomID: "room-2"},
		{IdentityKey: "d", Name: "D"},
	} {
		_, err := store.UpsertPatient(ctx, p)
		require.NoError(t, err)
	}

	all, err := store.ListPatients(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "A", all[0].Name)

	room1, err := store.ListPatients(ctx, "room-1")
	require.NoError(t, err)
	require.Len(t, room1, 2)
	assert.Equal(t, "A", room1[0].Name)
	assert.Equal(t, "B", room1[1].Name)

	// Moving a patient updates both room indexes.
	_, err = store.UpsertPatient(ctx, domain.PatientRecord{IdentityKey: "a", Name: "A", RoomID: "room-2"})
	require.NoError(t, err)

	room1, err = store.ListPatients(ctx, "room-1")
	require.NoError(t, err)
	assert.Len(t, room1, 1)

	room2, err := store.ListPatients(ctx, "room-2")
	require.NoError(t, err)
	assert.Len(t, room2, 2)

	members, err := mr.SMembers(roomPatientsKey("room-2"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c"}, members)
}

func TestListPatients_UnknownRoom(t *testing.T) {
	store, _ := setupTestStore(t)

	patients, err := store.ListPatients(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, patients)
}
