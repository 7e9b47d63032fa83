package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdoodle/pairing/internal/domain"
	"github.com/pdoodle/pairing/internal/infrastructure/repository"
)

func newTestRepository() domain.RoomRepository {
	return repository.NewRoomRepository(nil, 5, 10*time.Minute)
}

func identity(subject string) domain.Identity {
	return domain.Identity{
		Subject: subject,
		Name:    subject,
		Email:   subject + "@example.com",
	}
}

func TestCreateRoom(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	room, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)

	assert.Len(t, room.Code, domain.CodeLength)
	assert.Equal(t, domain.StatusWaiting, room.Status)
	assert.Equal(t, "alice", room.Creator.Subject)
	assert.Nil(t, room.Partner)
}

func TestCreateRoom_AlreadyInRoom(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	_, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)

	_, err = repo.CreateRoom(ctx, identity("alice"))
	assert.ErrorIs(t, err, domain.ErrAlreadyInRoom)
}

func TestCreateRoom_MissingSubject(t *testing.T) {
	repo := newTestRepository()

	_, err := repo.CreateRoom(context.Background(), domain.Identity{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestCreateRoom_CollisionRetry forces the generator to repeat a taken
// code and verifies the store retries past it.
func TestCreateRoom_CollisionRetry(t *testing.T) {
	ctx := context.Background()

	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	i := 0
	generate := func() (string, error) {
		code := codes[i]
		i++
		return code, nil
	}

	repo := repository.NewRoomRepository(generate, 5, 10*time.Minute)

	first, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", first.Code)

	second, err := repo.CreateRoom(ctx, identity("bob"))
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", second.Code)
}

func TestCreateRoom_CodeExhausted(t *testing.T) {
	ctx := context.Background()

	generate := func() (string, error) {
		return "AAAAAA", nil
	}

	repo := repository.NewRoomRepository(generate, 3, 10*time.Minute)

	_, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)

	_, err = repo.CreateRoom(ctx, identity("bob"))
	assert.ErrorIs(t, err, domain.ErrCodeExhausted)
}

func TestAdmitPartner(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	created, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)

	paired, err := repo.AdmitPartner(ctx, created.Code, identity("bob"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPaired, paired.Status)
	require.NotNil(t, paired.Partner)
	assert.Equal(t, "bob", paired.Partner.Subject)
}

func TestAdmitPartner_CodeIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()

	generate := func() (string, error) { return "ABC234", nil }
	repo := repository.NewRoomRepository(generate, 5, 10*time.Minute)

	_, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)

	paired, err := repo.AdmitPartner(ctx, "  abc234 ", identity("bob"))
	require.NoError(t, err)
	assert.Equal(t, "ABC234", paired.Code)
}

func TestAdmitPartner_Errors(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	created, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)

	t.Run("unknown code", func(t *testing.T) {
		_, err := repo.AdmitPartner(ctx, "ZZZZZZ", identity("bob"))
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	})

	t.Run("creator joining own room", func(t *testing.T) {
		_, err := repo.AdmitPartner(ctx, created.Code, identity("alice"))
		assert.ErrorIs(t, err, domain.ErrSelfJoin)
	})

	t.Run("joiner already occupied elsewhere", func(t *testing.T) {
		_, err := repo.CreateRoom(ctx, identity("carol"))
		require.NoError(t, err)

		_, err = repo.AdmitPartner(ctx, created.Code, identity("carol"))
		assert.ErrorIs(t, err, domain.ErrAlreadyInRoom)
	})

	t.Run("room already paired", func(t *testing.T) {
		_, err := repo.AdmitPartner(ctx, created.Code, identity("bob"))
		require.NoError(t, err)

		_, err = repo.AdmitPartner(ctx, created.Code, identity("dave"))
		assert.ErrorIs(t, err, domain.ErrAlreadyPaired)
	})
}

// TestAdmitPartner_ExpiredRoom verifies that a WAITING room past its
// TTL behaves like a dead code even before the sweeper reclaims it.
func TestAdmitPartner_ExpiredRoom(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRoomRepository(nil, 5, 10*time.Millisecond)

	created, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = repo.AdmitPartner(ctx, created.Code, identity("bob"))
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

// TestAdmitPartner_ConcurrentJoiners races many joiners against one
// WAITING room and requires exactly one winner.
func TestAdmitPartner_ConcurrentJoiners(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	created, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)

	const joiners = 32

	var wg sync.WaitGroup
	results := make([]error, joiners)

	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = repo.AdmitPartner(ctx, created.Code, identity(fmt.Sprintf("joiner-%d", i)))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, domain.ErrAlreadyPaired)
		}
	}

	assert.Equal(t, 1, winners)
}

func TestRoomForIdentity(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	created, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)

	room, err := repo.RoomForIdentity(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, created.Code, room.Code)

	room, err = repo.RoomForIdentity(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, room)

	_, err = repo.AdmitPartner(ctx, created.Code, identity("bob"))
	require.NoError(t, err)

	// Both sides resolve to the same room once paired.
	room, err = repo.RoomForIdentity(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, created.Code, room.Code)
}

func TestDeleteRoomForMember(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	created, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)
	_, err = repo.AdmitPartner(ctx, created.Code, identity("bob"))
	require.NoError(t, err)

	deleted, err := repo.DeleteRoomForMember(ctx, created.Code, "bob")
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, created.Code, deleted.Code)

	// Both membership entries are gone.
	for _, subject := range []string{"alice", "bob"} {
		room, err := repo.RoomForIdentity(ctx, subject)
		require.NoError(t, err)
		assert.Nil(t, room)
	}

	// Deleting again is a quiet no-op.
	deleted, err = repo.DeleteRoomForMember(ctx, created.Code, "alice")
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

// TestDeleteRoomForMember_FreesCodeForReuse verifies a code becomes
// available again once its room is gone.
func TestDeleteRoomForMember_FreesCodeForReuse(t *testing.T) {
	ctx := context.Background()

	generate := func() (string, error) { return "AAAAAA", nil }
	repo := repository.NewRoomRepository(generate, 3, 10*time.Minute)

	created, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)

	_, err = repo.DeleteRoomForMember(ctx, created.Code, "alice")
	require.NoError(t, err)

	again, err := repo.CreateRoom(ctx, identity("bob"))
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", again.Code)
}

// TestDeleteRoomForMember_SparesReissuedCode replays a leave that lost
// the race with expiry and code reuse: the stale delete must not touch
// the stranger's room now living under the same code.
func TestDeleteRoomForMember_SparesReissuedCode(t *testing.T) {
	ctx := context.Background()

	generate := func() (string, error) { return "AAAAAA", nil }
	repo := repository.NewRoomRepository(generate, 3, 10*time.Minute)

	stale, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)

	// The room expires and the code is reissued before alice's delete
	// lands.
	_, err = repo.DeleteIfWaitingBefore(ctx, stale.Code, time.Now().Add(time.Hour))
	require.NoError(t, err)
	reissued, err := repo.CreateRoom(ctx, identity("carol"))
	require.NoError(t, err)
	require.Equal(t, stale.Code, reissued.Code)

	deleted, err := repo.DeleteRoomForMember(ctx, stale.Code, "alice")
	require.NoError(t, err)
	assert.Nil(t, deleted)

	room, err := repo.RoomForIdentity(ctx, "carol")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, "AAAAAA", room.Code)
}

func TestWaitingBefore(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	stale, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)

	pairedRoom, err := repo.CreateRoom(ctx, identity("bob"))
	require.NoError(t, err)
	_, err = repo.AdmitPartner(ctx, pairedRoom.Code, identity("carol"))
	require.NoError(t, err)

	// A cutoff in the future catches every WAITING room but never a
	// PAIRED one.
	codes, err := repo.WaitingBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{stale.Code}, codes)

	codes, err = repo.WaitingBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestDeleteIfWaitingBefore(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	created, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)

	t.Run("keeps a room younger than the cutoff", func(t *testing.T) {
		deleted, err := repo.DeleteIfWaitingBefore(ctx, created.Code, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Nil(t, deleted)

		room, err := repo.RoomForIdentity(ctx, "alice")
		require.NoError(t, err)
		assert.NotNil(t, room)
	})

	t.Run("keeps a room that paired after the scan", func(t *testing.T) {
		_, err := repo.AdmitPartner(ctx, created.Code, identity("bob"))
		require.NoError(t, err)

		deleted, err := repo.DeleteIfWaitingBefore(ctx, created.Code, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Nil(t, deleted)
	})

	t.Run("reclaims a stale waiting room", func(t *testing.T) {
		stale, err := repo.CreateRoom(ctx, identity("carol"))
		require.NoError(t, err)

		deleted, err := repo.DeleteIfWaitingBefore(ctx, stale.Code, time.Now().Add(time.Hour))
		require.NoError(t, err)
		require.NotNil(t, deleted)
		assert.Equal(t, stale.Code, deleted.Code)

		room, err := repo.RoomForIdentity(ctx, "carol")
		require.NoError(t, err)
		assert.Nil(t, room)
	})
}

// TestReturnedRoomsAreDetached ensures mutating a returned record never
// leaks into the store.
func TestReturnedRoomsAreDetached(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository()

	created, err := repo.CreateRoom(ctx, identity("alice"))
	require.NoError(t, err)

	created.Status = domain.StatusPaired
	created.Creator.Name = "mutated"

	room, err := repo.RoomForIdentity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, room.Status)
	assert.Equal(t, "alice", room.Creator.Name)
}
