package room_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/bedrock/contract"
	"github.com/kode4food/bedrock/journal"
	"github.com/kode4food/bedrock/room"
	"github.com/kode4food/bedrock/terrain"
	"github.com/kode4food/bedrock/world"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newConfig(t *testing.T) room.Config {
	t.Helper()
	reg := terrain.NewRegistry()
	require.NoError(t, terrain.RegisterBase(reg))
	return room.Config{
		Terrain: reg,
		Clock:   func() time.Time { return epoch },
	}
}

func openRoom(t *testing.T, cfg room.Config) *room.Room {
	t.Helper()
	r, err := room.Open("s1", cfg)
	require.NoError(t, err)
	return r
}

func moveMessage(dir int) room.Message {
	data, _ := json.Marshal(contract.MoveData{Direction: dir})
	return room.Message{Type: room.MessageMove, Payload: data}
}

func TestOpenGeneratesWorld(t *testing.T) {
	r := openRoom(t, newConfig(t))
	assert.Equal(t, "s1", r.ID())

	st := r.State()
	assert.Equal(t, world.Width, st.Width)
	assert.Equal(t, world.Height, st.Height)
	require.Len(t, st.Rows, world.Height)
	assert.Equal(t, string(terrain.Gold), st.Rows[6][2])
	assert.Equal(t, string(terrain.Grass), st.Rows[4][0])
	assert.Len(t, st.Palette, 5)
	assert.Empty(t, st.Players)
	assert.Len(t, r.Log(), world.Width*world.Height+1)
}

func TestOpenValidation(t *testing.T) {
	_, err := room.Open("s1", room.Config{})
	assert.ErrorIs(t, err, room.ErrTerrainRequired)

	cfg := newConfig(t)
	cfg.Plan = func() (world.Plan, error) {
		return nil, errors.New("boom")
	}
	_, err = room.Open("s1", cfg)
	assert.ErrorIs(t, err, room.ErrGenerateFailed)
}

func TestJoinMoveLeave(t *testing.T) {
	r := openRoom(t, newConfig(t))

	evs, err := r.Join("alice")
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, contract.EventEntitySpawned, evs[0].Type)

	_, err = r.Join("alice")
	assert.ErrorIs(t, err, room.ErrAlreadyJoined)

	_, err = r.Join("bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, r.Clients())

	st := r.State()
	require.Contains(t, st.Players, "alice")
	assert.Equal(t, "Player 1", st.Players["alice"].Name)
	assert.Equal(t, 0, st.Players["alice"].X)
	assert.Equal(t, world.PlayerSurfaceRow, st.Players["alice"].Y)
	assert.Equal(t, 1, st.Players["bob"].X)

	evs, err = r.Handle("alice", moveMessage(1))
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, 1, r.State().Players["alice"].X)

	evs, err = r.Handle("alice", moveMessage(-1))
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, "left", r.State().Players["alice"].Facing)

	_, err = r.Handle("alice", moveMessage(2))
	assert.ErrorIs(t, err, room.ErrInvalidDirection)

	evs, err = r.Leave("alice")
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, contract.EventEntityDespawned, evs[0].Type)
	assert.NotContains(t, r.State().Players, "alice")

	_, err = r.Leave("alice")
	assert.ErrorIs(t, err, room.ErrNotJoined)
	_, err = r.Handle("alice", moveMessage(1))
	assert.ErrorIs(t, err, room.ErrNotJoined)
}

func TestJumpAndTick(t *testing.T) {
	r := openRoom(t, newConfig(t))
	_, err := r.Join("alice")
	require.NoError(t, err)

	evs, err := r.Handle("alice", room.Message{Type: room.MessageJump})
	require.NoError(t, err)
	require.Len(t, evs, 2)
	pv := r.State().Players["alice"]
	assert.True(t, pv.IsJumping)
	assert.Equal(t, world.PlayerSurfaceRow-1, pv.Y)

	assert.Empty(t, r.Tick(epoch.Add(100*time.Millisecond)))
	evs = r.Tick(epoch.Add(time.Second))
	require.Len(t, evs, 1)
	pv = r.State().Players["alice"]
	assert.False(t, pv.IsJumping)
	assert.Equal(t, world.PlayerSurfaceRow, pv.Y)
}

func TestGoldMessages(t *testing.T) {
	r := openRoom(t, newConfig(t))
	_, err := r.Join("alice")
	require.NoError(t, err)

	evs, err := r.Handle("alice", room.Message{Type: room.MessageSmeltGold})
	require.NoError(t, err)
	assert.Empty(t, evs)

	st := r.State()
	require.Len(t, st.Errors, 1)
	assert.Equal(t, "gold", st.Errors[0].Module)
	assert.Equal(t, string(contract.CommandSmeltGold), st.Errors[0].CommandType)

	evs, err = r.Handle("alice", room.Message{Type: room.MessageMineGold})
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, 1, r.State().Inventory["alice"]["gold"])

	evs, err = r.Handle("alice", room.Message{Type: room.MessageSmeltGold})
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, 0, r.State().Inventory["alice"]["gold"])
}

func TestRegenerateAndUnknown(t *testing.T) {
	r := openRoom(t, newConfig(t))

	evs, err := r.Handle("anyone", room.Message{Type: room.MessageRegenerate})
	require.NoError(t, err)
	require.Len(t, evs, world.Width*world.Height+1)
	assert.Equal(t, int64(2), evs[len(evs)-1].Meta.Sequence)

	_, err = r.Handle("anyone", room.Message{Type: "player:dance"})
	assert.ErrorIs(t, err, room.ErrUnknownMessage)
}

func TestStateReplay(t *testing.T) {
	r := openRoom(t, newConfig(t))
	_, err := r.Join("alice")
	require.NoError(t, err)
	_, err = r.Handle("alice", moveMessage(1))
	require.NoError(t, err)
	_, err = r.Handle("alice", room.Message{Type: room.MessageMineGold})
	require.NoError(t, err)

	live := r.State()
	replayed := room.ReplayState(r.Log())
	assert.Equal(t, live.Players, replayed.Players)
	assert.Equal(t, live.Rows, replayed.Rows)
	assert.Equal(t, live.Inventory, replayed.Inventory)
}

func TestStateCopyIsolated(t *testing.T) {
	r := openRoom(t, newConfig(t))
	st := r.State()
	st.Rows[0][0] = "mutated"
	assert.Equal(t, string(terrain.Air), r.State().Rows[0][0])
}

func TestCloseHibernates(t *testing.T) {
	server := miniredis.RunT(t)
	ctx := context.Background()
	store, err := journal.NewStore(ctx, journal.StoreConfig{
		Addr: server.Addr(),
	})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	hib := journal.NewMemoryHibernator()
	cfg := newConfig(t)
	cfg.Store = store
	cfg.Hibernator = hib

	r := openRoom(t, cfg)
	_, err = r.Join("alice")
	require.NoError(t, err)

	log, err := r.Close(ctx)
	require.NoError(t, err)
	assert.Len(t, log, world.Width*world.Height+2)

	rec, err := hib.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, epoch, rec.ClosedAt)
	require.Len(t, rec.Events, len(log))
	assert.Equal(t, contract.EventEntitySpawned, rec.Events[len(log)-1].Type)

	aggs, err := store.Aggregates(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, aggs)

	_, err = r.Close(ctx)
	assert.ErrorIs(t, err, room.ErrRoomClosed)
	_, err = r.Join("bob")
	assert.ErrorIs(t, err, room.ErrRoomClosed)
	_, err = r.Handle("alice", room.Message{Type: room.MessageJump})
	assert.ErrorIs(t, err, room.ErrRoomClosed)
	assert.Empty(t, r.Tick(epoch))
}

func TestRecorderJournalsLiveRoom(t *testing.T) {
	server := miniredis.RunT(t)
	ctx := context.Background()
	store, err := journal.NewStore(ctx, journal.StoreConfig{
		Addr: server.Addr(),
	})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	cfg := newConfig(t)
	cfg.Store = store
	r := openRoom(t, cfg)
	_, err = r.Join("alice")
	require.NoError(t, err)

	_, err = r.Close(ctx)
	require.NoError(t, err)

	evs, err := store.Events(ctx, journal.StreamID{
		Session: "s1", Aggregate: "entity:alice",
	}, 1)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, contract.EventEntitySpawned, evs[0].Type)

	aggs, err := store.Aggregates(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, aggs, world.Width*world.Height+2)
}

func TestModuleFaultDoesNotLog(t *testing.T) {
	r := openRoom(t, newConfig(t))
	before := len(r.Log())
	_, err := r.Join("alice")
	require.NoError(t, err)
	_, err = r.Handle("alice", room.Message{Type: room.MessageSmeltGold})
	require.NoError(t, err)
	assert.Len(t, r.Log(), before+1)

	for _, ev := range r.Log() {
		assert.NotEqual(t, contract.EventModuleErrored, ev.Type)
	}
}
