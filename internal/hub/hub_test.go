package hub

import (
	"context"
	"sync"
	"testing"

	"github.com/DoyleJ11/impostor/internal/engine"
	"github.com/DoyleJ11/impostor/internal/persist"
	"github.com/DoyleJ11/impostor/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T, opts Options) *Hub {
	t.Helper()
	opts.Logger = zap.NewNop()
	if opts.Seed == nil {
		opts.Seed = func() uint64 { return 7 }
	}
	h := NewHub(context.Background(), opts)
	t.Cleanup(h.Shutdown)
	return h
}

func TestHub_Create_Get_SamePointer(t *testing.T) {
	h := newTestHub(t, Options{})
	reply := make(chan *session.Session, 1)

	state := engine.NewFreshState()
	h.Inbox() <- CreateSession{Code: "ZED123", State: &state, Reply: reply}
	s1 := <-reply

	h.Inbox() <- GetSession{Code: "ZED123", Reply: reply}
	s2 := <-reply

	require.NotNil(t, s1)
	assert.Same(t, s1, s2)
	assert.Equal(t, "ZED123", s1.Code())
}

func TestHub_GetUnknownIsNil(t *testing.T) {
	h := newTestHub(t, Options{})
	s, err := h.Get(context.Background(), "NOPE00")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestHub_EnsureRestoresFromStore(t *testing.T) {
	ctx := context.Background()
	store := persist.NewMemoryStore()
	require.NoError(t, store.Save(ctx, persist.KeyFor("ABC123"), []byte(`{"screen":"setup","playerCount":8}`)))

	h := newTestHub(t, Options{Store: store})

	s, err := h.Ensure(ctx, "ABC123")
	require.NoError(t, err)
	v, err := s.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.ScreenSetup, v.State.Screen)
	assert.Equal(t, 8, v.State.PlayerCount)

	again, err := h.Ensure(ctx, "ABC123")
	require.NoError(t, err)
	assert.Same(t, s, again)

	other, err := h.Ensure(ctx, "XYZ789")
	require.NoError(t, err)
	v, err = other.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.NewFreshState(), v.State)
}

func TestHub_SaveIsKeyedBySession(t *testing.T) {
	var (
		mu    sync.Mutex
		saved = map[string]engine.State{}
	)
	h := newTestHub(t, Options{Save: func(code string, s engine.State) {
		mu.Lock()
		saved[code] = s
		mu.Unlock()
	}})
	ctx := context.Background()

	s, err := h.Create(ctx, "ROOM01", engine.NewFreshState())
	require.NoError(t, err)
	_, err = s.DispatchWait(ctx, engine.Command{Type: engine.CmdSetPlayerCount, Count: 9})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, saved, "ROOM01")
	assert.Equal(t, 9, saved["ROOM01"].PlayerCount)
}

func TestHub_RemoveStopsSession(t *testing.T) {
	h := newTestHub(t, Options{})
	ctx := context.Background()

	s, err := h.Create(ctx, "GONE01", engine.NewFreshState())
	require.NoError(t, err)

	h.Remove("GONE01")
	<-s.Done()

	got, err := h.Get(ctx, "GONE01")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHub_ShutdownStopsEverything(t *testing.T) {
	h := NewHub(context.Background(), Options{Logger: zap.NewNop()})
	ctx := context.Background()

	s, err := h.Create(ctx, "ROOM02", engine.NewFreshState())
	require.NoError(t, err)

	h.Shutdown()
	<-s.Done()

	_, err = h.Ensure(ctx, "ROOM02")
	assert.ErrorIs(t, err, ErrClosed)
	h.Shutdown()
}
