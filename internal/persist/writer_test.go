package persist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DoyleJ11/impostor/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingStore struct {
	mu    sync.Mutex
	saves int
}

func (f *failingStore) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (f *failingStore) Save(context.Context, string, []byte) error {
	f.mu.Lock()
	f.saves++
	f.mu.Unlock()
	return errors.New("disk on fire")
}

func (f *failingStore) Close() error { return nil }

func TestWriter_LatestWins(t *testing.T) {
	store := NewMemoryStore()
	w := NewWriter(store, zap.NewNop())

	for i := engine.MinPlayers; i <= engine.MaxPlayers; i++ {
		s := engine.NewFreshState()
		s.PlayerCount = i
		s.Players = engine.BuildDefaultPlayers(i)
		w.Save(StorageKey, s)
	}
	w.Close()

	got := LoadState(context.Background(), store, StorageKey)
	assert.Equal(t, engine.MaxPlayers, got.PlayerCount)
}

func TestWriter_SeparateKeys(t *testing.T) {
	store := NewMemoryStore()
	w := NewWriter(store, zap.NewNop())

	a := engine.NewFreshState()
	a.Screen = engine.ScreenSetup
	b := engine.NewFreshState()
	b.Screen = engine.ScreenHome

	w.Save(KeyFor("AAAAAA"), a)
	w.Save(KeyFor("BBBBBB"), b)
	w.Close()

	assert.Equal(t, engine.ScreenSetup, LoadState(context.Background(), store, KeyFor("AAAAAA")).Screen)
	assert.Equal(t, engine.ScreenHome, LoadState(context.Background(), store, KeyFor("BBBBBB")).Screen)
}

func TestWriter_FailuresAreSwallowed(t *testing.T) {
	store := &failingStore{}
	w := NewWriter(store, zap.NewNop())
	w.Save(StorageKey, engine.NewFreshState())
	w.Close()

	assert.Equal(t, 1, store.saves)

	w.Save(StorageKey, engine.NewFreshState())
	w.Close()
	assert.Equal(t, 1, store.saves, "saves after close are dropped")
}

func TestLoadState(t *testing.T) {
	ctx := context.Background()
	fresh := engine.NewFreshState()

	assert.Equal(t, fresh, LoadState(ctx, nil, StorageKey))
	assert.Equal(t, fresh, LoadState(ctx, NewMemoryStore(), StorageKey))
	assert.Equal(t, fresh, LoadState(ctx, &failingStore{}, StorageKey))

	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, StorageKey, []byte("{{{")))
	assert.Equal(t, fresh, LoadState(ctx, store, StorageKey))

	require.NoError(t, store.Save(ctx, StorageKey, []byte(`{"screen":"setup","playerCount":7}`)))
	got := LoadState(ctx, store, StorageKey)
	assert.Equal(t, engine.ScreenSetup, got.Screen)
	assert.Len(t, got.Players, 7)
}
