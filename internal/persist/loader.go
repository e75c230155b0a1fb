package persist

import (
	"context"
	"errors"

	"github.com/DoyleJ11/impostor/internal/engine"
	"go.uber.org/zap"
)

// LoadState restores the snapshot stored under key. A missing,
// unreadable or malformed snapshot yields the fresh state; LoadState
// never fails.
func LoadState(ctx context.Context, store Store, key string) engine.State {
	if store == nil {
		return engine.NewFreshState()
	}
	data, err := store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			zap.L().Warn("snapshot load failed, starting fresh", zap.String("key", key), zap.Error(err))
		}
		return engine.NewFreshState()
	}
	return engine.Hydrate(data)
}
