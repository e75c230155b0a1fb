package persist

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/DoyleJ11/impostor/internal/engine"
	"go.uber.org/zap"
)

const defaultSaveTimeout = 5 * time.Second

// Writer persists snapshots in the background. Save never blocks the
// caller; when several snapshots for one key queue up only the newest is
// written. Failures are logged and dropped.
type Writer struct {
	store   Store
	log     *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]engine.State
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func NewWriter(store Store, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.L()
	}
	w := &Writer{
		store:   store,
		log:     log.Named("persist"),
		timeout: defaultSaveTimeout,
		pending: make(map[string]engine.State),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Writer) Save(key string, s engine.State) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.log.Debug("writer closed, snapshot dropped", zap.String("key", key))
		return
	}
	w.pending[key] = s
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Close writes whatever is still queued and stops the background loop.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.flush()
		case <-w.stop:
			w.flush()
			return
		}
	}
}

func (w *Writer) flush() {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]engine.State, len(batch))
	w.mu.Unlock()

	for key, s := range batch {
		data, err := json.Marshal(s)
		if err != nil {
			w.log.Error("encode snapshot", zap.String("key", key), zap.Error(err))
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err = w.store.Save(ctx, key, data)
		cancel()
		if err != nil {
			w.log.Warn("save snapshot", zap.String("key", key), zap.Error(err))
		}
	}
}
