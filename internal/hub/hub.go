package hub

import (
	"context"
	"errors"
	"time"

	"github.com/DoyleJ11/impostor/internal/engine"
	"github.com/DoyleJ11/impostor/internal/persist"
	"github.com/DoyleJ11/impostor/internal/session"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("hub: closed")

const loadTimeout = 5 * time.Second

type HubMsg interface{ isHubMsg() }

// CreateSession registers a session under Code. State seeds it; when nil
// the last saved snapshot for Code is restored.
type CreateSession struct {
	Code  string
	State *engine.State
	Reply chan *session.Session
}

type GetSession struct {
	Code  string
	Reply chan *session.Session
}

// EnsureSession returns the session for Code, restoring it from storage
// when it is not running yet.
type EnsureSession struct {
	Code  string
	Reply chan *session.Session
}

type RemoveSession struct {
	Code string
}

type ShutdownHub struct {
	Done chan struct{} // optional
}

func (CreateSession) isHubMsg() {}
func (GetSession) isHubMsg()    {}
func (EnsureSession) isHubMsg() {}
func (RemoveSession) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

type Options struct {
	// Store restores sessions; nil means every session starts fresh.
	Store persist.Store
	// Save receives every state change of every session.
	Save func(code string, s engine.State)
	// Seed returns the random seed of a new session.
	Seed   func() uint64
	Logger *zap.Logger
}

type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*session.Session
	opts     Options
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewHub(parent context.Context, opts Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}
	if opts.Seed == nil {
		opts.Seed = func() uint64 { return uint64(time.Now().UnixNano()) }
	}
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Session),
		opts:     opts,
		log:      opts.Logger.Named("hub"),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateSession:
				if s := h.running(msg.Code); s != nil {
					msg.Reply <- s
					break
				}
				msg.Reply <- h.start(msg.Code, msg.State)

			case GetSession:
				msg.Reply <- h.running(msg.Code) // may be nil

			case EnsureSession:
				if s := h.running(msg.Code); s != nil {
					msg.Reply <- s
					break
				}
				msg.Reply <- h.start(msg.Code, nil)

			case RemoveSession:
				if s := h.sessions[msg.Code]; s != nil {
					go s.Shutdown()
					delete(h.sessions, msg.Code)
				}

			case ShutdownHub:
				h.shutdown()
				if msg.Done != nil {
					close(msg.Done)
				}
				return
			}
		}
	}
}

// running returns the live session for code, forgetting it if it has
// stopped on its own.
func (h *Hub) running(code string) *session.Session {
	s := h.sessions[code]
	if s == nil {
		return nil
	}
	select {
	case <-s.Done():
		delete(h.sessions, code)
		return nil
	default:
		return s
	}
}

func (h *Hub) start(code string, initial *engine.State) *session.Session {
	var state engine.State
	if initial != nil {
		state = *initial
	} else {
		ctx, cancel := context.WithTimeout(h.ctx, loadTimeout)
		state = persist.LoadState(ctx, h.opts.Store, persist.KeyFor(code))
		cancel()
	}

	var save func(engine.State)
	if h.opts.Save != nil {
		save = func(s engine.State) { h.opts.Save(code, s) }
	}

	s := session.New(h.ctx, state, session.Options{
		Code:   code,
		Seed:   h.opts.Seed(),
		Save:   save,
		Logger: h.opts.Logger,
	})
	h.sessions[code] = s
	h.log.Info("session started", zap.String("session", code), zap.String("screen", string(state.Screen)))
	return s
}

func (h *Hub) shutdown() {
	for code, s := range h.sessions {
		s.Shutdown()
		delete(h.sessions, code)
	}
	h.cancel()
}

func (h *Hub) ask(ctx context.Context, m HubMsg, reply chan *session.Session) (*session.Session, error) {
	select {
	case h.inbox <- m:
	case <-h.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-h.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Create starts a session for code with the given state, or returns the
// one already running under that code.
func (h *Hub) Create(ctx context.Context, code string, state engine.State) (*session.Session, error) {
	reply := make(chan *session.Session, 1)
	return h.ask(ctx, CreateSession{Code: code, State: &state, Reply: reply}, reply)
}

// Get returns the running session for code, or nil.
func (h *Hub) Get(ctx context.Context, code string) (*session.Session, error) {
	reply := make(chan *session.Session, 1)
	return h.ask(ctx, GetSession{Code: code, Reply: reply}, reply)
}

func (h *Hub) Ensure(ctx context.Context, code string) (*session.Session, error) {
	reply := make(chan *session.Session, 1)
	return h.ask(ctx, EnsureSession{Code: code, Reply: reply}, reply)
}

func (h *Hub) Remove(code string) {
	select {
	case h.inbox <- RemoveSession{Code: code}:
	case <-h.done:
	}
}

// Shutdown stops every session and waits for the hub to exit.
func (h *Hub) Shutdown() {
	select {
	case h.inbox <- ShutdownHub{}:
	case <-h.done:
	}
	<-h.done
}
