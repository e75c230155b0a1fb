package session

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/DoyleJ11/impostor/internal/engine"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("session: closed")

type Msg interface{ isSessionMsg() }

// FromClient applies Cmd. When Prepare is set it is called with the
// current state and the session's random source, and its command is
// applied instead; a Prepare error rejects the message.
type FromClient struct {
	Cmd     engine.Command
	Prepare func(engine.State, *rand.Rand) (engine.Command, error)
	Reply   chan Result // optional
}

func (FromClient) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
	Ack      chan struct{} // optional, closed once the client is registered
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type Snapshot struct {
	Version int
	State   engine.State
	Events  []engine.Event
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

type Result struct {
	Version int
	Events  []engine.Event
	State   engine.State
	Err     error
}

// Applied reports whether the command changed the state.
func (r Result) Applied() bool { return len(r.Events) > 0 }

type Options struct {
	Code string
	Seed uint64
	// Save receives every new state. It is called from the session
	// goroutine and must not block.
	Save   func(engine.State)
	Logger *zap.Logger
}

// Session owns one game. All reads and writes go through its inbox and
// are serialized by a single goroutine.
type Session struct {
	code    string
	inbox   chan Msg
	machine *engine.Machine
	state   engine.State
	version int
	clients map[string]chan Snapshot
	save    func(engine.State)
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(parent context.Context, initial engine.State, opts Options) *Session {
	ctx, cancel := context.WithCancel(parent)

	log := opts.Logger
	if log == nil {
		log = zap.L()
	}

	s := &Session{
		code:    opts.Code,
		inbox:   make(chan Msg, 64),
		machine: engine.NewMachine(opts.Seed),
		state:   initial,
		clients: make(map[string]chan Snapshot),
		save:    opts.Save,
		log:     log.With(zap.String("session", opts.Code)),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go s.loop()
	return s
}

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.clients[msg.ClientID] = msg.Outbox
				s.send(msg.ClientID, msg.Outbox, Snapshot{Version: s.version, State: s.state})
				if msg.Ack != nil {
					close(msg.Ack)
				}

			case Leave:
				delete(s.clients, msg.ClientID)

			case FromClient:
				res := s.apply(msg)
				if msg.Reply != nil {
					msg.Reply <- res
				}

			case GetState:
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					State:      s.state,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) apply(msg FromClient) Result {
	cmd := msg.Cmd
	if msg.Prepare != nil {
		prepared, err := msg.Prepare(s.state, s.machine.Rand())
		if err != nil {
			return Result{Version: s.version, State: s.state, Err: err}
		}
		cmd = prepared
	}

	events, next := s.machine.Apply(s.state, cmd)
	if len(events) == 0 {
		s.log.Debug("command ignored", zap.String("command", string(cmd.Type)))
		return Result{Version: s.version, State: s.state}
	}

	s.state = next
	s.version++
	s.log.Debug("command applied",
		zap.String("command", string(cmd.Type)),
		zap.Int("version", s.version),
		zap.Int("events", len(events)),
	)
	if s.save != nil {
		s.save(s.state)
	}
	s.broadcast(Snapshot{Version: s.version, State: s.state, Events: events})
	return Result{Version: s.version, Events: events, State: s.state}
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch) // no more snapshots
		delete(s.clients, id)
	}
	// Joins still queued never get a snapshot; close their outboxes too.
	for {
		select {
		case m := <-s.inbox:
			if j, ok := m.(Join); ok {
				close(j.Outbox)
			}
		default:
			s.cancel()
			return
		}
	}
}

func (s *Session) broadcast(snap Snapshot) {
	for id, ch := range s.clients {
		s.send(id, ch, snap)
	}
}

// send drops a client whose outbox is full.
func (s *Session) send(id string, ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
	default:
		s.log.Info("dropping slow client", zap.String("client", id))
		close(ch)
		delete(s.clients, id)
	}
}

func (s *Session) Code() string { return s.code }

// Inbox exposes the raw message channel.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed once the session goroutine has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) post(ctx context.Context, m Msg) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.inbox <- m:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) await(ctx context.Context, reply chan Result) (Result, error) {
	select {
	case res := <-reply:
		return res, res.Err
	case <-s.done:
		return Result{}, ErrClosed
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Dispatch queues cmd without waiting for it to be applied.
func (s *Session) Dispatch(ctx context.Context, cmd engine.Command) error {
	return s.post(ctx, FromClient{Cmd: cmd})
}

// DispatchWait applies cmd and returns the outcome. A rejected command
// is not an error; its Result simply carries no events.
func (s *Session) DispatchWait(ctx context.Context, cmd engine.Command) (Result, error) {
	reply := make(chan Result, 1)
	if err := s.post(ctx, FromClient{Cmd: cmd, Reply: reply}); err != nil {
		return Result{}, err
	}
	return s.await(ctx, reply)
}

// DispatchPrepared builds the command from the state it will be applied
// to, so the check and the write cannot interleave with other clients.
func (s *Session) DispatchPrepared(ctx context.Context, prepare func(engine.State, *rand.Rand) (engine.Command, error)) (Result, error) {
	reply := make(chan Result, 1)
	if err := s.post(ctx, FromClient{Prepare: prepare, Reply: reply}); err != nil {
		return Result{}, err
	}
	return s.await(ctx, reply)
}

func (s *Session) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := s.post(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-s.done:
		return View{}, ErrClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// Subscribe registers clientID and returns its snapshot stream once the
// session has accepted it. The current snapshot is delivered first. The
// channel is closed when the client is dropped or the session shuts down.
func (s *Session) Subscribe(ctx context.Context, clientID string, buffer int) (<-chan Snapshot, error) {
	out := make(chan Snapshot, max(buffer, 1))
	ack := make(chan struct{})
	if err := s.post(ctx, Join{ClientID: clientID, Outbox: out, Ack: ack}); err != nil {
		return nil, err
	}
	select {
	case <-ack:
		return out, nil
	case <-s.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Session) Unsubscribe(clientID string) {
	_ = s.post(context.Background(), Leave{ClientID: clientID})
}

func (s *Session) Shutdown() {
	_ = s.post(context.Background(), Shutdown{})
	<-s.done
}
