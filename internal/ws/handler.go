package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/DoyleJ11/impostor/internal/catalog"
	"github.com/DoyleJ11/impostor/internal/engine"
	"github.com/DoyleJ11/impostor/internal/hub"
	"github.com/DoyleJ11/impostor/internal/session"
	"github.com/DoyleJ11/impostor/internal/types"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	outboxSize   = 8
	writeTimeout = 3 * time.Second
	idleTimeout  = 10 * time.Minute
)

// Apply sends cmd to s. START_GAME is built from the word list inside
// the session so validation and the draw see the same state.
func Apply(ctx context.Context, s *session.Session, cat *catalog.Catalog, cmd engine.Command) (session.Result, error) {
	if cmd.Type == engine.CmdStartGame {
		return s.DispatchPrepared(ctx, cat.PrepareStart)
	}
	return s.DispatchWait(ctx, cmd)
}

// Handler streams snapshots of one session and accepts actions. The
// session code comes from the {code} route param or the code query.
func Handler(h *hub.Hub, cat *catalog.Catalog, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if code == "" {
			code = r.URL.Query().Get("code")
		}
		if !hub.ValidCode(code) {
			http.Error(w, "missing or invalid code", http.StatusBadRequest)
			return
		}

		s, err := h.Ensure(r.Context(), code)
		if err != nil || s == nil {
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			zap.L().Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := zap.L().With(zap.String("session", code), zap.String("client", clientID))

		out, err := s.Subscribe(r.Context(), clientID, outboxSize)
		if err != nil {
			conn.Close(websocket.StatusGoingAway, "session closed")
			return
		}
		defer s.Unsubscribe(clientID)
		log.Info("client connected")

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			defer writeCancel()
			for snap := range out {
				msg := types.NewSnapshot(code, snap.Version, snap.State, snap.Events)
				if err := write(writeCtx, conn, msg); err != nil {
					log.Debug("snapshot write failed", zap.Error(err))
					return
				}
			}
			// outbox closed: slow client or session shut down
			conn.Close(websocket.StatusTryAgainLater, "session stream ended")
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(writeCtx, idleTimeout)
			var cm types.ClientMessage
			err := wsjson.Read(ctx, conn, &cm)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					log.Info("client disconnected")
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return
			}

			cmd, err := types.ToEngineCommand(cm)
			if err != nil {
				_ = write(writeCtx, conn, types.NewError(err.Error()))
				continue
			}

			res, err := Apply(writeCtx, s, cat, cmd)
			var startErr *catalog.StartError
			switch {
			case errors.As(err, &startErr):
				_ = write(writeCtx, conn, types.NewRejected(code, res.Version, startErr.Problems))
			case err != nil:
				_ = write(writeCtx, conn, types.NewError(err.Error()))
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
