package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/DoyleJ11/impostor/internal/catalog"
	"github.com/DoyleJ11/impostor/internal/engine"
	"github.com/DoyleJ11/impostor/internal/hub"
	"github.com/DoyleJ11/impostor/internal/session"
	"github.com/DoyleJ11/impostor/internal/types"
	"github.com/DoyleJ11/impostor/internal/ws"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

type createSessionRequest struct {
	Language string `json:"language"`
}

type categoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type catalogResponse struct {
	Language   string          `json:"language"`
	Total      int             `json:"total"`
	Categories []categoryCount `json:"categories"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.NewError(msg))
}

// decodeBody reads an optional JSON body into v. An empty body is fine.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func CreateSession(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}

		var code string
		for {
			c, err := hub.GenerateCode()
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to generate code")
				return
			}
			existing, err := h.Get(r.Context(), c)
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, "hub unavailable")
				return
			}
			if existing == nil {
				code = c
				break
			}
			zap.L().Debug("collision on code, regenerating", zap.String("code", c))
		}

		state := engine.NewFreshState()
		state.Language = catalog.ResolveLanguage(req.Language, r.Header.Get("Accept-Language"))

		s, err := h.Create(r.Context(), code, state)
		if err != nil || s == nil {
			writeError(w, http.StatusInternalServerError, "failed to create session")
			return
		}
		zap.L().Info("session created", zap.String("session", code), zap.String("language", state.Language))

		writeJSON(w, http.StatusCreated, types.NewSnapshot(code, 0, state, nil))
	}
}

// sessionFor resolves the {code} route param to a running session,
// restoring it from storage when needed.
func sessionFor(w http.ResponseWriter, r *http.Request, h *hub.Hub) (*session.Session, string, bool) {
	code := chi.URLParam(r, "code")
	if !hub.ValidCode(code) {
		writeError(w, http.StatusBadRequest, "invalid session code")
		return nil, "", false
	}
	s, err := h.Ensure(r.Context(), code)
	if err != nil || s == nil {
		writeError(w, http.StatusServiceUnavailable, "session unavailable")
		return nil, "", false
	}
	return s, code, true
}

func GetSession(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, code, ok := sessionFor(w, r, h)
		if !ok {
			return
		}
		v, err := s.State(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "session unavailable")
			return
		}
		writeJSON(w, http.StatusOK, types.NewSnapshot(code, v.Version, v.State, nil))
	}
}

func DeleteSession(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if !hub.ValidCode(code) {
			writeError(w, http.StatusBadRequest, "invalid session code")
			return
		}
		h.Remove(code)
		w.WriteHeader(http.StatusNoContent)
	}
}

func applyAndRespond(w http.ResponseWriter, r *http.Request, s *session.Session, code string, cat *catalog.Catalog, cmd engine.Command) {
	res, err := ws.Apply(r.Context(), s, cat, cmd)
	var startErr *catalog.StartError
	switch {
	case errors.As(err, &startErr):
		writeJSON(w, http.StatusUnprocessableEntity, types.NewRejected(code, res.Version, startErr.Problems))
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeJSON(w, http.StatusOK, types.NewSnapshot(code, res.Version, res.State, res.Events))
	}
}

// PostAction applies one client action. A rejected action still answers
// 200 with the unchanged snapshot and no events.
func PostAction(h *hub.Hub, cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cm types.ClientMessage
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&cm); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		cmd, err := types.ToEngineCommand(cm)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s, code, ok := sessionFor(w, r, h)
		if !ok {
			return
		}
		applyAndRespond(w, r, s, code, cat, cmd)
	}
}

func StartGame(h *hub.Hub, cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, code, ok := sessionFor(w, r, h)
		if !ok {
			return
		}
		applyAndRespond(w, r, s, code, cat, engine.Command{Type: engine.CmdStartGame})
	}
}

func Catalog(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := catalog.ResolveLanguage(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
		entries := cat.Entries(lang)

		resp := catalogResponse{Language: lang, Total: len(entries), Categories: []categoryCount{}}
		for _, name := range cat.Categories(lang) {
			resp.Categories = append(resp.Categories, categoryCount{
				Name:  name,
				Count: len(cat.Matching(lang, []string{name})),
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
