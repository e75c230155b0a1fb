package httpapi

import (
	"net/http"
	"time"

	"github.com/DoyleJ11/impostor/internal/catalog"
	"github.com/DoyleJ11/impostor/internal/hub"
	"github.com/DoyleJ11/impostor/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouteOptions struct {
	// OriginPatterns are the extra origins allowed to open websockets.
	OriginPatterns []string
}

func SetupRoutes(h *hub.Hub, cat *catalog.Catalog, opts RouteOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/catalog", Catalog(cat))
	r.Post("/sessions", CreateSession(h))
	r.Route("/sessions/{code}", func(r chi.Router) {
		r.Get("/", GetSession(h))
		r.Delete("/", DeleteSession(h))
		r.Post("/actions", PostAction(h, cat))
		r.Post("/start", StartGame(h, cat))
		r.Get("/ws", ws.Handler(h, cat, opts.OriginPatterns))
	})
	r.Get("/ws", ws.Handler(h, cat, opts.OriginPatterns))
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
