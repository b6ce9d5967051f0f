package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/healthcheck/internal/config"
	"github.com/hamed0406/healthcheck/internal/domain"
	apimw "github.com/hamed0406/healthcheck/internal/httpapi/middleware"
	"github.com/hamed0406/healthcheck/internal/scheduler"
)

// Supervisor is the part of scheduler.Supervisor the API needs.
type Supervisor interface {
	Snapshot() []domain.ServiceStatus
	Config() *config.File
	Replace(ctx context.Context, f *config.File) error
}

type Server struct {
	Logger      *zap.Logger
	Supervisor  Supervisor
	Stream      http.HandlerFunc
	FrontendDir string
}

func NewServer(l *zap.Logger, sup Supervisor, stream http.HandlerFunc, frontendDir string) *Server {
	return &Server{Logger: l, Supervisor: sup, Stream: stream, FrontendDir: frontendDir}
}

// Router wires the API. Keys gate reads (public or admin) and config writes
// (admin); the rate limits apply per client IP.
func (s *Server) Router(keys apimw.Keys, origins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	if keys.AdminToken == nil {
		keys.AdminToken = s.bearerToken
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(origins))

	health := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
	r.Get("/healthz", health)
	r.Get("/api/health", health)

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(pubRPM, pubBurst))
		r.Use(apimw.RequireAny(keys))
		r.Get("/api/services", s.handleServices)
	})
	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(admRPM, admBurst))
		r.Use(apimw.RequireAdmin(keys))
		r.Get("/api/config", s.handleGetConfig)
		r.Put("/api/config", s.handlePutConfig)
	})

	if s.Stream != nil {
		r.Get("/ws", s.Stream)
	}
	if s.FrontendDir != "" {
		if st, err := os.Stat(s.FrontendDir); err == nil && st.IsDir() {
			fileServer(r, s.FrontendDir)
		}
	}
	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key"},
		MaxAge:         300,
	})
}

func (s *Server) bearerToken() string {
	if f := s.Supervisor.Config(); f != nil {
		return f.APIBearerToken
	}
	return ""
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	rows := s.Supervisor.Snapshot()
	if rows == nil {
		rows = []domain.ServiceStatus{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	f := s.Supervisor.Config()
	if f == nil {
		writeError(w, http.StatusServiceUnavailable, "not started")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	var f config.File
	if err := dec.Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload: "+err.Error())
		return
	}

	err := s.Supervisor.Replace(r.Context(), &f)
	switch {
	case err == nil:
	case errors.Is(err, scheduler.ErrInvalidConfig):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, scheduler.ErrStopped), errors.Is(err, scheduler.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	default:
		s.Logger.Error("config_replace_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not apply service file")
		return
	}

	s.Logger.Info("config_replaced",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("services", len(f.Services)),
	)
	writeJSON(w, http.StatusOK, s.Supervisor.Snapshot())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("http_request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// fileServer serves the UI build, falling back to index.html for client-side
// routes.
func fileServer(r chi.Router, dir string) {
	fs := http.FileServer(http.Dir(dir))
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		p := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if _, err := os.Stat(p); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
