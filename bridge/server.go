package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/tacet-cli/tacet/log"
	"github.com/tacet-cli/tacet/reconcile"
)

// Core is the reconciliation loop the server feeds. *reconcile.Loop implements it.
type Core interface {
	Submit(ctx context.Context, sig reconcile.Signal) (reconcile.Outcome, error)
	Snapshot(ctx context.Context) (reconcile.Snapshot, error)
}

// Server receives notifications on POST /video.
type Server struct {
	core   Core
	router chi.Router
	logger *logrus.Entry

	// StateLogInterval is how often the current state is logged while serving. Zero disables it.
	StateLogInterval time.Duration
}

// NewServer routes notifications into core.
func NewServer(core Core) *Server {
	s := &Server{
		core:   core,
		logger: log.Component("bridge"),
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}),
		s.logRequests,
	)

	r.Post("/video", s.handleVideo)
	r.Get("/state", s.handleState)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on l until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", l.Addr().String()).Info("notification server listening")
		errs <- srv.Serve(l)
	}()

	if s.StateLogInterval > 0 {
		go s.logState(ctx)
	}

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down notification server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, l)
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	var n Notification
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&n); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "malformed body: " + err.Error()})
		return
	}

	kind, err := n.Action.Kind()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	out, err := s.core.Submit(r.Context(), reconcile.NewSignal(reconcile.SourceBridge, kind))
	if err != nil {
		s.logger.WithError(err).Error("notification not handled")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	message := "video state unchanged"
	if out.Changed() {
		message = "video state updated"
	}
	writeJSON(w, http.StatusOK, Response{
		Message: message,
		State:   out.After,
		Changed: out.Changed(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.core.Snapshot(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) logState(ctx context.Context) {
	ticker := time.NewTicker(s.StateLogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := s.core.Snapshot(ctx)
			if err != nil {
				continue
			}
			s.logger.WithFields(logrus.Fields{
				"phase":        snap.Phase.String(),
				"video_active": snap.VideoActive,
			}).Info("current state")
		}
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
