// Package server serves the radar page and its configuration over HTTP.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cgrotz/cgrotz.github.io/internal/cache"
	"github.com/cgrotz/cgrotz.github.io/internal/config"
	"github.com/cgrotz/cgrotz.github.io/internal/content"
	"github.com/cgrotz/cgrotz.github.io/internal/page"
	"github.com/cgrotz/cgrotz.github.io/internal/radar"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Store supplies the current records. *cache.Cache satisfies it.
type Store interface {
	GetRecords(opts cache.QueryOpts) ([]content.Record, error)
}

type Server struct {
	cfg    *config.Config
	store  Store
	logger *zap.Logger
	pages  *lru.Cache[string, []byte]
	mux    *http.ServeMux
}

func New(cfg *config.Config, store Store, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pages, err := lru.New[string, []byte](cfg.GetCacheSize())
	if err != nil {
		return nil, fmt.Errorf("creating page cache: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: logger,
		pages:  pages,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleRadar)
	s.mux.HandleFunc("GET /radar", s.handleRadar)
	s.mux.HandleFunc("GET /radar.json", s.handleRadarJSON)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return requestLogger(s.logger, s.mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) handleRadar(w http.ResponseWriter, r *http.Request) {
	body, err := s.render("html", func(v radar.Visualization) ([]byte, error) {
		var buf bytes.Buffer
		if err := page.Render(&buf, page.New(s.cfg.Site, v)); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

func (s *Server) handleRadarJSON(w http.ResponseWriter, r *http.Request) {
	body, err := s.render("json", func(v radar.Visualization) ([]byte, error) {
		return json.Marshal(v)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// render reloads the records on every call. Output bytes are memoized per
// record-set fingerprint, so an unchanged corpus skips classification and templating.
func (s *Server) render(kind string, encode func(radar.Visualization) ([]byte, error)) ([]byte, error) {
	contentType := s.cfg.GetContentType()
	records, err := s.store.GetRecords(cache.QueryOpts{Type: contentType})
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	records = content.Select(records, contentType)

	key := kind + ":" + Fingerprint(records)
	if body, ok := s.pages.Get(key); ok {
		return body, nil
	}

	for _, rec := range records {
		if d := radar.Inspect(rec); d.Defaulted() || d.MovedUnknown {
			s.logger.Debug("tag fell back to default",
				zap.String("slug", rec.Slug),
				zap.String("quadrant", rec.Quadrant),
				zap.String("ring", rec.Ring),
				zap.String("moved", rec.Moved))
		}
	}

	body, err := encode(radar.Build(s.cfg.Radar, records))
	if err != nil {
		return nil, err
	}
	s.pages.Add(key, body)
	return body, nil
}

// Fingerprint hashes the fields that influence the radar, in order.
func Fingerprint(records []content.Record) string {
	h := sha256.New()
	for _, r := range records {
		for _, f := range []string{r.Slug, r.Title, r.Quadrant, r.Ring, r.Moved} {
			h.Write([]byte(f))
			h.Write([]byte{0})
		}
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	s.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID(r.Context())),
		zap.Int("status", status),
		zap.Error(err))
	writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
