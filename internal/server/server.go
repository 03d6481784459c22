// Package server exposes the layout pipeline over HTTP. The API is a thin
// JSON wrapper around pipeline.Runner: clients POST a family snapshot plus
// layout options and receive a positioned diagram back.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/kintreehq/kintree/pkg/cache"
	"github.com/kintreehq/kintree/pkg/core/tree"
	"github.com/kintreehq/kintree/pkg/errors"
	"github.com/kintreehq/kintree/pkg/family"
	"github.com/kintreehq/kintree/pkg/layout"
	"github.com/kintreehq/kintree/pkg/pipeline"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	shutdownTimeout = 10 * time.Second

	// maxBodyBytes caps the request body. Family snapshots are small
	// relative to this; the cap guards against accidental large uploads.
	maxBodyBytes = 8 << 20
)

// Server wraps an http.Server with the kintree API routes mounted.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	http   *http.Server
}

// New constructs a Server listening on addr. The runner must be non-nil;
// a nil logger disables request logging.
func New(addr string, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/layout", s.handleLayout)
	r.Get("/v1/snapshot/{hash}", s.handleSnapshot)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// Handler returns the mounted router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	s.logger.Info("listening", "addr", s.http.Addr)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(errors.ErrCodeInternal, err, "server failed")
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "shutdown failed")
		}
		return nil
	}
}

// ====================================================================
// Handlers
// ====================================================================

// layoutRequest is the body of POST /v1/layout.
type layoutRequest struct {
	Family  family.Family   `json:"family"`
	Options layoutOptions   `json:"options"`
	Spacing *spacingOptions `json:"spacing,omitempty"`
	Refresh bool            `json:"refresh,omitempty"`
}

type layoutOptions struct {
	FocalID         string   `json:"focal_id"`
	Mode            string   `json:"mode,omitempty"`
	ExpandedIDs     []string `json:"expanded_ids,omitempty"`
	GenerationDepth int      `json:"generation_depth,omitempty"`
}

type spacingOptions struct {
	NodeWidth         float64 `json:"node_width,omitempty"`
	SpouseSpacing     float64 `json:"spouse_spacing,omitempty"`
	HorizontalSpacing float64 `json:"horizontal_spacing,omitempty"`
	VerticalSpacing   float64 `json:"vertical_spacing,omitempty"`
}

// layoutResponse is the body of a successful layout call.
type layoutResponse struct {
	Diagram      layout.Diagram `json:"diagram"`
	SnapshotHash string         `json:"snapshot_hash"`
	Cached       bool           `json:"cached"`
	LayoutTimeMS float64        `json:"layout_time_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req layoutRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidRequest, err, "invalid request body"))
		return
	}

	snap, err := family.ToSnapshot(req.Family)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := pipeline.Options{
		FocalID:         req.Options.FocalID,
		Mode:            req.Options.Mode,
		ExpandedIDs:     req.Options.ExpandedIDs,
		GenerationDepth: req.Options.GenerationDepth,
		Refresh:         req.Refresh,
		Logger:          s.logger,
	}
	if sp := req.Spacing; sp != nil {
		opts.NodeWidth = sp.NodeWidth
		opts.SpouseSpacing = sp.SpouseSpacing
		opts.HorizontalSpacing = sp.HorizontalSpacing
		opts.VerticalSpacing = sp.VerticalSpacing
	}

	result, err := s.runner.Execute(r.Context(), snap, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.storeSnapshot(r.Context(), result.SnapshotHash, snap)

	writeJSON(w, http.StatusOK, layoutResponse{
		Diagram:      result.Diagram,
		SnapshotHash: result.SnapshotHash,
		Cached:       result.CacheInfo.LayoutHit,
		LayoutTimeMS: float64(result.Stats.LayoutTime.Microseconds()) / 1000,
	})
}

// storeSnapshot keeps the family document behind a layout retrievable by
// the hash echoed in layoutResponse. Best effort; a failed write only
// means GET /v1/snapshot misses.
func (s *Server) storeSnapshot(ctx context.Context, hash string, snap *tree.Snapshot) {
	data, err := family.MarshalSnapshot(snap)
	if err != nil {
		return
	}
	key := s.runner.Keyer.SnapshotKey(hash)
	_ = s.runner.Cache.Set(ctx, key, data, cache.TTLSnapshot)
}

// handleSnapshot serves back the family document a previous layout call
// was computed from, looked up by its content hash.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	key := s.runner.Keyer.SnapshotKey(hash)
	data, hit, err := s.runner.Cache.Get(r.Context(), key)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "snapshot lookup failed"))
		return
	}
	if !hit {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no snapshot with hash %s", hash))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ====================================================================
// Error mapping
// ====================================================================

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodePersonNotFound, errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidRequest, errors.ErrCodeInvalidSnapshot, errors.ErrCodeInvalidSpacing, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ====================================================================
// Middleware
// ====================================================================

type ctxKey int

const requestIDKey ctxKey = 0

// requestID assigns a uuid to each request, honouring an inbound
// X-Request-ID header if the client supplied one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the request id stored by the middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", RequestID(r.Context()),
		)
	})
}
