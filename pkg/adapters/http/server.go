package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/irep"
	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/observability"
	"github.com/aretw0/irep/pkg/value"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Binder is the part of irep.Binder served over HTTP.
type Binder interface {
	Tables() []string
	Read(path string) *domain.Report
	Snapshot(name string) (value.Value, *domain.Report)
	Publish(ctx context.Context, name string) (*domain.Report, error)
	Exists(path string) bool
	RuntimeLength(path string) int
}

// Server serves a Binder. The binder is not safe for concurrent use, so every
// call goes through mu.
type Server struct {
	Binder  Binder
	Streams *StreamManager

	mu       sync.Mutex
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer sets the registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates the HTTP handler for b.
func NewHandler(b Binder, opts ...Option) http.Handler {
	s := &Server{
		Binder:   b,
		Streams:  NewStreamManager(),
		logger:   slog.Default(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/tables", s.ListTables)
	r.Get("/tables/{name}", s.GetTable)
	r.Post("/tables/{name}/read", s.ReadTable)
	r.Post("/tables/{name}/publish", s.PublishTable)
	r.Get("/exists", s.GetExists)
	r.Get("/length", s.GetLength)
	r.Get("/events", s.SubscribeEvents)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FieldError is the wire form of a domain.FieldError.
type FieldError struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
	Value  string `json:"value,omitempty"`
}

// Report is the wire form of a domain.Report.
type Report struct {
	Op       string       `json:"op"`
	Path     string       `json:"path"`
	Assigned int          `json:"assigned"`
	Errors   []FieldError `json:"errors"`
}

// TableResponse carries a rebuilt table.
type TableResponse struct {
	Table  string `json:"table"`
	Data   any    `json:"data"`
	Report Report `json:"report"`
}

func mapReport(r *domain.Report) Report {
	out := Report{Op: r.Op, Path: r.Path, Assigned: r.Assigned, Errors: make([]FieldError, len(r.Errors))}
	for i, fe := range r.Errors {
		out.Errors[i] = FieldError{
			Path:   fe.Path,
			Kind:   observability.KindLabel(fe.Kind),
			Reason: fe.Reason,
			Value:  fe.Value,
		}
	}
	return out
}

// reportStatus is 200 for a clean report and 422 when fields failed.
func reportStatus(r *domain.Report) int {
	if r.OK() {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "irep-http",
		"version": strings.TrimSpace(irep.Version),
	})
}

// ListTables handles GET /tables.
func (s *Server) ListTables(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tables := s.Binder.Tables()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string][]string{"tables": tables})
}

// GetTable handles GET /tables/{name}: the table rebuilt from memory.
func (s *Server) GetTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	v, report := s.Binder.Snapshot(name)
	s.mu.Unlock()

	if value.IsNil(v) {
		s.writeJSON(w, http.StatusNotFound, mapReport(report))
		return
	}
	s.writeJSON(w, reportStatus(report), TableResponse{
		Table:  name,
		Data:   value.ToGo(v),
		Report: mapReport(report),
	})
}

// ReadTable handles POST /tables/{name}/read: deck to memory.
func (s *Server) ReadTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	report := s.Binder.Read(name)
	s.mu.Unlock()

	s.logger.Debug("read", "table", name, "assigned", report.Assigned, "errors", report.Count())
	out := mapReport(report)
	s.broadcast(name, out)
	s.writeJSON(w, reportStatus(report), out)
}

// PublishTable handles POST /tables/{name}/publish: memory to deck and store.
func (s *Server) PublishTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	report, err := s.Binder.Publish(r.Context(), name)
	s.mu.Unlock()

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, irep.ErrNoStore) {
			status = http.StatusNotImplemented
		}
		http.Error(w, fmt.Sprintf("Publish error: %v", err), status)
		s.logger.Error("publish failed", "table", name, "error", err)
		return
	}
	out := mapReport(report)
	s.broadcast(name, out)
	s.writeJSON(w, reportStatus(report), out)
}

// GetExists handles GET /exists?path=.
func (s *Server) GetExists(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "Missing path", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	ok := s.Binder.Exists(path)
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]any{"path": path, "exists": ok})
}

// GetLength handles GET /length?path=.
func (s *Server) GetLength(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "Missing path", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	n := s.Binder.RuntimeLength(path)
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]any{"path": path, "length": n})
}

func (s *Server) broadcast(table string, report Report) {
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	s.Streams.Broadcast(table, string(data))
}

// SubscribeEvents handles GET /events (SSE). Every read or publish report is
// streamed; ?table= restricts the stream to one table.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	table := r.URL.Query().Get("table")
	ch, cancel := s.Streams.Subscribe(table)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
