package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/irep"
	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/observability"
	"github.com/aretw0/irep/pkg/value"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const tableURIPrefix = "irep://tables/"

// Binder is the part of irep.Binder exposed to MCP clients.
type Binder interface {
	Tables() []string
	Read(path string) *domain.Report
	Snapshot(name string) (value.Value, *domain.Report)
	Exists(path string) bool
	RuntimeLength(path string) int
}

// FieldError mirrors domain.FieldError with a label for its kind.
type FieldError struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
	Value  string `json:"value,omitempty"`
}

// ReportResponse is the outcome of a read or snapshot.
type ReportResponse struct {
	Op       string       `json:"op" jsonschema_description:"Operation: read or write"`
	Path     string       `json:"path" jsonschema_description:"Path the operation started from"`
	Assigned int          `json:"assigned" jsonschema_description:"Number of fields stored or emitted"`
	Errors   []FieldError `json:"errors" jsonschema_description:"Every field that failed, with its full path"`
}

// SnapshotResponse is a table rebuilt from memory.
type SnapshotResponse struct {
	Table  string         `json:"table" jsonschema_description:"Well-known table name"`
	Data   any            `json:"data" jsonschema_description:"The table as JSON"`
	Report ReportResponse `json:"report"`
}

// PathArgs names a deck path such as table1.table2[3].i.
type PathArgs struct {
	Path string `json:"path"`
}

// TableArgs names a well-known table.
type TableArgs struct {
	Table string `json:"table"`
}

// Server exposes a Binder as an MCP server.
type Server struct {
	binder    Binder
	mu        sync.Mutex
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(b Binder) *Server {
	s := &Server{
		binder: b,
		mcpServer: server.NewMCPServer("irep-mcp", strings.TrimSpace(irep.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for transports not covered here.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: read_table
	s.mcpServer.AddTool(mcp.NewTool("read_table",
		mcp.WithDescription("Bind the deck value at a path (usually a whole table) into host memory and report every field error."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Table name or path, e.g. table1 or table1.table2[3]")),
		mcp.WithOutputSchema[ReportResponse](),
	), mcp.NewStructuredToolHandler(s.handleReadTable))

	// TOOL: snapshot_table
	s.mcpServer.AddTool(mcp.NewTool("snapshot_table",
		mcp.WithDescription("Rebuild a well-known table from host memory without publishing it."),
		mcp.WithString("table", mcp.Required(), mcp.Description("Well-known table name")),
		mcp.WithOutputSchema[SnapshotResponse](),
	), mcp.NewStructuredToolHandler(s.handleSnapshotTable))

	// TOOL: exists
	s.mcpServer.AddTool(mcp.NewTool("exists",
		mcp.WithDescription("Report whether the deck defines a non-nil value at a path."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Deck path")),
	), mcp.NewStructuredToolHandler(s.handleExists))

	// TOOL: runtime_length
	s.mcpServer.AddTool(mcp.NewTool("runtime_length",
		mcp.WithDescription("Sequence length of the deck value at a path: -1 when absent, 0 for scalars."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Deck path")),
	), mcp.NewStructuredToolHandler(s.handleRuntimeLength))
}

func (s *Server) handleReadTable(ctx context.Context, request mcp.CallToolRequest, args PathArgs) (ReportResponse, error) {
	if args.Path == "" {
		return ReportResponse{}, fmt.Errorf("path is required")
	}
	s.mu.Lock()
	report := s.binder.Read(args.Path)
	s.mu.Unlock()
	return mapReport(report), nil
}

func (s *Server) handleSnapshotTable(ctx context.Context, request mcp.CallToolRequest, args TableArgs) (SnapshotResponse, error) {
	return s.snapshot(args.Table)
}

func (s *Server) handleExists(ctx context.Context, request mcp.CallToolRequest, args PathArgs) (map[string]any, error) {
	s.mu.Lock()
	ok := s.binder.Exists(args.Path)
	s.mu.Unlock()
	return map[string]any{"path": args.Path, "exists": ok}, nil
}

func (s *Server) handleRuntimeLength(ctx context.Context, request mcp.CallToolRequest, args PathArgs) (map[string]any, error) {
	s.mu.Lock()
	n := s.binder.RuntimeLength(args.Path)
	s.mu.Unlock()
	return map[string]any{"path": args.Path, "length": n}, nil
}

func (s *Server) snapshot(table string) (SnapshotResponse, error) {
	s.mu.Lock()
	v, report := s.binder.Snapshot(table)
	s.mu.Unlock()

	if value.IsNil(v) {
		return SnapshotResponse{}, fmt.Errorf("snapshot %s: %w", table, report.Err())
	}
	return SnapshotResponse{
		Table:  table,
		Data:   value.ToGo(v),
		Report: mapReport(report),
	}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: irep://tables
	s.mcpServer.AddResource(mcp.NewResource("irep://tables", "Well-known tables",
		mcp.WithMIMEType("application/json"),
	), s.handleListResource)

	// EXPOSE: irep://tables/{name}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(tableURIPrefix+"{name}", "Table snapshot",
		mcp.WithTemplateDescription("A well-known table rebuilt from host memory"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.handleTableResource)
}

func (s *Server) handleListResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.mu.Lock()
	tables := s.binder.Tables()
	s.mu.Unlock()

	jsonBytes, err := json.Marshal(map[string][]string{"tables": tables})
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (s *Server) handleTableResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	name := strings.TrimPrefix(request.Params.URI, tableURIPrefix)
	if name == "" || name == request.Params.URI {
		return nil, fmt.Errorf("invalid table URI %q", request.Params.URI)
	}
	snap, err := s.snapshot(name)
	if err != nil {
		return nil, err
	}
	jsonBytes, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func mapReport(r *domain.Report) ReportResponse {
	out := ReportResponse{Op: r.Op, Path: r.Path, Assigned: r.Assigned, Errors: make([]FieldError, len(r.Errors))}
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
