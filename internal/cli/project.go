package cli

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/irep"
	"github.com/aretw0/irep/internal/logging"
	"github.com/aretw0/irep/pkg/adapters/lua"
	"github.com/aretw0/irep/pkg/adapters/memory"
	"github.com/aretw0/irep/pkg/adapters/redis"
	"github.com/aretw0/irep/pkg/observability"
	"github.com/aretw0/irep/pkg/persistence/middleware"
	"github.com/aretw0/irep/pkg/ports"
	"github.com/aretw0/irep/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
)

// Options describe where the schema and the deck come from.
type Options struct {
	SchemaPath string
	DeckPath   string
	// RedisAddr selects a Redis snapshot store; empty keeps snapshots in memory.
	RedisAddr string
	// Redact masks snapshot fields whose name matches one of these patterns.
	Redact []string
	// SnapshotKey, hex encoded, encrypts snapshots at rest.
	SnapshotKey string
	// LogLevel enables logging to stderr; Debug forces the debug level.
	LogLevel string
	Debug    bool
	Trace    bool
	MaxDepth int
}

// Project is an opened schema bound to an opened deck.
type Project struct {
	Binder   *irep.Binder
	Compiled *schema.Compiled
	Registry *prometheus.Registry
	Logger   *slog.Logger

	closers []func() error
}

// Open compiles the schema, runs the deck and binds them together.
func Open(opts Options) (*Project, error) {
	logger, err := createLogger(opts)
	if err != nil {
		return nil, err
	}

	// 1. Schema
	compiled, err := LoadSchema(opts.SchemaPath)
	if err != nil {
		return nil, err
	}

	p := &Project{
		Compiled: compiled,
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
	}

	// 2. Deck
	rt, closeRuntime, err := OpenRuntime(opts.DeckPath)
	if err != nil {
		return nil, err
	}
	p.closers = append(p.closers, closeRuntime)

	// 3. Snapshot store
	store, closeStore, err := openStore(opts)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	p.closers = append(p.closers, closeStore)

	binderOpts := []irep.Option{
		irep.WithLogger(logger),
		irep.WithMetrics(observability.NewMetrics(p.Registry)),
		irep.WithSnapshotStore(store),
	}
	if opts.Trace {
		binderOpts = append(binderOpts, irep.WithTrace(true))
	}
	if opts.MaxDepth > 0 {
		binderOpts = append(binderOpts, irep.WithMaxDepth(opts.MaxDepth))
	}

	p.Binder, err = irep.New(compiled.Index, rt, binderOpts...)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("error initializing binder: %w", err)
	}
	logger.Debug("project opened", "schema", opts.SchemaPath, "deck", opts.DeckPath, "tables", p.Binder.Tables())
	return p, nil
}

// Close releases the deck and the snapshot store.
func (p *Project) Close() error {
	var first error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	p.closers = nil
	return first
}

// LoadSchema reads and compiles a schema file.
func LoadSchema(path string) (*schema.Compiled, error) {
	if path == "" {
		return nil, fmt.Errorf("no schema given (use --schema)")
	}
	desc, err := schema.Load(path)
	if err != nil {
		return nil, err
	}
	compiled, err := schema.Compile(desc)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", filepath.Base(path), err)
	}
	return compiled, nil
}

// OpenRuntime picks the runtime from the deck extension: Lua scripts run in a
// fresh Lua state, YAML and JSON documents become in-memory globals. An empty
// path yields a runtime with no globals.
func OpenRuntime(path string) (ports.Runtime, func() error, error) {
	noop := func() error { return nil }
	if path == "" {
		return memory.NewRuntime(), noop, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua":
		rt := lua.New()
		if err := rt.DoFile(path); err != nil {
			rt.Close()
			return nil, nil, fmt.Errorf("failed to run deck: %w", err)
		}
		return rt, func() error { rt.Close(); return nil }, nil
	case ".yaml", ".yml", ".json":
		rt, err := memory.LoadDeck(path)
		if err != nil {
			return nil, nil, err
		}
		return rt, noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported deck format %q", filepath.Ext(path))
	}
}

// openStore builds the snapshot store and its middleware chain: redaction
// runs before encryption so masked values never reach the cipher.
func openStore(opts Options) (ports.SnapshotStore, func() error, error) {
	var (
		store  ports.SnapshotStore = memory.NewStore()
		closer                     = func() error { return nil }
	)
	if opts.RedisAddr != "" {
		rs := redis.New(opts.RedisAddr, "", 0)
		store, closer = rs, rs.Close
	}

	var mws []middleware.Middleware
	if len(opts.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(opts.Redact)
		if err != nil {
			_ = closer()
			return nil, nil, err
		}
		mws = append(mws, mw)
	}
	if opts.SnapshotKey != "" {
		key, err := hex.DecodeString(opts.SnapshotKey)
		if err != nil {
			_ = closer()
			return nil, nil, fmt.Errorf("snapshot key: %w", err)
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			_ = closer()
			return nil, nil, fmt.Errorf("snapshot key: %w", err)
		}
		mws = append(mws, mw)
	}
	return middleware.Chain(store, mws...), closer, nil
}

// createLogger writes logs to stderr, keeping stdout for results.
func createLogger(opts Options) (*slog.Logger, error) {
	if opts.Debug {
		return logging.New(slog.LevelDebug), nil
	}
	if opts.LogLevel == "" {
		return logging.NewNop(), nil
	}
	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}
