package irep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/irep/internal/logging"
	"github.com/aretw0/irep/internal/runtime"
	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/index"
	"github.com/aretw0/irep/pkg/observability"
	"github.com/aretw0/irep/pkg/ports"
	"github.com/aretw0/irep/pkg/value"
	"github.com/mitchellh/mapstructure"
)

// Environment switches read by New.
const (
	EnvTrace    = "IREP_TRACE"
	EnvMaxDepth = "IREP_MAX_DEPTH"
)

// ErrNoStore is returned by Publish and LoadSnapshot when no SnapshotStore is configured.
var ErrNoStore = errors.New("no snapshot store configured")

// Callback is a decoded callback slot.
type Callback = runtime.Callback

// Binder is the high-level entry point of the library.
// It wraps the binding engine with metrics and snapshot persistence.
// A Binder is not safe for concurrent use.
type Binder struct {
	engine  *runtime.Engine
	index   *index.Index
	runtime ports.Runtime
	store   ports.SnapshotStore
	metrics *observability.Metrics
	logger  *slog.Logger

	trace       *bool
	maxDepth    int
	handleLimit int
}

// Option defines a functional option for configuring the Binder.
type Option func(*Binder)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Binder) {
		b.logger = logger
	}
}

// WithMetrics records every operation in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Binder) {
		b.metrics = m
	}
}

// WithSnapshotStore sets where Publish saves snapshots.
func WithSnapshotStore(store ports.SnapshotStore) Option {
	return func(b *Binder) {
		b.store = store
	}
}

// WithMaxDepth bounds table nesting during a read. It overrides IREP_MAX_DEPTH.
func WithMaxDepth(depth int) Option {
	return func(b *Binder) {
		b.maxDepth = depth
	}
}

// WithTrace toggles per-field trace logging. It overrides IREP_TRACE.
func WithTrace(enabled bool) Option {
	return func(b *Binder) {
		b.trace = &enabled
	}
}

// WithHandleLimit caps the live handles of each handle arena.
func WithHandleLimit(n int) Option {
	return func(b *Binder) {
		b.handleLimit = n
	}
}

// New binds rt to the memory described by ix.
func New(ix *index.Index, rt ports.Runtime, opts ...Option) (*Binder, error) {
	if ix == nil {
		return nil, fmt.Errorf("index is required")
	}
	if rt == nil {
		return nil, fmt.Errorf("runtime is required")
	}
	b := &Binder{index: ix, runtime: rt}

	// 1. Environment defaults
	if v, ok := os.LookupEnv(EnvTrace); ok && v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvTrace, err)
		}
		b.trace = &on
	}
	if v, ok := os.LookupEnv(EnvMaxDepth); ok && v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil || depth < 1 {
			return nil, fmt.Errorf("%s: invalid depth %q", EnvMaxDepth, v)
		}
		b.maxDepth = depth
	}

	// 2. Options take precedence
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logging.NewNop()
	}

	engineOpts := []runtime.EngineOption{
		runtime.WithLogger(b.logger),
		runtime.WithMaxDepth(b.maxDepth),
		runtime.WithHandleLimit(b.handleLimit),
	}
	if b.trace != nil {
		engineOpts = append(engineOpts, runtime.WithTrace(*b.trace))
	}
	b.engine = runtime.NewEngine(ix, rt, engineOpts...)
	return b, nil
}

// Index returns the reflection index.
func (b *Binder) Index() *index.Index {
	return b.index
}

// Runtime returns the bound runtime.
func (b *Binder) Runtime() ports.Runtime {
	return b.runtime
}

// Tables lists the well-known tables in declaration order.
func (b *Binder) Tables() []string {
	return b.index.Tables()
}

// Read loads the dynamic value at path into memory.
func (b *Binder) Read(path string) *domain.Report {
	start := time.Now()
	report := b.engine.Read(path)
	b.metrics.Observe(report, time.Since(start))
	return report
}

// Write rebuilds a well-known table from memory and publishes it to the runtime.
func (b *Binder) Write(name string) *domain.Report {
	start := time.Now()
	report := b.engine.Write(name)
	b.metrics.Observe(report, time.Since(start))
	return report
}

// Exists reports whether the runtime defines a non-nil value at path.
func (b *Binder) Exists(path string) bool {
	return b.engine.Exists(path)
}

// RuntimeLength returns -1 when path is absent, 0 for a scalar and the
// sequence length of a table.
func (b *Binder) RuntimeLength(path string) int {
	return b.engine.RuntimeLength(path)
}

// Callback decodes the callback slot at path.
func (b *Binder) Callback(path string) (*Callback, error) {
	return b.engine.Callback(path)
}

// Reference returns the value captured by the reference slot at path.
func (b *Binder) Reference(path string) (value.Value, error) {
	return b.engine.Reference(path)
}

// AddTime accumulates events and elapsed time into the timing aggregate at path.
func (b *Binder) AddTime(path string, count int, elapsed time.Duration) error {
	return b.engine.AddTime(path, count, elapsed)
}

// Snapshot rebuilds a well-known table without publishing it.
func (b *Binder) Snapshot(name string) (value.Value, *domain.Report) {
	start := time.Now()
	v, report := b.engine.Snapshot(name)
	b.metrics.Observe(report, time.Since(start))
	return v, report
}

// Publish writes a table to the runtime and saves its snapshot to the store.
// Field errors are in the report; the error is reserved for the store.
func (b *Binder) Publish(ctx context.Context, name string) (*domain.Report, error) {
	if b.store == nil {
		return nil, ErrNoStore
	}

	start := time.Now()
	v, report := b.engine.WriteValue(name)
	report.Op = "publish"
	b.metrics.Observe(report, time.Since(start))
	if value.IsNil(v) {
		return report, nil
	}

	snap := &domain.Snapshot{
		Table:   name,
		Data:    value.ToGo(v),
		Errors:  report.Count(),
		TakenAt: time.Now().UTC(),
	}
	if err := b.store.Save(ctx, snap); err != nil {
		return report, fmt.Errorf("save snapshot %s: %w", name, err)
	}
	b.logger.Debug("snapshot saved", "table", name, "errors", snap.Errors)
	return report, nil
}

// LoadSnapshot returns the last published snapshot of a table.
func (b *Binder) LoadSnapshot(ctx context.Context, name string) (*domain.Snapshot, error) {
	if b.store == nil {
		return nil, ErrNoStore
	}
	return b.store.Load(ctx, name)
}

// Decode rebuilds a table and decodes it into out with mapstructure.
// Arrays whose bounds start at 1 decode as slices, other arrays as maps keyed
// by index.
func (b *Binder) Decode(name string, out any) error {
	v, report := b.Snapshot(name)
	if err := report.Err(); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "irep",
	})
	if err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	if err := decoder.Decode(value.ToGo(v)); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
