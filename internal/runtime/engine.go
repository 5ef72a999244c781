package runtime

import (
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/irep/internal/logging"
	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/handle"
	"github.com/aretw0/irep/pkg/index"
	"github.com/aretw0/irep/pkg/layout"
	"github.com/aretw0/irep/pkg/ports"
	"github.com/aretw0/irep/pkg/value"
)

// DefaultMaxDepth bounds table nesting during a read.
const DefaultMaxDepth = 64

// Engine binds a Runtime to the memory described by an Index.
type Engine struct {
	index   *index.Index
	runtime ports.Runtime

	functions  *handle.Table[value.Function]
	references *handle.Table[value.Value]
	buffers    *handle.Table[[]float64]

	logger      *slog.Logger
	trace       bool
	maxDepth    int
	handleLimit int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. Field errors are logged at Warn,
// per-field traces at Debug.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTrace enables per-field trace logging.
func WithTrace(enabled bool) EngineOption {
	return func(e *Engine) {
		e.trace = enabled
	}
}

// WithMaxDepth bounds table nesting during a read. Values below 1 are ignored.
func WithMaxDepth(depth int) EngineOption {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithHandleLimit caps the number of live handles in each handle arena.
func WithHandleLimit(n int) EngineOption {
	return func(e *Engine) {
		e.handleLimit = n
	}
}

// NewEngine creates an engine over a frozen index and a runtime.
func NewEngine(ix *index.Index, rt ports.Runtime, opts ...EngineOption) *Engine {
	e := &Engine{
		index:    ix,
		runtime:  rt,
		logger:   logging.NewNop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	limit := handle.WithLimit(e.handleLimit)
	e.functions = handle.New[value.Function](limit)
	e.references = handle.New[value.Value](limit)
	e.buffers = handle.New[[]float64](limit)
	return e
}

// Index returns the reflection index.
func (e *Engine) Index() *index.Index {
	return e.index
}

// Read loads the dynamic value at path into memory. The returned report
// counts every failure; a zero count means full success.
func (e *Engine) Read(path string) *domain.Report {
	report := domain.NewReport("read", path)

	// 1. Locate the starting descriptor
	loc, err := e.index.Resolve(path)
	if err != nil {
		e.record(report, asFieldError(path, err))
		return report
	}

	// 2. Fetch the dynamic value for the same path
	v, err := e.runtime.Lookup(loc.Path)
	if err != nil {
		e.record(report, domain.NewFieldError(loc.Path, domain.ErrLookup, "cannot evaluate: %v", err))
		return report
	}
	if value.IsNil(v) {
		e.record(report, domain.NewFieldError(loc.Path, domain.ErrLookup, "no value defined"))
		return report
	}

	// 3. Walk
	r := &reader{
		e:      e,
		table:  loc.Table,
		mem:    loc.Memory,
		ctx:    newPathContext(loc.Path, loc.Offset),
		report: report,
	}
	r.read(v, loc.Field, loc.Indexed)

	e.logger.Debug("read complete", "path", loc.Path, "assigned", report.Assigned, "errors", report.Count())
	return report
}

// Exists reports whether the runtime defines a non-nil value at path.
func (e *Engine) Exists(path string) bool {
	v, err := e.runtime.Lookup(path)
	return err == nil && !value.IsNil(v)
}

// RuntimeLength returns -1 when path is absent, 0 when it holds a scalar and
// the sequence length when it holds a table.
func (e *Engine) RuntimeLength(path string) int {
	v, err := e.runtime.Lookup(path)
	if err != nil || value.IsNil(v) {
		return -1
	}
	if t, ok := v.(value.Table); ok {
		return t.Len()
	}
	return 0
}

// Snapshot rebuilds the dynamic table of a well-known table from memory
// without publishing it.
func (e *Engine) Snapshot(name string) (value.Value, *domain.Report) {
	report := domain.NewReport("write", name)
	loc, ok := e.wholeTable(name, report)
	if !ok {
		return value.Nil, report
	}
	w := &writer{
		e:      e,
		table:  loc.Table,
		mem:    loc.Memory,
		ctx:    newPathContext(loc.Path, loc.Offset),
		report: report,
	}
	return w.build(loc.Field, false), report
}

// Write rebuilds a well-known table from memory and publishes it to the runtime
// under its name.
func (e *Engine) Write(name string) *domain.Report {
	_, report := e.WriteValue(name)
	return report
}

// WriteValue is Write returning the published value as well. The value is Nil
// when nothing could be built.
func (e *Engine) WriteValue(name string) (value.Value, *domain.Report) {
	v, report := e.Snapshot(name)
	if value.IsNil(v) {
		return v, report
	}
	if err := e.runtime.Publish(name, v); err != nil {
		e.record(report, domain.NewFieldError(name, domain.ErrPublish, "%v", err))
		return v, report
	}
	e.logger.Debug("write complete", "table", name, "assigned", report.Assigned, "errors", report.Count())
	return v, report
}

func (e *Engine) wholeTable(name string, report *domain.Report) (index.Location, bool) {
	segs, err := index.ParsePath(name)
	if err != nil {
		e.record(report, asFieldError(name, err))
		return index.Location{}, false
	}
	if len(segs) != 1 {
		e.record(report, domain.NewFieldError(name, domain.ErrPath, "write takes a whole table, not a sub-path"))
		return index.Location{}, false
	}
	loc, err := e.index.Resolve(name)
	if err != nil {
		e.record(report, asFieldError(name, err))
		return index.Location{}, false
	}
	return loc, true
}

// Reference returns the value captured by the reference slot at path.
// An unassigned slot yields value.Nil.
func (e *Engine) Reference(path string) (value.Value, error) {
	loc, err := e.index.Resolve(path)
	if err != nil {
		return nil, err
	}
	if loc.Field.Type != index.Reference {
		return nil, domain.NewFieldError(loc.Path, domain.ErrTypeMismatch, "%s field is not a reference", loc.Field.Type)
	}
	raw, err := layout.ReadHandle(loc.Memory, loc.Offset)
	if err != nil {
		return nil, domain.NewFieldError(loc.Path, domain.ErrOverflow, "%v", err)
	}
	h := handle.Handle(raw)
	if h == handle.None {
		return value.Nil, nil
	}
	v, ok := e.references.Resolve(h)
	if !ok {
		return nil, domain.NewFieldError(loc.Path, domain.ErrLookup, "stale reference %s", h)
	}
	return v, nil
}

// AddTime accumulates count events and elapsed time into the timing aggregate
// at path, which must have an int field "count" and a double field "time"
// holding seconds.
func (e *Engine) AddTime(path string, count int, elapsed time.Duration) error {
	loc, err := e.index.Resolve(path)
	if err != nil {
		return err
	}
	if loc.Field.Type != index.Table || loc.IsArray() {
		return domain.NewFieldError(loc.Path, domain.ErrTypeMismatch, "not a timing aggregate")
	}
	cf, okCount := e.index.Field(loc.Field.Child, "count")
	tf, okTime := e.index.Field(loc.Field.Child, "time")
	if !okCount || !okTime || cf.Type != index.Int || tf.Type != index.Double {
		return domain.NewFieldError(loc.Path, domain.ErrTypeMismatch, "not a timing aggregate")
	}

	mem := loc.Memory
	n, err := layout.Int(mem, loc.Offset+cf.Offset, cf.Size)
	if err != nil {
		return domain.NewFieldError(loc.Path+".count", domain.ErrOverflow, "%v", err)
	}
	t, err := layout.Float(mem, loc.Offset+tf.Offset, tf.Size)
	if err != nil {
		return domain.NewFieldError(loc.Path+".time", domain.ErrOverflow, "%v", err)
	}
	if err := layout.PutInt(mem, loc.Offset+cf.Offset, cf.Size, n+int64(count)); err != nil {
		return domain.NewFieldError(loc.Path+".count", domain.ErrOverflow, "%v", err)
	}
	if err := layout.PutFloat(mem, loc.Offset+tf.Offset, tf.Size, t+elapsed.Seconds()); err != nil {
		return domain.NewFieldError(loc.Path+".time", domain.ErrOverflow, "%v", err)
	}
	return nil
}

func (e *Engine) record(report *domain.Report, err *domain.FieldError) {
	report.Add(err)
	e.logger.Warn("field error", "op", report.Op, "path", err.Path, "error", err)
}

func asFieldError(path string, err error) *domain.FieldError {
	var fe *domain.FieldError
	if errors.As(err, &fe) {
		return fe
	}
	return domain.NewFieldError(path, domain.ErrPath, "%v", err)
}

// codecError maps a layout failure to the error taxonomy.
func codecError(path string, err error) *domain.FieldError {
	if errors.Is(err, layout.ErrRange) {
		return domain.NewFieldError(path, domain.ErrOverflow, "%v", err)
	}
	return domain.NewFieldError(path, domain.ErrOverflow, "slot unusable: %v", err)
}
