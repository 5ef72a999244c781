package irep_test

import (
	"context"
	"testing"

	"github.com/aretw0/irep"
	"github.com/aretw0/irep/internal/testutils"
	"github.com/aretw0/irep/pkg/adapters/memory"
	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/observability"
	"github.com/aretw0/irep/pkg/value"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBinder(t *testing.T, globals map[string]any, opts ...irep.Option) *irep.Binder {
	t.Helper()
	compiled := testutils.CompileTable1(t)
	b, err := irep.New(compiled.Index, testutils.Deck(t, globals), opts...)
	require.NoError(t, err)
	return b
}

func TestNew_RequiresIndexAndRuntime(t *testing.T) {
	_, err := irep.New(nil, memory.NewRuntime())
	assert.Error(t, err)

	compiled := testutils.CompileTable1(t)
	_, err = irep.New(compiled.Index, nil)
	assert.Error(t, err)
}

func TestNew_Environment(t *testing.T) {
	compiled := testutils.CompileTable1(t)
	deck := testutils.Deck(t, map[string]any{
		"table1": map[string]any{"i": 1, "table3": map[string]any{"i": 5}},
	})

	t.Setenv(irep.EnvMaxDepth, "1")
	b, err := irep.New(compiled.Index, deck)
	require.NoError(t, err)
	report := b.Read("table1")
	require.Equal(t, 1, report.Count())
	assert.ErrorIs(t, report.Err(), domain.ErrStack)

	b, err = irep.New(compiled.Index, deck, irep.WithMaxDepth(8))
	require.NoError(t, err)
	assert.True(t, b.Read("table1").OK(), "options override the environment")

	t.Setenv(irep.EnvMaxDepth, "deep")
	_, err = irep.New(compiled.Index, deck)
	assert.Error(t, err)

	t.Setenv(irep.EnvMaxDepth, "")
	t.Setenv(irep.EnvTrace, "maybe")
	_, err = irep.New(compiled.Index, deck)
	assert.Error(t, err)
}

func TestBinder_ReadWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	b := newBinder(t, map[string]any{
		"table1": map[string]any{"i": 7, "s": "too long for it"},
	}, irep.WithMetrics(metrics))

	report := b.Read("table1")

	require.Equal(t, 1, report.Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Operations.WithLabelValues("read", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Assigned.WithLabelValues("read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Errors.WithLabelValues("read", "overflow")))
}

func TestBinder_Publish(t *testing.T) {
	store := memory.NewStore()
	b := newBinder(t, map[string]any{
		"table1": map[string]any{"i": 7, "e": []any{1.0, 2.0}},
	}, irep.WithSnapshotStore(store))
	ctx := context.Background()

	require.True(t, b.Read("table1").OK())

	report, err := b.Publish(ctx, "table1")
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, "publish", report.Op)
	assert.True(t, b.Exists("table1.item1"), "publish also writes to the runtime")

	snap, err := b.LoadSnapshot(ctx, "table1")
	require.NoError(t, err)
	assert.Equal(t, "table1", snap.Table)
	data, ok := snap.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(7), data["i"])
	assert.Equal(t, []any{int64(1), int64(2), 3.14, 3.14, 3.14}, data["e"])

	report, err = b.Publish(ctx, "table1.i")
	require.NoError(t, err)
	assert.ErrorIs(t, report.Err(), domain.ErrPath)

	_, err = b.LoadSnapshot(ctx, "table4")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestBinder_PublishWithoutStore(t *testing.T) {
	b := newBinder(t, nil)

	_, err := b.Publish(context.Background(), "table1")
	assert.ErrorIs(t, err, irep.ErrNoStore)
	_, err = b.LoadSnapshot(context.Background(), "table1")
	assert.ErrorIs(t, err, irep.ErrNoStore)
}

type table3 struct {
	I int
}

type table1 struct {
	I      int
	D      float64
	E      []float64
	S      string
	B      bool
	Table3 table3
	Table2 map[int]table3
	Item1  struct {
		Count int
		Time  float64
	}
}

func TestBinder_Decode(t *testing.T) {
	b := newBinder(t, map[string]any{
		"table1": map[string]any{"i": 7, "s": "xy", "table2": map[any]any{3: map[string]any{"i": 30}}},
	})
	require.True(t, b.Read("table1").OK())

	var out table1
	require.NoError(t, b.Decode("table1", &out))

	assert.Equal(t, 7, out.I)
	assert.Equal(t, 3.14, out.D)
	assert.Equal(t, []float64{3.14, 3.14, 3.14, 3.14, 3.14}, out.E)
	assert.Equal(t, "xy", out.S)
	assert.True(t, out.B)
	assert.Equal(t, 2, out.Table3.I)
	assert.Len(t, out.Table2, 6)
	assert.Equal(t, 30, out.Table2[3].I)
	assert.Zero(t, out.Item1.Count)

	assert.ErrorIs(t, b.Decode("nope", &out), domain.ErrLookup)
}

func TestBinder_Passthrough(t *testing.T) {
	b := newBinder(t, map[string]any{
		"table1": map[string]any{"f1": testutils.Adder(), "fooref": "r", "e": []any{1.0}},
	})
	require.True(t, b.Read("table1").OK())

	assert.Equal(t, []string{"table1", "table4"}, b.Tables())
	assert.True(t, b.Exists("table1.f1"))
	assert.Equal(t, 1, b.RuntimeLength("table1.e"))

	cb, err := b.Callback("table1.f1")
	require.NoError(t, err)
	out, err := cb.Evaluate(1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, out)

	ref, err := b.Reference("table1.fooref")
	require.NoError(t, err)
	assert.Equal(t, value.String("r"), ref)
}
