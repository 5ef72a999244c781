package observability

import (
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/irep/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ok := domain.NewReport("read", "table1")
	ok.Assigned = 3
	m.Observe(ok, time.Millisecond)

	failed := domain.NewReport("read", "table1")
	failed.Assigned = 1
	failed.Add(domain.NewFieldError("table1.i", domain.ErrTypeMismatch, "expected a number"))
	failed.Add(domain.NewFieldError("table1.table3", domain.ErrStack, "too deep"))
	m.Observe(failed, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("read", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("read", "error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Assigned.WithLabelValues("read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("read", "stack")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Errors.WithLabelValues("read", "overflow")))

	count, err := testutil.GatherAndCount(reg, "irep_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Observe(domain.NewReport("write", "table1"), time.Second)
	})
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "overflow", KindLabel(domain.ErrOverflow))
	assert.Equal(t, "stack", KindLabel(domain.ErrStack))
	assert.Equal(t, "arity", KindLabel(fmt.Errorf("wrapped: %w", domain.ErrArity)))
	assert.Equal(t, "other", KindLabel(nil))
}
