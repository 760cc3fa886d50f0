package admission

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/mentor/internal/types"
)

func TestMetricsRecordDecisions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	cfg := DefaultConfig()
	ctrl, err := NewController(cfg, nil, WithMetrics(m))
	require.NoError(t, err)

	ctrl.ShouldTrigger(change("eval(x)"), "s1")     // approved
	ctrl.ShouldTrigger(change("eval(y)"), "s1")     // cooldown
	ctrl.ShouldTrigger(change("SyntaxError"), "s1") // critical

	approved := testutil.ToFloat64(m.decisions.WithLabelValues(ReasonApproved, types.PriorityHigh.String()))
	assert.Equal(t, 1.0, approved)

	suppressed := testutil.ToFloat64(m.decisions.WithLabelValues(ReasonCooldown, types.PriorityHigh.String()))
	assert.Equal(t, 1.0, suppressed)

	critical := testutil.ToFloat64(m.decisions.WithLabelValues(ReasonCritical, types.PriorityImmediate.String()))
	assert.Equal(t, 1.0, critical)
}

func TestMetricsObserveStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	ctrl, err := NewController(DefaultConfig(), nil, WithMetrics(m))
	require.NoError(t, err)

	ctrl.EnqueueAnalysis(change("queued"), types.PriorityMedium, "s1")
	ctrl.Status()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.queueDepth))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.tokensAvailable))
}

func TestNilMetricsAreSafe(t *testing.T) {
	ctrl, err := NewController(DefaultConfig(), nil)
	require.NoError(t, err)

	// No metrics attached: decisions and status must not panic
	ctrl.ShouldTrigger(change("eval(x)"), "s1")
	ctrl.Status()
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}
