package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.ObserveDispatch("acme.Rule", OutcomeOK, 10*time.Millisecond)
	m.ObserveDispatch("acme.Rule", OutcomeOK, 20*time.Millisecond)
	m.ObserveDispatch("acme.Rule", OutcomeError, time.Millisecond)
	m.InstanceCreated("acme.Rule")
	m.ObserveCompile("Custom", OutcomeOK)

	require.Equal(t, 2.0, testutil.ToFloat64(m.dispatchTotal.WithLabelValues("acme.Rule", OutcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.dispatchTotal.WithLabelValues("acme.Rule", OutcomeError)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.instancesCreated.WithLabelValues("acme.Rule")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.compileTotal.WithLabelValues("Custom", OutcomeOK)))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveDispatch("x", OutcomeOK, time.Second)
		m.InstanceCreated("x")
		m.ObserveCompile("Rule", OutcomeError)
	})
}

func TestOutcome(t *testing.T) {
	t.Parallel()
	require.Equal(t, OutcomeOK, Outcome(nil))
	require.Equal(t, OutcomeError, Outcome(errors.New("boom")))
}
