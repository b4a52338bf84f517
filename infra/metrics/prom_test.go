package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/injector/core/metrics"
)

func TestPromSink_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	sink := s.(*PromSink)

	require.NoError(t, sink.RecordRegistration(coremetrics.RegistrationRecord{Injector: "app", Module: "db", Factory: true}))
	require.NoError(t, sink.RecordRegistration(coremetrics.RegistrationRecord{Injector: "app", Module: "db", Factory: true, Override: true}))
	require.NoError(t, sink.RecordBootstrap(coremetrics.BootstrapRecord{Injector: "app", Module: "db", Factory: true, Duration: 10 * time.Millisecond}))
	require.NoError(t, sink.RecordBootstrap(coremetrics.BootstrapRecord{Injector: "app", Module: "pi"}))
	require.NoError(t, sink.RecordFailure(coremetrics.FailureRecord{Injector: "app", Module: "a", Reason: "cycle"}))
	require.NoError(t, sink.RecordMissingDependency("app", "cache"))
	require.NoError(t, sink.RecordReady(coremetrics.ReadyRecord{Injector: "app", Modules: 4}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.registered.WithLabelValues("app", "true", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.registered.WithLabelValues("app", "true", "true")))
	// plain values are not timed
	assert.Equal(t, 1, testutil.CollectAndCount(sink.latency))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.failures.WithLabelValues("app", "a", "cycle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.missing.WithLabelValues("app", "cache")))
	assert.Equal(t, 4.0, testutil.ToFloat64(sink.modules.WithLabelValues("app")))
}

func TestPromSink_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, a.(*PromSink).RecordMissingDependency("app", "x"))
	require.NoError(t, b.(*PromSink).RecordMissingDependency("app", "x"))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.(*PromSink).missing.WithLabelValues("app", "x")))
}
