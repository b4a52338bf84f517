// Package metrics defines the sinks recording injector activity. Sinks like
// the Prometheus and InfluxDB implementations in infra/metrics record
// registrations, bootstrap latencies and failures, and can be combined with
// NewMultiSink. NewMetricsSink builds the configured sinks by type name and
// returns a MultiSink automatically when several are configured.
package metrics
