package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/injector/core/metrics"
)

// PromSink records injector activity in Prometheus metrics.
type PromSink struct {
	registered *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	failures   *prometheus.CounterVec
	missing    *prometheus.CounterVec
	modules    *prometheus.GaugeVec
}

// NewPromSink registers injector metrics on the default Prometheus registerer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	registered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "injector_modules_registered_total",
		Help: "Total number of module registrations",
	}, []string{"injector", "factory", "override"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "injector_bootstrap_duration_seconds",
		Help:    "Time spent running module factories",
		Buckets: prometheus.DefBuckets,
	}, []string{"injector", "module"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "injector_bootstrap_failures_total",
		Help: "Total number of failed module bootstraps",
	}, []string{"injector", "module", "reason"})
	missing := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "injector_imaginary_dependencies_total",
		Help: "Dependencies resolved to the imaginary dependency",
	}, []string{"injector", "dependency"})
	modules := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "injector_modules_bootstrapped",
		Help: "Number of modules bootstrapped by the last completed pass",
	}, []string{"injector"})

	var err error
	if registered, err = register(reg, registered); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if failures, err = register(reg, failures); err != nil {
		return nil, err
	}
	if missing, err = register(reg, missing); err != nil {
		return nil, err
	}
	if modules, err = register(reg, modules); err != nil {
		return nil, err
	}
	return &PromSink{registered: registered, latency: latency, failures: failures, missing: missing, modules: modules}, nil
}

// register returns the already registered collector when c was registered
// by an earlier sink.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordBootstrap observes the factory run time of bootstrapped factories.
func (s *PromSink) RecordBootstrap(rec coremetrics.BootstrapRecord) error {
	if rec.Factory {
		s.latency.WithLabelValues(rec.Injector, rec.Module).Observe(rec.Duration.Seconds())
	}
	return nil
}

// RecordRegistration counts registrations.
func (s *PromSink) RecordRegistration(rec coremetrics.RegistrationRecord) error {
	s.registered.WithLabelValues(rec.Injector, strconv.FormatBool(rec.Factory), strconv.FormatBool(rec.Override)).Inc()
	return nil
}

// RecordFailure counts failed bootstraps by reason.
func (s *PromSink) RecordFailure(rec coremetrics.FailureRecord) error {
	s.failures.WithLabelValues(rec.Injector, rec.Module, rec.Reason).Inc()
	return nil
}

// RecordMissingDependency counts imaginary resolutions.
func (s *PromSink) RecordMissingDependency(injector, name string) error {
	s.missing.WithLabelValues(injector, name).Inc()
	return nil
}

// RecordReady sets the module gauge.
func (s *PromSink) RecordReady(rec coremetrics.ReadyRecord) error {
	s.modules.WithLabelValues(rec.Injector).Set(float64(rec.Modules))
	return nil
}
