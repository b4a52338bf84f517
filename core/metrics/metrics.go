package metrics

import "time"

// BootstrapRecord describes one module materialization.
type BootstrapRecord struct {
	Injector string
	Module   string
	Factory  bool
	Duration time.Duration
	Time     time.Time
}

// MetricsSink records bootstrap results for observability purposes.
type MetricsSink interface {
	RecordBootstrap(rec BootstrapRecord) error
}

// RegistrationRecord describes a module registration.
type RegistrationRecord struct {
	Injector string
	Module   string
	Factory  bool
	Override bool
	Time     time.Time
}

// RegistrationRecorder records module registrations.
type RegistrationRecorder interface {
	RecordRegistration(rec RegistrationRecord) error
}

// FailureRecord describes a failed bootstrap.
type FailureRecord struct {
	Injector string
	Module   string
	// Reason is "cycle", "argument" or "factory".
	Reason string
	Err    string
	Time   time.Time
}

// FailureRecorder records bootstrap failures.
type FailureRecorder interface {
	RecordFailure(rec FailureRecord) error
}

// MissingDependencyRecorder records names resolved to the imaginary
// dependency.
type MissingDependencyRecorder interface {
	RecordMissingDependency(injector, name string) error
}

// ReadyRecord describes a completed bootstrap pass.
type ReadyRecord struct {
	Injector string
	ID       string
	Modules  int
	Duration time.Duration
	Time     time.Time
}

// ReadyRecorder records completed bootstrap passes.
type ReadyRecorder interface {
	RecordReady(rec ReadyRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordBootstrap(BootstrapRecord) error        { return nil }
func (NopSink) RecordRegistration(RegistrationRecord) error  { return nil }
func (NopSink) RecordFailure(FailureRecord) error            { return nil }
func (NopSink) RecordMissingDependency(string, string) error { return nil }
func (NopSink) RecordReady(ReadyRecord) error                { return nil }
