package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordBootstrap forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordBootstrap(rec BootstrapRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordBootstrap(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordRegistration forwards registrations to sinks that record them.
func (m *MultiSink) RecordRegistration(rec RegistrationRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(RegistrationRecorder); ok {
			if err := r.RecordRegistration(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFailure forwards failures to sinks that record them.
func (m *MultiSink) RecordFailure(rec FailureRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(FailureRecorder); ok {
			if err := r.RecordFailure(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordMissingDependency forwards imaginary resolutions.
func (m *MultiSink) RecordMissingDependency(injector, name string) error {
	for _, s := range m.Sinks {
		if r, ok := s.(MissingDependencyRecorder); ok {
			if err := r.RecordMissingDependency(injector, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordReady forwards completed bootstrap passes.
func (m *MultiSink) RecordReady(rec ReadyRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ReadyRecorder); ok {
			if err := r.RecordReady(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
