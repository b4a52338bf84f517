package metrics

import (
	"context"
	"errors"

	"github.com/kilianp07/injector/core/events"
	"github.com/kilianp07/injector/core/inject"
	coremetrics "github.com/kilianp07/injector/core/metrics"
	"github.com/kilianp07/injector/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// injector events. It stops when the context is canceled or the bus closes.
// The returned channel is closed once the collector has stopped.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.ModuleRegistered:
		if r, ok := sink.(coremetrics.RegistrationRecorder); ok {
			_ = r.RecordRegistration(coremetrics.RegistrationRecord{
				Injector: e.Injector,
				Module:   e.Name,
				Factory:  e.Factory,
				Override: e.Override,
				Time:     e.Time,
			})
		}
	case events.ModuleBootstrapped:
		_ = sink.RecordBootstrap(coremetrics.BootstrapRecord{
			Injector: e.Injector,
			Module:   e.Name,
			Factory:  e.Factory,
			Duration: e.Duration,
			Time:     e.Time,
		})
	case events.BootstrapFailed:
		if r, ok := sink.(coremetrics.FailureRecorder); ok {
			_ = r.RecordFailure(coremetrics.FailureRecord{
				Injector: e.Injector,
				Module:   e.Name,
				Reason:   failureReason(e.Err),
				Err:      e.Err.Error(),
				Time:     e.Time,
			})
		}
	case events.DependencyMissing:
		if r, ok := sink.(coremetrics.MissingDependencyRecorder); ok {
			_ = r.RecordMissingDependency(e.Injector, e.Name)
		}
	case events.InjectorReady:
		if r, ok := sink.(coremetrics.ReadyRecorder); ok {
			_ = r.RecordReady(coremetrics.ReadyRecord{
				Injector: e.Injector,
				ID:       e.ID,
				Modules:  e.Modules,
				Duration: e.Duration,
				Time:     e.Time,
			})
		}
	}
}

func failureReason(err error) string {
	var cycle *inject.CyclicDependencyError
	var arg *inject.ArgumentError
	switch {
	case errors.As(err, &cycle):
		return "cycle"
	case errors.As(err, &arg):
		return "argument"
	default:
		return "factory"
	}
}
