package events

import "time"

// InjectorReady is published when a bootstrap pass completes.
type InjectorReady struct {
	Injector string
	ID       string
	Modules  int
	Duration time.Duration
	Time     time.Time
}
