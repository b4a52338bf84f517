package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/injector/core/events"
	"github.com/kilianp07/injector/internal/eventbus"
)

// DefaultTopic is the topic prefix used when Config.Topic is empty.
const DefaultTopic = "injector/events"

// Message is the JSON payload published for each lifecycle event.
type Message struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Injector   string    `json:"injector"`
	Module     string    `json:"module,omitempty"`
	Factory    bool      `json:"factory,omitempty"`
	Override   bool      `json:"override,omitempty"`
	Modules    int       `json:"modules,omitempty"`
	DurationMS float64   `json:"duration_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
	Time       time.Time `json:"time"`
}

// Publisher sends payloads to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// EventPublisher forwards injector lifecycle events to an MQTT topic tree
// of the form <prefix>/<injector>/<type>.
type EventPublisher struct {
	pub    Publisher
	prefix string
}

// NewEventPublisher wraps pub. An empty prefix defaults to DefaultTopic.
func NewEventPublisher(pub Publisher, prefix string) *EventPublisher {
	if prefix == "" {
		prefix = DefaultTopic
	}
	return &EventPublisher{pub: pub, prefix: strings.TrimSuffix(prefix, "/")}
}

// PublishEvent encodes ev and publishes it. Unknown event types are ignored.
func (p *EventPublisher) PublishEvent(ev eventbus.Event) error {
	msg, ok := NewMessage(ev)
	if !ok {
		return nil
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.pub.Publish(p.prefix+"/"+msg.Injector+"/"+msg.Type, payload)
}

// Forward publishes every event received on bus until ctx is canceled or
// the bus closes. Publish errors are logged by the client and skipped.
func (p *EventPublisher) Forward(ctx context.Context, bus eventbus.EventBus) <-chan struct{} {
	done := make(chan struct{})
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
				_ = p.PublishEvent(ev)
			}
		}
	}()
	return done
}

// NewMessage converts a lifecycle event into a Message.
func NewMessage(ev eventbus.Event) (Message, bool) {
	m := Message{ID: uuid.NewString()}
	switch e := ev.(type) {
	case events.ModuleRegistered:
		m.Type, m.Injector, m.Module, m.Time = "module_registered", e.Injector, e.Name, e.Time
		m.Factory, m.Override = e.Factory, e.Override
	case events.ModuleBootstrapped:
		m.Type, m.Injector, m.Module, m.Time = "module_bootstrapped", e.Injector, e.Name, e.Time
		m.Factory = e.Factory
		m.DurationMS = float64(e.Duration) / float64(time.Millisecond)
	case events.BootstrapFailed:
		m.Type, m.Injector, m.Module, m.Time = "bootstrap_failed", e.Injector, e.Name, e.Time
		if e.Err != nil {
			m.Error = e.Err.Error()
		}
	case events.DependencyMissing:
		m.Type, m.Injector, m.Module, m.Time = "dependency_missing", e.Injector, e.Name, e.Time
	case events.InjectorReady:
		m.Type, m.Injector, m.Time = "injector_ready", e.Injector, e.Time
		m.Modules = e.Modules
		m.DurationMS = float64(e.Duration) / float64(time.Millisecond)
	default:
		return Message{}, false
	}
	return m, true
}
