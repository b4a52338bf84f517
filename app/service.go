package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kilianp07/injector/config"
	"github.com/kilianp07/injector/core/inject"
	coremetrics "github.com/kilianp07/injector/core/metrics"
	"github.com/kilianp07/injector/discovery"
	"github.com/kilianp07/injector/infra/host"
	"github.com/kilianp07/injector/infra/logger"
	"github.com/kilianp07/injector/infra/metrics"
	"github.com/kilianp07/injector/infra/mqtt"
	"github.com/kilianp07/injector/internal/eventbus"
)

// Service owns an injector together with the infrastructure observing it.
type Service struct {
	Injector  *inject.Injector
	Catalogue *discovery.Catalogue

	cfg      *config.Config
	bus      *eventbus.Bus
	log      logger.Logger
	client   *mqtt.Client
	workers  []<-chan struct{}
	cancel   context.CancelFunc
	closeOne sync.Once
}

type options struct {
	catalogue *discovery.Catalogue
	host      inject.HostSource
	log       logger.Logger
	setup     []func(*inject.Injector) error
}

// Option customizes New.
type Option func(*options)

// WithCatalogue sets the factory catalogue used for module files and mocks.
func WithCatalogue(c *discovery.Catalogue) Option {
	return func(o *options) { o.catalogue = c }
}

// WithHostSource replaces the host module catalogue.
func WithHostSource(h inject.HostSource) Option {
	return func(o *options) { o.host = h }
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithModules registers modules in code. fn runs after discovery and
// before mocks, so mocks replace these modules too.
func WithModules(fn func(*inject.Injector) error) Option {
	return func(o *options) { o.setup = append(o.setup, fn) }
}

// New creates a Service from the configuration. Module files are
// discovered and registered, then mocks replace them. Nothing is
// bootstrapped yet.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger.SetLevel(cfg.Logging.Level)
	if o.log == nil {
		o.log = logger.New("injector")
	}
	if o.catalogue == nil {
		o.catalogue = discovery.NewCatalogue()
	}
	if o.host == nil {
		o.host = host.NewSource(cfg.Host, logger.New("host"))
	}

	wctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		Catalogue: o.catalogue,
		cfg:       cfg,
		bus:       eventbus.New(eventbus.WithBuffer(cfg.Events.Buffer)),
		log:       o.log,
		cancel:    cancel,
	}
	if err := s.startObservers(wctx); err != nil {
		s.Close()
		return nil, err
	}

	s.Injector = inject.New(cfg.Name,
		inject.WithLogger(o.log),
		inject.WithEventBus(s.bus),
		inject.WithHostSource(o.host),
	)

	defs, err := discovery.Load(ctx, discovery.Options{
		Directories: cfg.Directories,
		Exclude:     cfg.Exclude,
		Extensions:  cfg.Extensions,
		Log:         o.log,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("discover modules: %w", err)
	}
	if err := discovery.Register(s.Injector, s.Catalogue, defs); err != nil {
		s.Close()
		return nil, err
	}
	o.log.Infof("registered %d modules from %d directories", len(defs), len(cfg.Directories))

	for _, fn := range o.setup {
		if err := fn(s.Injector); err != nil {
			s.Close()
			return nil, err
		}
	}
	if err := s.registerMocks(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Service) startObservers(ctx context.Context) error {
	if len(s.cfg.Metrics.Sinks) > 0 {
		sink, err := coremetrics.NewMetricsSink(s.cfg.Metrics.Sinks)
		if err != nil {
			return fmt.Errorf("metrics sink: %w", err)
		}
		s.workers = append(s.workers, metrics.StartEventCollector(ctx, s.bus, sink))
	}
	if s.cfg.Events.MQTT.Broker != "" {
		client, err := mqtt.NewClient(s.cfg.Events.MQTT)
		if err != nil {
			return fmt.Errorf("mqtt client: %w", err)
		}
		s.client = client
		pub := mqtt.NewEventPublisher(client, s.cfg.Events.MQTT.Topic)
		s.workers = append(s.workers, pub.Forward(ctx, s.bus))
	}
	return nil
}

func (s *Service) registerMocks() error {
	names := make([]string, 0, len(s.cfg.Mocks))
	for n := range s.cfg.Mocks {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		d, err := discovery.ParseEntry("mocks", name, s.cfg.Mocks[name])
		if err != nil {
			return err
		}
		def, err := s.Catalogue.Build(d)
		if err != nil {
			return fmt.Errorf("mock %s: %w", name, err)
		}
		if err := s.Injector.Mock(name, def); err != nil {
			return fmt.Errorf("mock %s: %w", name, err)
		}
		s.log.Debugf("mocked %s", name)
	}
	return nil
}

// Bootstrap materializes every registered module.
func (s *Service) Bootstrap(ctx context.Context) error {
	_, err := s.Injector.Bootstrap(ctx)
	return err
}

// Run serves Prometheus metrics when configured and blocks until ctx is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

// Close flushes pending events and releases resources held by the service.
// It is safe to call more than once.
func (s *Service) Close() {
	s.closeOne.Do(func() {
		s.bus.Close()
		for _, done := range s.workers {
			<-done
		}
		if n := s.bus.Dropped(); n > 0 {
			s.log.Warnf("dropped %d lifecycle events; raise events.buffer", n)
		}
		s.cancel()
		if s.client != nil {
			s.client.Disconnect()
		}
	})
}

// Create builds a Service, bootstraps it and reports the outcome to
// onReady before returning. onReady receives a nil injector on failure.
func Create(ctx context.Context, cfg *config.Config, onReady func(*inject.Injector, error), opts ...Option) (*Service, error) {
	s, err := New(ctx, cfg, opts...)
	if err == nil {
		if err = s.Bootstrap(ctx); err != nil {
			s.Close()
			s = nil
		}
	}
	if onReady != nil {
		if err != nil {
			onReady(nil, err)
		} else {
			onReady(s.Injector, nil)
		}
	}
	return s, err
}
