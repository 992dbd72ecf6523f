// Package service wires the QTE session, input mapping and HTTP surface
// into one runnable unit.
package service

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/okian/qte/internal/adapters/http/api"
	"github.com/okian/qte/internal/adapters/http/swagger"
	"github.com/okian/qte/internal/adapters/session"
	"github.com/okian/qte/internal/config"
	"github.com/okian/qte/internal/domain/dedupe"
	"github.com/okian/qte/internal/domain/input"
	"github.com/okian/qte/internal/domain/model"
	"github.com/okian/qte/internal/domain/qte"
	"github.com/okian/qte/pkg/logger"
)

// ErrNotStarted is returned by operations that need a running service.
var ErrNotStarted = errors.New("service not started")

// Service owns the session host and everything the API needs around it.
type Service struct {
	mu sync.Mutex

	cfg    *config.Config
	manual bool
	logger logger.Logger

	host    *session.Host
	deduper dedupe.Deduper
	cancel  context.CancelFunc

	started bool
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithManualTime stops the frame ticker; time moves only through Step.
func WithManualTime() Option {
	return func(s *Service) {
		s.manual = true
	}
}

// New constructs a Service. Nothing runs until Start.
func New(opts ...Option) *Service {
	s := &Service{cfg: config.New(context.Background())}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PolicyFromConfig builds the dispatcher policy.
func PolicyFromConfig(cfg *config.Config) qte.Policy {
	return qte.Policy{
		GlobalIgnoredKeys: model.NormalizeKeys(cfg.GlobalIgnoredKeys),
		DefaultSettings: model.Settings{
			Duration:        cfg.DefaultDuration,
			PerfectRangeMin: cfg.DefaultPerfectMin,
			PerfectRangeMax: cfg.DefaultPerfectMax,
		},
		DebugLogging:  cfg.DebugLogging,
		ShowDebugInfo: cfg.ShowDebugInfo,
	}
}

// MapperFromConfig builds the input mapper holding the configured bindings.
func MapperFromConfig(cfg *config.Config) *input.Mapper {
	m := input.NewMapper()
	if len(cfg.ActionBindings) > 0 {
		m.AddContext(input.FromBindings(cfg.MappingContext, cfg.ActionBindings), 0)
	}
	return m
}

// Start builds the session and runs its loop until Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	s.logger.Info(ctx, "starting qte service...")

	opts := []session.Option{
		session.WithLogger(s.logger.Named("session")),
		session.WithTickInterval(s.cfg.TickInterval),
		session.WithQueueCapacity(s.cfg.CommandQueueSize),
		session.WithStreamBuffer(s.cfg.StreamBuffer),
	}
	if s.manual {
		opts = append(opts, session.WithManualTime())
	}
	s.host = session.New(PolicyFromConfig(s.cfg), MapperFromConfig(s.cfg), opts...)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.cfg.DedupeSize))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go s.host.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "qte service started",
		logger.Duration("tick", s.cfg.TickInterval),
		logger.Int("queueSize", s.cfg.CommandQueueSize),
		logger.Int("dedupeSize", s.cfg.DedupeSize),
		logger.Bool("manualTime", s.manual),
	)
	return nil
}

// Stop cancels every running QTE and stops the session loop.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping qte service...")
	err := s.host.Shutdown(ctx)
	s.cancel()
	s.started = false
	s.logger.Info(ctx, "qte service stopped")
	return err
}

// Session returns the running session host.
func (s *Service) Session() (*session.Host, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.host, nil
}

// Register attaches the API and docs routes to mux.
func (s *Service) Register(ctx context.Context, mux *http.ServeMux) error {
	host, err := s.Session()
	if err != nil {
		return err
	}
	api.NewServer(host,
		api.WithDeduper(s.deduper),
		api.WithInputRateLimit(s.cfg.InputRateLimit, s.cfg.InputBurst),
		api.WithDebugInfo(s.cfg.ShowDebugInfo),
	).Register(ctx, mux)
	swagger.Register(ctx, mux)
	return nil
}
