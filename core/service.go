package core

import (
	"context"
	"fmt"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	store           Store
	heightSource    HeightSource
	gate            capabilityGate
	sessions        *SessionManager
}

type ServiceDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	Store           Store
	HeightSource    HeightSource
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("ledger", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("ledger"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = MapError
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.store == nil {
		builder.store = NewMemoryStore()
	}
	if builder.heightSource == nil {
		builder.heightSource = NewManualHeight(0)
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	svc := &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		store:           builder.store,
		heightSource:    builder.heightSource,
	}
	svc.sessions = newSessionManager(svc, finalConfig.Session.StrictOrdering)
	return svc, nil
}

// Setup builds the service and loads genesis state into its store.
func Setup(ctx context.Context, cfg Config, genesis Genesis, opts ...Option) (*Service, error) {
	svc, err := NewService(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := svc.Bootstrap(ctx, genesis); err != nil {
		return nil, err
	}
	return svc, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:          s.logger,
		LoggerProvider:  s.loggerProvider,
		MetricsRecorder: s.metricsRecorder,
		ErrorMapper:     s.errorMapper,
		ConfigProvider:  s.configProvider,
		OptionsResolver: s.optionsResolver,
		Store:           s.store,
		HeightSource:    s.heightSource,
	}
}

// Sessions returns the handoff surface consumed by the session coordinator.
func (s *Service) Sessions() *SessionManager {
	if s == nil {
		return nil
	}
	return s.sessions
}

// Bootstrap loads genesis state. The validator list goes through the same
// bounded construction as SetValidators and reports overflow as an error.
func (s *Service) Bootstrap(ctx context.Context, genesis Genesis) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"validators":     len(genesis.Validators),
		"administrators": len(genesis.Administrators),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "bootstrap", err, fields)
	}()

	if err = s.ensureStore(); err != nil {
		return err
	}
	validators, err := s.boundedValidatorSet(genesis.Validators)
	if err != nil {
		err = s.mapError(err)
		return err
	}
	err = s.store.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		if err := tables.PutValidators(ctx, validators.IDs()); err != nil {
			return err
		}
		return tables.PutAdministrators(ctx, NewAdministratorTable(genesis.Administrators))
	})
	if err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

// Events reads the notification stream when the store keeps one.
func (s *Service) Events(ctx context.Context, filter EventFilter) ([]EventRecord, error) {
	if err := s.ensureStore(); err != nil {
		return nil, err
	}
	log, ok := s.store.(EventLog)
	if !ok {
		return nil, s.mapError(fmt.Errorf("core: store %T does not expose events", s.store))
	}
	records, err := log.Events(ctx, filter)
	if err != nil {
		return nil, s.mapError(err)
	}
	return records, nil
}

func (s *Service) ensureStore() error {
	if s == nil || s.store == nil {
		return fmt.Errorf("core: store is required")
	}
	return nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
