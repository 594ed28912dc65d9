package core

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

type fixedConfigProvider struct {
	cfg Config
}

func (p *fixedConfigProvider) Load(context.Context, Config) (Config, error) {
	return p.cfg, nil
}

type fixedOptionsResolver struct {
	cfg Config
}

func (r *fixedOptionsResolver) Resolve(Config, Config, Config) (Config, error) {
	return r.cfg, nil
}

func TestNewService_DefaultDependencies(t *testing.T) {
	svc, err := NewService(Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	deps := svc.Dependencies()
	if deps.Logger == nil {
		t.Fatalf("expected default logger")
	}
	if deps.LoggerProvider == nil {
		t.Fatalf("expected default logger provider")
	}
	if deps.ErrorMapper == nil {
		t.Fatalf("expected default error mapper")
	}
	if deps.ConfigProvider == nil {
		t.Fatalf("expected default config provider")
	}
	if deps.OptionsResolver == nil {
		t.Fatalf("expected default options resolver")
	}
	if deps.Store == nil {
		t.Fatalf("expected default memory store")
	}
	if deps.HeightSource == nil {
		t.Fatalf("expected default height source")
	}
	cfg := svc.Config()
	if cfg.ServiceName != "ledger" {
		t.Fatalf("expected default config service_name=ledger, got %q", cfg.ServiceName)
	}
	if cfg.Validators.MaxValidators != DefaultMaxValidators {
		t.Fatalf("expected default max validators, got %d", cfg.Validators.MaxValidators)
	}
	if cfg.Issuance.BatchLimit != DefaultBatchLimit {
		t.Fatalf("expected default batch limit, got %d", cfg.Issuance.BatchLimit)
	}
	if svc.Sessions() == nil || svc.Sessions().Strict() {
		t.Fatalf("expected cooperative session manager by default")
	}
}

func TestNewService_WithXOverrides(t *testing.T) {
	customLogger := stubLogger{}
	customProvider := stubLoggerProvider{logger: customLogger}
	sentinel := errors.New("sentinel")
	customMapper := func(error) *goerrors.Error {
		return goerrors.Wrap(sentinel, goerrors.CategoryOperation, "mapped")
	}
	store := NewMemoryStore()
	height := NewManualHeight(42)
	configProvider := &fixedConfigProvider{cfg: Config{ServiceName: "from-provider"}}
	resolvedConfig := DefaultConfig()
	resolvedConfig.ServiceName = "resolved"
	optionsResolver := &fixedOptionsResolver{cfg: resolvedConfig}

	svc, err := NewService(Config{ServiceName: "runtime"},
		WithLogger(customLogger),
		WithLoggerProvider(customProvider),
		WithErrorMapper(customMapper),
		WithStore(store),
		WithHeightSource(height),
		WithConfigProvider(configProvider),
		WithOptionsResolver(optionsResolver),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	deps := svc.Dependencies()
	if deps.Logger != customLogger {
		t.Fatalf("expected custom logger override")
	}
	if resolved := deps.LoggerProvider.GetLogger("ledger.override"); resolved != customLogger {
		t.Fatalf("expected logger provider to resolve custom logger")
	}
	if deps.Store != store {
		t.Fatalf("expected custom store override")
	}
	if deps.HeightSource != height {
		t.Fatalf("expected custom height source override")
	}
	if deps.ConfigProvider != configProvider {
		t.Fatalf("expected custom config provider override")
	}
	if deps.OptionsResolver != optionsResolver {
		t.Fatalf("expected custom options resolver override")
	}
	if got := svc.Config().ServiceName; got != "resolved" {
		t.Fatalf("expected options resolver output config, got %q", got)
	}

	err = svc.SetValidators(context.Background(), SignedCaller("x"), nil)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected custom error mapper to be used, got %v", err)
	}
}

func TestNewService_ConfigLayeringPrecedence(t *testing.T) {
	provider := NewCfgxConfigProvider(mapRawLoader{values: map[string]any{
		"service_name": "from-config",
		"validators": map[string]any{
			"max_validators":    7,
			"reject_duplicates": true,
		},
		"session": map[string]any{
			"strict_ordering": true,
		},
	}})

	svc, err := NewService(Config{ServiceName: "from-runtime"}, WithConfigProvider(provider))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cfg := svc.Config()
	if cfg.ServiceName != "from-runtime" {
		t.Fatalf("expected runtime value to override config/default, got %q", cfg.ServiceName)
	}
	if cfg.Validators.MaxValidators != 7 {
		t.Fatalf("expected config layer max validators, got %d", cfg.Validators.MaxValidators)
	}
	if !cfg.Validators.RejectDuplicates {
		t.Fatalf("expected config layer reject_duplicates")
	}
	if cfg.Issuance.BatchLimit != DefaultBatchLimit {
		t.Fatalf("expected default batch limit to survive layering, got %d", cfg.Issuance.BatchLimit)
	}
	if !svc.Sessions().Strict() {
		t.Fatalf("expected strict session manager from config")
	}
}

func TestNewService_RejectsInvalidBatchLimit(t *testing.T) {
	provider := NewCfgxConfigProvider(NewStaticConfigLoader(map[string]any{
		"issuance": map[string]any{"batch_limit": 1},
	}))
	_, err := NewService(Config{}, WithConfigProvider(provider))
	if err == nil {
		t.Fatalf("expected invalid batch limit to fail service construction")
	}
}
