package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/pressroom/internal/cache/redis"
	"github.com/davidbz/pressroom/internal/config"
	"github.com/davidbz/pressroom/internal/domain"
	"github.com/davidbz/pressroom/internal/httpserver"
	"github.com/davidbz/pressroom/internal/interview"
	"github.com/davidbz/pressroom/internal/observability"
	"github.com/davidbz/pressroom/internal/observability/metrics"
	"github.com/davidbz/pressroom/internal/preferences"
	"github.com/davidbz/pressroom/internal/prompts"
	"github.com/davidbz/pressroom/internal/provider/openai"
	"github.com/davidbz/pressroom/internal/provider/registry"
	"github.com/davidbz/pressroom/internal/provider/scripted"
)

// ErrProviderNotConfigured indicates that a provider is not configured and should be skipped.
var ErrProviderNotConfigured = errors.New("provider not configured")

// pipelineMetrics registers the collectors with the default registry once per process.
var pipelineMetrics = sync.OnceValue(func() *metrics.PipelineMetrics {
	return metrics.NewPipelineMetrics(nil)
})

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func buildContainer() (*dig.Container, error) {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		return nil, fmt.Errorf("failed to provide config: %w", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		return nil, fmt.Errorf("failed to provide config dependencies: %w", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		return nil, fmt.Errorf("failed to provide logger: %w", err)
	}
	if err := container.Invoke(func(*zap.Logger) {}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := container.Provide(pipelineMetrics); err != nil {
		return nil, fmt.Errorf("failed to provide metrics: %w", err)
	}
	if err := container.Provide(func() domain.EventPublisher {
		return observability.NewEventBus()
	}); err != nil {
		return nil, fmt.Errorf("failed to provide event bus: %w", err)
	}

	// Invokers
	if err := container.Provide(newInvokerRegistry); err != nil {
		return nil, fmt.Errorf("failed to provide registry: %w", err)
	}
	if err := container.Provide(func(reg domain.InvokerRegistry, cfg *config.LLMConfig) (domain.Invoker, error) {
		return reg.Get(context.Background(), cfg.Provider)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide invoker: %w", err)
	}

	// Prompts and preferences
	if err := container.Provide(func(cfg *prompts.Config, app *config.AppConfig) (*prompts.FileStore, error) {
		return prompts.NewFileStore(cfg.Path, app.IsDevelopment())
	}); err != nil {
		return nil, fmt.Errorf("failed to provide prompt store: %w", err)
	}
	if err := container.Provide(func(cfg *preferences.Config, redisCfg *redis.Config) (preferences.Store, error) {
		return preferences.New(context.Background(), *cfg, *redisCfg)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide preference store: %w", err)
	}
	if err := container.Provide(func(store preferences.Store) domain.PreferenceStore {
		return store
	}); err != nil {
		return nil, fmt.Errorf("failed to provide preference store interface: %w", err)
	}

	// Domain Services
	if err := container.Provide(func(
		invoker domain.Invoker,
		promptStore *prompts.FileStore,
		prefs domain.PreferenceStore,
		m *metrics.PipelineMetrics,
		events domain.EventPublisher,
		cfg *interview.Config,
	) (*interview.Service, error) {
		return interview.NewService(invoker, promptStore, prefs, m, events, *cfg)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide interview service: %w", err)
	}

	// HTTP Layer
	if err := container.Provide(func(s *interview.Service) httpserver.Interviewer { return s }); err != nil {
		return nil, fmt.Errorf("failed to provide interviewer: %w", err)
	}
	if err := container.Provide(func(s *prompts.FileStore) httpserver.PromptFiles { return s }); err != nil {
		return nil, fmt.Errorf("failed to provide prompt files: %w", err)
	}
	if err := container.Provide(httpserver.NewHandler); err != nil {
		return nil, fmt.Errorf("failed to provide HTTP handler: %w", err)
	}
	if err := container.Provide(httpserver.NewServer); err != nil {
		return nil, fmt.Errorf("failed to provide HTTP server: %w", err)
	}

	return container, nil
}

// newInvokerRegistry registers every configured provider. The scripted
// provider needs no credentials and is always available.
func newInvokerRegistry(openaiCfg *openai.Config, scriptedCfg *scripted.Config) (domain.InvokerRegistry, error) {
	ctx := context.Background()
	logger := observability.FromContext(ctx)
	reg := registry.NewRegistry()

	scriptedProvider, err := scripted.NewProvider(*scriptedCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create scripted provider: %w", err)
	}
	if err := reg.Register(ctx, scriptedProvider); err != nil {
		return nil, fmt.Errorf("failed to register scripted provider: %w", err)
	}

	openaiProvider, err := newOpenAIProvider(openaiCfg)
	switch {
	case errors.Is(err, ErrProviderNotConfigured):
		logger.Warn("openai provider not configured, skipping")
	case err != nil:
		return nil, err
	default:
		if err := reg.Register(ctx, openaiProvider); err != nil {
			return nil, fmt.Errorf("failed to register OpenAI provider: %w", err)
		}
	}

	names, _ := reg.List(ctx)
	logger.Info("invokers registered", observability.String("providers", strings.Join(names, ",")))
	return reg, nil
}

func newOpenAIProvider(cfg *openai.Config) (*openai.Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrProviderNotConfigured
	}
	provider, err := openai.NewProvider(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI provider: %w", err)
	}
	return provider, nil
}
