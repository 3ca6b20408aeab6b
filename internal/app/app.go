package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ConnectedSystems/openwater/internal/config"
	"github.com/ConnectedSystems/openwater/internal/ctxlog"
	"github.com/ConnectedSystems/openwater/internal/observability"
	"github.com/ConnectedSystems/openwater/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	model    *config.Model
	metrics  *observability.RunCollector

	statusServer *http.Server
}

// New is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry and
// metrics, with the scenario already loaded into the unified model.
func New(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load the scenario into the format-agnostic model first.
	model, err := loader.Load(ctx, appConfig.ScenarioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	logger.Debug("Scenario loaded and translated into unified model.")

	// Create and populate the registry with model kernels.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All model modules registered.", "count", len(modules))

	if err := reg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.", "kinds", reg.Kinds())

	// Each app carries its own metric registry so parallel instances do
	// not collide.
	metrics, err := observability.NewRunCollector(prometheus.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		registry: reg,
		model:    model,
		metrics:  metrics,
	}, nil
}

// setupTracing builds the tracing provider for the configured exporter.
func (a *App) setupTracing() (*observability.TracingProvider, error) {
	tracing, err := observability.NewTracingProvider(observability.TracingConfig{
		Exporter:    a.config.TraceExporter,
		Endpoint:    a.config.TraceEndpoint,
		ServiceName: "openwater",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure tracing: %w", err)
	}
	if tracing.Enabled() {
		a.logger.Info("Trace export enabled.", "exporter", a.config.TraceExporter)
	}
	return tracing, nil
}

// Registry returns the application's registry. This is primarily for
// testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded scenario model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
