package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/specialistvlad/extforge/internal/coerce"
	"github.com/specialistvlad/extforge/internal/config"
	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/dispatch"
	"github.com/specialistvlad/extforge/internal/metrics"
	"github.com/specialistvlad/extforge/internal/output"
	"github.com/specialistvlad/extforge/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *config.Config
	modules    []registry.Module
	engine     *coerce.Engine
	gatherer   *prometheus.Registry
	metrics    *metrics.Metrics
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	httpServer *http.Server
	addr       string

	mu      sync.Mutex
	out     output.Writer
	closers []io.Closer
}

// New is the constructor for the main application. It returns a fully
// initialized App with its own isolated logger, metrics and registry. With
// no modules given the core modules are loaded.
func New(outW io.Writer, cfg *config.Config, modules ...registry.Module) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Log, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules()
	}

	gatherer := prometheus.NewRegistry()
	m := metrics.New(gatherer)
	engine := coerce.NewEngine()

	reg := registry.New(registry.WithMetrics(m))
	if err := reg.Load(ctx, modules...); err != nil {
		return nil, err
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "classes", len(reg.Classes()))

	return &App{
		ctx:        ctx,
		outW:       outW,
		logger:     logger,
		config:     cfg,
		modules:    modules,
		engine:     engine,
		gatherer:   gatherer,
		metrics:    m,
		registry:   reg,
		dispatcher: dispatch.New(reg, dispatch.WithEngine(engine), dispatch.WithMetrics(m)),
	}, nil
}

// Context returns the App's base context carrying its logger.
func (a *App) Context() context.Context { return a.ctx }

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// Dispatcher returns the application's dispatcher.
func (a *App) Dispatcher() *dispatch.Dispatcher { return a.dispatcher }

// Gatherer returns the metrics registry the App records into.
func (a *App) Gatherer() prometheus.Gatherer { return a.gatherer }

// Dispatch runs one rule through the dispatcher.
func (a *App) Dispatch(ctx context.Context, class string, bag map[string]any) (any, error) {
	return a.dispatcher.Dispatch(ctxlog.WithLogger(ctx, a.logger), class, bag)
}

// Close releases every resource opened by the App.
func (a *App) Close() error {
	var errs []error
	if err := a.closeServer(); err != nil {
		errs = append(errs, err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	a.out = nil
	return errors.Join(errs...)
}
