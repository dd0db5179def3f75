package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/evalgraph/internal/config"
	"github.com/specialistvlad/evalgraph/internal/ctxlog"
	"github.com/specialistvlad/evalgraph/internal/inmemorytable"
	"github.com/specialistvlad/evalgraph/internal/methods"
	"github.com/specialistvlad/evalgraph/internal/methods/core"
	"github.com/specialistvlad/evalgraph/internal/runtime"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	outMu      sync.Mutex
	logger     *slog.Logger
	config     *Config
	model      *config.Model
	methods    *methods.Registry
	store      *inmemorytable.Store
	runtime    *runtime.Runtime
	httpServer *http.Server
	lastRound  atomic.Int64
	fetching   atomic.Int32 // bindings still fetching after the last round
}

// NewApp is the constructor for the main application. Round output is written
// to outW and logs to logW. It panics when the definition cannot be loaded,
// since nothing can run without it.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, stateLoader config.StateLoader, modules ...methods.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.Paths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Definition loaded and translated into unified model.")

	if cfg.StatePath != "" {
		state, err := stateLoader.LoadState(ctx, cfg.StatePath)
		if err != nil {
			panic(fmt.Errorf("failed to load state: %w", err))
		}
		model.ApplyState(state)
	}
	sets, err := parseSets(cfg.Sets)
	if err != nil {
		panic(err)
	}
	model.ApplyState(sets)

	if len(modules) == 0 {
		modules = core.Modules()
	}
	reg := methods.New(modules...)
	logger.Debug("All method modules registered.", "count", len(modules), "methods", len(reg.Names()))

	store := inmemorytable.New()
	if err := publishExposes(ctx, store, model); err != nil {
		panic(fmt.Errorf("failed to publish exposing nodes: %w", err))
	}

	rt, err := runtime.New(store, reg.Methods(), buildBindings(model)...)
	if err != nil {
		panic(fmt.Errorf("failed to create runtime: %w", err))
	}
	logger.Debug("Runtime created.", "exposes", len(model.Exposes), "bindings", len(model.Bindings))

	return &App{
		ctx:     ctx,
		outW:    outW,
		logger:  logger,
		config:  cfg,
		model:   model,
		methods: reg,
		store:   store,
		runtime: rt,
	}
}

// Runtime returns the application's runtime. This is primarily for testing.
func (a *App) Runtime() *runtime.Runtime {
	return a.runtime
}

// Methods returns the application's method registry.
func (a *App) Methods() *methods.Registry {
	return a.methods
}
