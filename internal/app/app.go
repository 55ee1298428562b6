package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/questionbot-backend/internal/catalog"
	httpserver "github.com/yungbote/questionbot-backend/internal/http"
	"github.com/yungbote/questionbot-backend/internal/observability"
	"github.com/yungbote/questionbot-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Config   *Config
	Catalog  *catalog.Catalog
	Metrics  *observability.Metrics
	Clients  Clients
	Services Services

	server       *httpserver.Server
	otelShutdown func(context.Context) error
}

// New builds the application. The catalog is imported here, once, before the
// listener opens; a failed import aborts startup.
func New(ctx context.Context, cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Env,
		SampleRatio: cfg.Tracing.SampleRatio,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
	})

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	log.Info("Loading question catalog...", "path", cfg.Catalog.Path, "sheet", cfg.Catalog.Sheet)
	cat, err := LoadCatalog(cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, err
	}
	metrics.SetCatalogSize(cat.Len())
	log.Info("Question catalog loaded", "questions", cat.Len())

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, err
	}

	serviceset, err := wireServices(log, cfg, cat, clients, metrics)
	if err != nil {
		clients.Close()
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, cfg, serviceset)
	router := wireRouter(log, cfg, handlerset, metrics)
	srv := httpserver.NewServer(log, httpserver.ServerConfig{
		Addr:              cfg.HTTP.Addr,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
		IdleTimeout:       cfg.HTTP.IdleTimeout.Duration,
		ShutdownTimeout:   cfg.HTTP.ShutdownTimeout.Duration,
	}, router)

	return &App{
		Log:          log,
		Config:       cfg,
		Catalog:      cat,
		Metrics:      metrics,
		Clients:      clients,
		Services:     serviceset,
		server:       srv,
		otelShutdown: otelShutdown,
	}, nil
}

// LoadCatalog imports the configured question source.
func LoadCatalog(cfg *Config) (*catalog.Catalog, error) {
	cat, err := catalog.Load(catalog.Source{
		Path:       cfg.Catalog.Path,
		Sheet:      cfg.Catalog.Sheet,
		HeaderRows: cfg.Catalog.HeaderRows,
	})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return errors.New("app not initialized")
	}
	return a.server.Run(ctx)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
