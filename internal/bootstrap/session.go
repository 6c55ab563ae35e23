package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/careconnect/careconnect-go/config"
	"github.com/careconnect/careconnect-go/internal/adapters/filestore"
	"github.com/careconnect/careconnect-go/internal/adapters/memstore"
	redisadapter "github.com/careconnect/careconnect-go/internal/adapters/redis"
	"github.com/careconnect/careconnect-go/internal/apiclient"
	"github.com/careconnect/careconnect-go/internal/broadcast"
	"github.com/careconnect/careconnect-go/internal/observability/statsd"
	"github.com/careconnect/careconnect-go/internal/ports"
	"github.com/careconnect/careconnect-go/internal/session"
)

// App bundles the wired application components.
type App struct {
	Config  config.AppConfig
	Logger  *slog.Logger
	Store   ports.CredentialStore
	Bus     *broadcast.Bus
	Client  *apiclient.Client
	Session *session.Manager
	Metrics *statsd.Client

	closers []func() error
}

// Close releases everything BuildApp opened, in reverse order.
func (a *App) Close() {
	if a.Session != nil {
		a.Session.Close()
	}
	if a.Bus != nil {
		a.Bus.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.Logger != nil {
			a.Logger.Warn("close component", "error", err)
		}
	}
}

// BuildApp wires the credential store, invalidation bus, HTTP client, and
// session manager from configuration.
func BuildApp(cfg config.AppConfig, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  cfg.Observability.Metrics.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create statsd client: %w", err)
	}
	app.Metrics = metrics
	app.closers = append(app.closers, metrics.Close)

	store, err := buildStore(app, cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	app.Bus = broadcast.NewBus()

	client, err := apiclient.New(apiclient.Options{
		BaseURL:       cfg.API.BaseURL,
		Store:         store,
		Invalidations: app.Bus,
		Timeout:       cfg.API.Timeout,
		DemoLatency:   cfg.Demo.Latency,
		UserAgent:     cfg.API.UserAgent,
		Logger:        logger,
		Metrics:       metrics,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("create api client: %w", err)
	}
	app.Client = client

	manager, err := session.NewManager(session.Options{
		Store:   store,
		Client:  client,
		Bus:     app.Bus,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("create session manager: %w", err)
	}
	app.Session = manager

	return app, nil
}

//nolint:ireturn // the backend is selected at runtime from configuration.
func buildStore(app *App, cfg config.AppConfig, logger *slog.Logger) (ports.CredentialStore, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		client, err := ConnectRedis(cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		app.closers = append(app.closers, client.Close)
		return redisadapter.NewCredentialStore(client), nil

	case config.StoreBackendMemory:
		return memstore.New(), nil

	default:
		return filestore.New(cfg.Store.Path), nil
	}
}
