// Package app wires the configured backends into the services both binaries share.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/projecta/notifier/internal/config"
	"github.com/projecta/notifier/internal/email"
	"github.com/projecta/notifier/internal/handler/health"
	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository"
	"github.com/projecta/notifier/internal/repository/firestore"
	"github.com/projecta/notifier/internal/repository/memory"
	"github.com/projecta/notifier/internal/repository/sqlstore"
	"github.com/projecta/notifier/internal/service/event"
	"github.com/projecta/notifier/internal/service/notification"
	"github.com/projecta/notifier/internal/service/settings"
	"github.com/projecta/notifier/pkg/logger"
	"github.com/projecta/notifier/pkg/messaging"
	"github.com/projecta/notifier/pkg/messaging/redis"
	"github.com/projecta/notifier/pkg/metrics"
	"github.com/projecta/notifier/pkg/validator"
)

type App struct {
	Config    *config.Config
	Logger    *logger.Logger
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Validator *validator.Validator

	Store  *repository.Store
	Redis  *goredis.Client
	Broker messaging.Broker

	Settings      settings.Service
	Notifications notification.Service
	Dispatcher    event.Dispatcher

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	a := &App{
		Config:    cfg,
		Logger:    log,
		Registry:  reg,
		Metrics:   metrics.NewMetrics(cfg.Metrics.Namespace, "", reg),
		Validator: validator.New(),
	}

	store, err := OpenStore(ctx, cfg, a.Metrics)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	if cfg.Broker.Enabled || cfg.Ledger.Backend == config.LedgerRedis {
		client, err := redis.NewClient(ctx, cfg.Redis.ToBrokerConfig())
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Redis = client
		a.closers = append(a.closers, client.Close)
	}

	// Without redis, pushes only reach subscribers in this process.
	if cfg.Broker.Enabled {
		a.Broker = redis.NewRedisBroker(a.Redis, log.Zerolog(), a.Metrics)
	} else {
		a.Broker = messaging.NewMemoryBroker()
		a.closers = append(a.closers, a.Broker.Close)
	}

	a.Settings = settings.NewService(store.Settings, cfg.Settings.CacheTTL, a.Validator, log.With("component", "settings"))

	opts := []notification.Option{notification.WithBroker(a.Broker)}
	if cfg.SMTP.Enabled {
		opts = append(opts, notification.WithEmail(email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})))
	}
	a.Notifications = notification.NewService(store.Notifications, a.Settings,
		log.With("component", "notifications"), a.Metrics, opts...)

	a.Dispatcher = event.NewDispatcher(store.Projects, a.Notifications, log.With("component", "events"), a.Metrics)

	log.Info("Application initialized",
		"store", cfg.Store.Driver,
		"broker", cfg.Broker.Enabled,
		"ledger", cfg.Ledger.Backend,
		"email", cfg.SMTP.Enabled)
	return a, nil
}

// OpenStore connects the configured backend.
func OpenStore(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*repository.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		return memory.NewStore().Repositories(), nil

	case config.StoreSQLite, config.StorePostgres:
		db, err := sqlstore.Open(ctx, cfg.Store.ToSQLConfig(), m)
		if err != nil {
			return nil, err
		}
		return db.Repositories(), nil

	case config.StoreFirestore:
		fsCfg, err := cfg.Store.ToFirestoreConfig()
		if err != nil {
			return nil, err
		}
		client, err := firestore.NewClient(ctx, fsCfg)
		if err != nil {
			return nil, err
		}
		return firestore.NewStore(client, m).Repositories(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Checks lists the dependencies readiness depends on.
func (a *App) Checks() map[string]health.Check {
	checks := map[string]health.Check{"store": a.Store.Ping}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}
	return checks
}

// SeedProjects loads a JSON array of projects into the store.
func (a *App) SeedProjects(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var projects []*model.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for _, p := range projects {
		if err := a.Store.ProjectWriter.SaveProject(ctx, p); err != nil {
			return 0, fmt.Errorf("failed to seed project %s: %w", p.ID, err)
		}
	}
	return len(projects), nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("Error while closing resource", "error", err.Error())
		}
	}
	a.closers = nil
}
