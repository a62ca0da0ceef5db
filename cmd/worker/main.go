package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/projecta/notifier/internal/app"
	"github.com/projecta/notifier/internal/config"
	"github.com/projecta/notifier/internal/ledger"
	"github.com/projecta/notifier/internal/queue"
	"github.com/projecta/notifier/internal/scanner"
	"github.com/projecta/notifier/internal/worker"
	"github.com/projecta/notifier/pkg/logger"
	pkgworker "github.com/projecta/notifier/pkg/worker"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	seedPath := flag.String("seed", "", "JSON file of projects to load before starting")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.NewLogger(nil).Fatal(err, "Failed to load configuration")
	}

	log := logger.NewLogger(cfg.Log.ToLoggerConfig()).With("service", "worker")
	if err := run(cfg, log, *seedPath); err != nil {
		log.Fatal(err, "Worker exited with error")
	}
	log.Info("Worker exited")
}

// run drives the background loops until SIGINT/SIGTERM or until one of them
// fails. Connections are closed before it returns.
func run(cfg *config.Config, log *logger.Logger, seedPath string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()

	if seedPath != "" {
		n, err := a.SeedProjects(ctx, seedPath)
		if err != nil {
			return err
		}
		log.Info("Seeded projects", "count", n, "file", seedPath)
	}

	// Parsed before any loop starts.
	var events *worker.EventWorker
	if cfg.Queue.Enabled {
		opt, err := queue.RedisOpt(cfg.Queue.ToQueueConfig())
		if err != nil {
			return fmt.Errorf("invalid queue configuration: %w", err)
		}
		events = worker.NewEventWorker(opt, cfg.Queue.Concurrency, a.Dispatcher, log.With("worker", "events"))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			log.Info("Shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		runErr  error
	)
	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				errOnce.Do(func() { runErr = fmt.Errorf("%s: %w", name, err) })
				cancel()
			}
			log.Info("Worker stopped", "worker", name)
		}()
	}

	if cfg.Scanner.Enabled {
		deadlines := newDeadlineScanner(a, cfg, log)
		start("deadline_scanner", func(ctx context.Context) error { deadlines.Start(ctx); return nil })
	}

	if cfg.Retention.Enabled {
		cleanup := worker.NewCleanupWorker(a.Store.Notifications, cfg.Retention.ReadDays,
			cfg.Retention.Interval, log.With("worker", "cleanup"), a.Metrics)
		start("cleanup", func(ctx context.Context) error { cleanup.Start(ctx); return nil })
	}

	if events != nil {
		start("events", events.Start)
	}

	wg.Wait()
	return runErr
}

func newDeadlineScanner(a *app.App, cfg *config.Config, log *logger.Logger) *pkgworker.DeadlineScanner {
	scanCfg := scanner.Config{
		Location:   cfg.Scanner.Location(),
		Milestones: cfg.Scanner.OverdueMilestones,
	}
	scanLog := log.With("worker", "deadline_scanner")

	newSession := func(userID string) *scanner.Session {
		var l ledger.Ledger = ledger.NewMemory()
		if cfg.Ledger.Backend == config.LedgerRedis {
			l = ledger.NewRedis(a.Redis, cfg.Ledger.Prefix, userID)
		}
		return scanner.NewSession(userID, a.Store.Projects, a.Settings, a.Notifications,
			l, scanCfg, scanLog.With("user_id", userID), a.Metrics)
	}

	return pkgworker.NewDeadlineScanner(a.Store.Projects, newSession, cfg.Scanner.ToWorkerConfig(), scanLog, a.Metrics)
}
