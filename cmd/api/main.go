package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/projecta/notifier/internal/app"
	"github.com/projecta/notifier/internal/config"
	eventHandler "github.com/projecta/notifier/internal/handler/event"
	"github.com/projecta/notifier/internal/handler/health"
	"github.com/projecta/notifier/internal/handler/notification"
	"github.com/projecta/notifier/internal/handler/prometheus"
	settingsHandler "github.com/projecta/notifier/internal/handler/settings"
	"github.com/projecta/notifier/internal/middleware"
	"github.com/projecta/notifier/internal/queue"
	"github.com/projecta/notifier/internal/router"
	"github.com/projecta/notifier/pkg/auth"
	"github.com/projecta/notifier/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	// Optional; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.NewLogger(nil).Fatal(err, "Failed to load configuration")
	}

	log := logger.NewLogger(cfg.Log.ToLoggerConfig()).With("service", "api")
	if err := run(cfg, log); err != nil {
		log.Fatal(err, "API exited with error")
	}
	log.Info("Server exited")
}

// run serves until SIGINT/SIGTERM. Every resource it opens is released
// before it returns, including on startup failures.
func run(cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()

	// Without a queue, events are dispatched inside the request.
	var enqueuer queue.Enqueuer
	if cfg.Queue.Enabled {
		client, err := queue.NewClient(cfg.Queue.ToQueueConfig())
		if err != nil {
			return fmt.Errorf("failed to create queue client: %w", err)
		}
		defer client.Close()
		enqueuer = client
	}

	if cfg.JWT.Secret == "" {
		log.Warn("jwt.secret is empty, every protected request will be rejected")
	}
	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})

	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwtService, log),
		health.NewHandler(a.Checks()),
		notification.NewHandler(a.Notifications, a.Broker, log),
		settingsHandler.NewHandler(a.Settings),
		eventHandler.NewHandler(a.Dispatcher, enqueuer, a.Validator, log),
		prometheus.New(cfg.Metrics.Namespace, a.Registry),
		log,
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			RequestTimeout:   cfg.Server.RequestTimeout,
			MaxBodySize:      1 << 20,
			CORSConfig:       middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins...),
			MetricsPath:      cfg.Metrics.Path,
			StreamPaths:      []string{notification.StreamPath},
		},
	)
	r.Setup()

	// WriteTimeout stays at its configured value (0 by default) so SSE
	// streams are not cut off.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "addr", srv.Addr, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
