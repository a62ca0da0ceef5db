package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/projecta/notifier/internal/handler/prometheus"
	"github.com/projecta/notifier/internal/middleware"
	"github.com/projecta/notifier/pkg/logger"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	healthH       Handler
	notificationH Handler
	settingsH     Handler
	eventH        Handler
	metrics       *prometheus.Handler
	config        RouterConfig
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	RequestTimeout   time.Duration
	MaxBodySize      int64
	CORSConfig       middleware.CORSConfig
	MetricsPath      string
	// Routes exempt from the request timeout.
	StreamPaths []string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	healthH Handler,
	notificationH Handler,
	settingsH Handler,
	eventH Handler,
	metrics *prometheus.Handler,
	log *logger.Logger,
	config RouterConfig,
) *Router {
	engine := gin.New() // Use New() instead of Default() for more control

	r := &Router{
		engine:        engine,
		auth:          auth,
		healthH:       healthH,
		notificationH: notificationH,
		settingsH:     settingsH,
		eventH:        eventH,
		metrics:       metrics,
		config:        config,
	}

	// Add core middlewares
	// Metrics wrap the error handler and recovery so they see the final status.
	engine.Use(
		middleware.RequestID(),
		metrics.Middleware(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.ErrorHandler(log),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	metricsPath := r.config.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	r.engine.GET(metricsPath, r.metrics.Handler())

	api := r.engine.Group("/api/v1")

	// Add version header
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	// Health check endpoints
	r.healthH.RegisterRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(
		r.auth.Authenticate(),
		middleware.Timeout(middleware.TimeoutConfig{
			Duration:  r.config.RequestTimeout,
			SkipPaths: r.config.StreamPaths,
		}),
	)
	if r.config.MaxBodySize > 0 {
		protected.Use(middleware.SizeLimit(middleware.SizeLimitConfig{MaxBodySize: r.config.MaxBodySize}))
	}
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.notificationH.RegisterRoutes(rg)
	r.settingsH.RegisterRoutes(rg)
	r.eventH.RegisterRoutes(rg)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
