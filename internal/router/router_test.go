package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventHandler "github.com/projecta/notifier/internal/handler/event"
	"github.com/projecta/notifier/internal/handler/health"
	notificationHandler "github.com/projecta/notifier/internal/handler/notification"
	"github.com/projecta/notifier/internal/handler/prometheus"
	settingsHandler "github.com/projecta/notifier/internal/handler/settings"
	"github.com/projecta/notifier/internal/middleware"
	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository/memory"
	"github.com/projecta/notifier/internal/service/event"
	"github.com/projecta/notifier/internal/service/notification"
	"github.com/projecta/notifier/internal/service/settings"
	"github.com/projecta/notifier/pkg/auth"
	"github.com/projecta/notifier/pkg/logger"
	"github.com/projecta/notifier/pkg/messaging"
	"github.com/projecta/notifier/pkg/metrics"
	"github.com/projecta/notifier/pkg/validator"
)

type app struct {
	engine *gin.Engine
	store  *memory.Store
	jwt    auth.JWTService
}

func newApp(t *testing.T) *app {
	t.Helper()
	broker := messaging.NewMemoryBroker()
	t.Cleanup(func() { _ = broker.Close() })
	return newAppWithBroker(t, broker)
}

// newAppWithBroker builds the full router; a nil broker disables live streams.
func newAppWithBroker(t *testing.T, broker messaging.Broker) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	repos := store.Repositories()
	reg := promclient.NewRegistry()
	m := metrics.NewMetrics("projecta", "", reg)
	log := logger.Nop()
	v := validator.New()

	settingsSvc := settings.NewService(repos.Settings, 0, v, log)
	notificationSvc := notification.NewService(repos.Notifications, settingsSvc, log, m, notification.WithBroker(broker))
	dispatcher := event.NewDispatcher(repos.Projects, notificationSvc, log, m)
	jwtSvc := auth.NewJWTService(auth.JWTConfig{Secret: "router-test"})

	r := NewRouter(
		middleware.NewAuthMiddleware(jwtSvc, log),
		health.NewHandler(map[string]health.Check{"store": repos.Ping}),
		notificationHandler.NewHandler(notificationSvc, broker, log),
		settingsHandler.NewHandler(settingsSvc),
		eventHandler.NewHandler(dispatcher, nil, v, log),
		prometheus.New("projecta", reg),
		log,
		RouterConfig{
			RequestTimeout: 5 * time.Second,
			MaxBodySize:    64 << 10,
			CORSConfig:     middleware.DefaultCORSConfig(),
			StreamPaths:    []string{notificationHandler.StreamPath},
		},
	)
	r.Setup()
	return &app{engine: r.Engine(), store: store, jwt: jwtSvc}
}

func (a *app) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		token, err := a.jwt.GenerateToken(user, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func TestPublicRoutes(t *testing.T) {
	a := newApp(t)

	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/v1/health/live", "", "").Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/v1/health/ready", "", "").Code)

	w := a.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "projecta_http_requests_total")
}

func TestMetricsRecordRenderedErrorStatus(t *testing.T) {
	a := newAppWithBroker(t, nil)

	w := a.do(t, http.MethodGet, "/api/v1/notifications/stream", "ana", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "live notifications are disabled")

	body := a.do(t, http.MethodGet, "/metrics", "", "").Body.String()
	assert.Contains(t, body,
		`projecta_http_requests_total{method="GET",path="/api/v1/notifications/stream",status="503"} 1`)
	assert.Contains(t, body,
		`projecta_http_errors_total{method="GET",path="/api/v1/notifications/stream",status="503"} 1`)
	assert.NotContains(t, body, `path="/api/v1/notifications/stream",status="200"`)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newApp(t)

	for _, path := range []string{"/api/v1/notifications", "/api/v1/settings/notifications"} {
		assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, path, "", "").Code, path)
	}
}

func TestEventToInboxFlow(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.store.SaveProject(context.Background(), &model.Project{
		ID:      "p1",
		Title:   "Website",
		OwnerID: "owner@example.com",
		Members: []string{"ana@example.com"},
		Tasks:   []model.Task{{ID: "t1", Title: "Landing page", Status: model.TaskStatusPending}},
	}))

	w := a.do(t, http.MethodPost, "/api/v1/events", "owner@example.com",
		`{"type":"task_assigned","project_id":"p1","task_id":"t1","target_user_ids":["ana@example.com"]}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/notifications", "ana@example.com", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"type":"task_assignment"`)
	assert.Contains(t, w.Body.String(), "Landing page")

	w = a.do(t, http.MethodGet, "/api/v1/notifications", "owner@example.com", "")
	assert.NotContains(t, w.Body.String(), "task_assignment")
}

func TestSettingsRoundTrip(t *testing.T) {
	a := newApp(t)

	w := a.do(t, http.MethodPatch, "/api/v1/settings/notifications", "ana", `{"overdue_reminders":{"frequency":"weekly"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/settings/notifications", "ana", "")
	assert.Contains(t, w.Body.String(), `"frequency":"weekly"`)
}
