package settings

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/projecta/notifier/internal/middleware"
	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository"
	"github.com/projecta/notifier/internal/repository/memory"
	"github.com/projecta/notifier/internal/repository/mocks"
	settingsService "github.com/projecta/notifier/internal/service/settings"
	"github.com/projecta/notifier/pkg/logger"
	"github.com/projecta/notifier/pkg/validator"
)

func newEngine(repo repository.SettingsRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := settingsService.NewService(repo, 0, validator.New(), logger.Nop())

	r := gin.New()
	r.Use(middleware.ErrorHandler(logger.Nop()), func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "ana")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

type settingsResponse struct {
	Status string                     `json:"status"`
	Data   model.NotificationSettings `json:"data"`
}

func request(r *gin.Engine, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/settings/notifications", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetSettingsReturnsDefaults(t *testing.T) {
	r := newEngine(memory.NewStore().Repositories().Settings)

	w := request(r, http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp settingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.TaskDeadlines.Enabled)
	assert.Equal(t, 2, resp.Data.TaskDeadlines.DaysBefore)
	assert.Equal(t, model.FrequencyDaily, resp.Data.OverdueReminders.Frequency)
}

func TestPatchMergesCategory(t *testing.T) {
	r := newEngine(memory.NewStore().Repositories().Settings)

	w := request(r, http.MethodPatch, `{"task_deadlines":{"days_before":5}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp settingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Data.TaskDeadlines.DaysBefore)
	assert.True(t, resp.Data.TaskDeadlines.Enabled)
	assert.True(t, resp.Data.OverdueReminders.Enabled)

	w = request(r, http.MethodGet, "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Data.TaskDeadlines.DaysBefore)
}

func TestPatchRejectsInvalidValues(t *testing.T) {
	r := newEngine(memory.NewStore().Repositories().Settings)

	w := request(r, http.MethodPatch, `{"task_deadlines":{"days_before":90}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "days_before")

	w = request(r, http.MethodPatch, `{"quiet_hours":{"start":"25:00"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(r, http.MethodPatch, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatchSaveFailureIsServerError(t *testing.T) {
	repo := &mocks.SettingsRepository{}
	repo.On("Get", mock.Anything, "ana").Return(settingsService.Defaults(), nil)
	repo.On("Save", mock.Anything, "ana", mock.Anything).Return(errors.New("disk full"))

	w := request(newEngine(repo), http.MethodPatch, `{"email_delivery":{"enabled":true}}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk full")
}
