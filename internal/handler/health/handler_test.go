package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEngine(checks map[string]Check) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(checks).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestLiveness(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	w := httptest.NewRecorder()
	newEngine(map[string]Check{"store": ok}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	newEngine(map[string]Check{"store": ok, "redis": down}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"DOWN","checks":{"redis":"connection refused"}}`, w.Body.String())
}
