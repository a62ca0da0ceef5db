package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecta/notifier/internal/handler"
	"github.com/projecta/notifier/pkg/auth"
	apperrors "github.com/projecta/notifier/pkg/errors"
	"github.com/projecta/notifier/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	jwtSvc := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret"})
	token, err := jwtSvc.GenerateToken("ana@example.com", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.Use(NewAuthMiddleware(jwtSvc, logger.Nop()).Authenticate())
	r.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })

	tests := []struct {
		name   string
		header string
		query  string
		status int
		body   string
	}{
		{name: "valid bearer", header: "Bearer " + token, status: http.StatusOK, body: "ana@example.com"},
		{name: "lowercase scheme", header: "bearer " + token, status: http.StatusOK, body: "ana@example.com"},
		{name: "query fallback", query: "?access_token=" + token, status: http.StatusOK, body: "ana@example.com"},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc.def.ghi", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestErrorHandlerMapsAppErrors(t *testing.T) {
	var logs bytes.Buffer
	log := logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Format: logger.FormatJSON, Output: &logs})

	r := gin.New()
	r.Use(RequestID(), ErrorHandler(log))
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(apperrors.NotFound("notification", nil)) })
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("db password leaked in message")) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "notification not found")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Contains(t, logs.String(), "db password leaked")

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(HeaderXRequestID, "evt-42")
	w = serve(r, req)
	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, handler.StatusError, resp.Status)
	assert.Equal(t, "evt-42", resp.TraceID)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.Nop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"error"`)
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w := serve(r, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
}

func TestRequestIDReplacesUnsafeHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	for _, rid := range []string{"a b", "id\tinjected", "x/../y", strings.Repeat("a", 65)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderXRequestID, rid)
		w := serve(r, req)
		assert.NotEqual(t, rid, w.Body.String(), rid)
		assert.Len(t, w.Body.String(), 36, rid)
	}
}

func TestRateLimitPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 2})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.2"))
}

func TestTimeoutBoundsContext(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: 20 * time.Millisecond, SkipPaths: []string{"/stream"}}))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/stream", func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": hasDeadline})
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/stream", nil))
	assert.JSONEq(t, `{"deadline":false}`, w.Body.String())
}

func TestTimeoutLeavesWrittenResponses(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: 10 * time.Millisecond}))
	r.GET("/", func(c *gin.Context) {
		c.Status(http.StatusAccepted)
		c.Writer.WriteHeaderNow()
		time.Sleep(20 * time.Millisecond)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(SizeLimitConfig{MaxBodySize: 8}))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig("https://app.projecta.dev")))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.projecta.dev")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.projecta.dev", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoggerAttachesRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	log := logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Format: logger.FormatJSON, Output: &logs})

	r := gin.New()
	r.Use(RequestID(), Logger(log))
	r.GET("/", func(c *gin.Context) {
		logger.FromContext(c.Request.Context(), logger.Nop()).Info("inside handler")
		c.Status(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background())
	req.Header.Set(HeaderXRequestID, "rid-1")
	serve(r, req)

	assert.Contains(t, logs.String(), `"request_id":"rid-1"`)
	assert.Contains(t, logs.String(), "inside handler")
	assert.Contains(t, logs.String(), "Client error")
}
