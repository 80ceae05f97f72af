package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes func(e *echo.Echo)

func (r routes) RegisterRoutes(e *echo.Echo) { r(e) }

func serve(s *Server, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	s := NewServer(nil, WithMetricsPath(""))
	rec := serve(s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_ReadyReportsFailingCheck(t *testing.T) {
	s := NewServer(nil, WithMetricsPath(""), WithHealthChecks(
		HealthCheck{Name: "cache", Check: func() error { return nil }},
		HealthCheck{Name: "audit", Check: func() error { return errors.New("down") }},
	))
	rec := serve(s, http.MethodGet, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, map[string]string{"cache": "ok", "audit": "down"}, body.Checks)
}

func TestServer_ErrorShape(t *testing.T) {
	s := NewServer(routes(func(e *echo.Echo) {
		e.GET("/bad", func(c echo.Context) error {
			return BadRequestError("model is required").WithField("model")
		})
		e.GET("/oops", func(c echo.Context) error { return errors.New("boom") })
	}), WithMetricsPath(""))

	rec := serve(s, http.MethodGet, "/bad")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"model is required","code":"ERR_BAD_REQUEST","field":"model"}`, rec.Body.String())

	rec = serve(s, http.MethodGet, "/oops")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Something went wrong","code":"ERR_INTERNAL"}`, rec.Body.String())

	rec = serve(s, http.MethodGet, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found","code":"ERR_NOT_FOUND"}`, rec.Body.String())
}

func TestServer_BodyLimit(t *testing.T) {
	s := NewServer(routes(func(e *echo.Echo) {
		e.POST("/predict", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	}), WithMetricsPath(""), WithBodyLimit("1K"))

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(strings.Repeat("1,", 1024)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ERR_TOO_LARGE", body["code"])

	req = httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"closing_prices":[1,2,3]}`))
	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServer_RateLimitSkipsHealth(t *testing.T) {
	s := NewServer(routes(func(e *echo.Echo) {
		e.GET("/models", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	}), WithMetricsPath(""), WithServerRateLimit(0.001, 1))

	assert.Equal(t, http.StatusNoContent, serve(s, http.MethodGet, "/models").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(s, http.MethodGet, "/models").Code)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/health").Code)
	}
}
