package metrics

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func markAllHealthy(h *Health) {
	for _, name := range requiredComponents {
		h.MarkHealthy(name, "")
	}
}

func TestHealthFailureRun(t *testing.T) {
	h := NewHealth()
	h.MarkHealthy(ComponentCommander, "local")
	assert.Equal(t, 1.0, testutil.ToFloat64(ComponentHealthy.WithLabelValues(ComponentCommander)))

	for i := 1; i < FailureThreshold; i++ {
		h.MarkFailed(ComponentCommander, errors.New("database locked"))
		comp, ok := h.Component(ComponentCommander)
		require.True(t, ok)
		assert.Equal(t, StatusDegraded, comp.Status)
		assert.Equal(t, i, comp.ConsecutiveFailures)
	}
	assert.Equal(t, 0.0, testutil.ToFloat64(ComponentHealthy.WithLabelValues(ComponentCommander)))

	h.MarkFailed(ComponentCommander, errors.New("database locked"))
	comp, _ := h.Component(ComponentCommander)
	assert.Equal(t, StatusUnhealthy, comp.Status)
	assert.Equal(t, "database locked", comp.Message)

	h.MarkHealthy(ComponentCommander, "local")
	comp, _ = h.Component(ComponentCommander)
	assert.Equal(t, StatusHealthy, comp.Status)
	assert.Zero(t, comp.ConsecutiveFailures)
}

func TestHealthReport(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(h *Health)
		expected string
	}{
		{
			name:     "all healthy",
			setup:    markAllHealthy,
			expected: StatusHealthy,
		},
		{
			name: "one failure degrades",
			setup: func(h *Health) {
				markAllHealthy(h)
				h.MarkFailed(ComponentReconciler, errors.New("1 of 2 services failed to sync"))
			},
			expected: StatusDegraded,
		},
		{
			name: "marked down",
			setup: func(h *Health) {
				markAllHealthy(h)
				h.MarkFailed(ComponentReconciler, errors.New("sync failed"))
				h.MarkDown(ComponentStore, "open failed")
			},
			expected: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealth()
			h.SetVersion("0.3.0")
			tt.setup(h)

			report := h.Report()
			assert.Equal(t, tt.expected, report.Status)
			assert.Len(t, report.Components, len(requiredComponents))
			assert.Equal(t, "0.3.0", report.Version)
			if tt.expected != StatusHealthy {
				assert.NotEmpty(t, report.Message)
			}
		})
	}
}

func TestHealthReadiness(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(h *Health)
		expected string
		message  string
	}{
		{
			name:     "all reported",
			setup:    markAllHealthy,
			expected: StatusReady,
		},
		{
			name: "reconciler has not run",
			setup: func(h *Health) {
				h.MarkHealthy(ComponentStore, "")
				h.MarkHealthy(ComponentCommander, "")
			},
			expected: StatusNotReady,
			message:  "waiting for reconciler",
		},
		{
			name: "degraded still ready",
			setup: func(h *Health) {
				markAllHealthy(h)
				h.MarkFailed(ComponentCommander, errors.New("timeout"))
			},
			expected: StatusReady,
		},
		{
			name: "store down",
			setup: func(h *Health) {
				markAllHealthy(h)
				h.MarkDown(ComponentStore, "open failed")
			},
			expected: StatusNotReady,
			message:  "store is unhealthy: open failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealth()
			tt.setup(h)

			readiness := h.Readiness()
			assert.Equal(t, tt.expected, readiness.Status)
			assert.Equal(t, tt.message, readiness.Message)
		})
	}
}

func TestHealthHandlers(t *testing.T) {
	h := NewHealth()
	h.SetVersion("dev")
	markAllHealthy(h)

	rec := httptest.NewRecorder()
	h.HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report HealthReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, StatusHealthy, report.Components[ComponentStore].Status)

	rec = httptest.NewRecorder()
	h.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h.MarkDown(ComponentReconciler, "stopped")

	rec = httptest.NewRecorder()
	h.HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealth().LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "alive", body["status"])
	assert.NotEmpty(t, body["uptime"])
}
