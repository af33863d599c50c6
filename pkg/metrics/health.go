package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Components tracked by the gateway's health endpoints
const (
	ComponentStore      = "store"
	ComponentCommander  = "commander"
	ComponentReconciler = "reconciler"
)

// Health states. A component is degraded after a failure and unhealthy once
// it has failed FailureThreshold times in a row or was marked down.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusReady     = "ready"
	StatusNotReady  = "not_ready"
)

// FailureThreshold is the run of consecutive failures that turns a degraded
// component unhealthy
const FailureThreshold = 3

// requiredComponents gate readiness
var requiredComponents = []string{ComponentStore, ComponentCommander, ComponentReconciler}

// ComponentStatus is the last reported state of one component
type ComponentStatus struct {
	Status              string    `json:"status"`
	Message             string    `json:"message,omitempty"`
	Updated             time.Time `json:"updated"`
	ConsecutiveFailures int       `json:"consecutive_failures,omitempty"`
}

// HealthReport is the body served by /health and /ready
type HealthReport struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentStatus `json:"components,omitempty"`
	Message    string                     `json:"message,omitempty"`
	Version    string                     `json:"version,omitempty"`
	Uptime     string                     `json:"uptime,omitempty"`
}

// Health collects component status reported by the store, the commander and
// the reconciler
type Health struct {
	mu         sync.RWMutex
	components map[string]ComponentStatus
	started    time.Time
	version    string
}

// NewHealth returns an empty Health with its uptime starting now
func NewHealth() *Health {
	return &Health{
		components: make(map[string]ComponentStatus),
		started:    time.Now(),
	}
}

// DefaultHealth backs the package-level helpers and handlers
var DefaultHealth = NewHealth()

// SetVersion sets the version reported by the health endpoints
func (h *Health) SetVersion(version string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.version = version
}

// MarkHealthy records a successful operation and clears the failure run
func (h *Health) MarkHealthy(component, message string) {
	h.update(component, func(ComponentStatus) ComponentStatus {
		return ComponentStatus{Status: StatusHealthy, Message: message}
	})
}

// MarkFailed records a failed operation
func (h *Health) MarkFailed(component string, err error) {
	h.update(component, func(prev ComponentStatus) ComponentStatus {
		failures := prev.ConsecutiveFailures + 1
		status := StatusDegraded
		if failures >= FailureThreshold {
			status = StatusUnhealthy
		}
		return ComponentStatus{Status: status, Message: err.Error(), ConsecutiveFailures: failures}
	})
}

// MarkDown marks a component unhealthy without waiting for repeated failures
func (h *Health) MarkDown(component, message string) {
	h.update(component, func(prev ComponentStatus) ComponentStatus {
		return ComponentStatus{Status: StatusUnhealthy, Message: message, ConsecutiveFailures: prev.ConsecutiveFailures + 1}
	})
}

func (h *Health) update(component string, next func(prev ComponentStatus) ComponentStatus) {
	h.mu.Lock()
	status := next(h.components[component])
	status.Updated = time.Now()
	h.components[component] = status
	h.mu.Unlock()

	healthy := 0.0
	if status.Status == StatusHealthy {
		healthy = 1
	}
	ComponentHealthy.WithLabelValues(component).Set(healthy)
}

// Component returns the last status of a component
func (h *Health) Component(component string) (ComponentStatus, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	status, ok := h.components[component]
	return status, ok
}

// Report summarizes every component. One unhealthy component makes the whole
// gateway unhealthy; otherwise any degraded one makes it degraded.
func (h *Health) Report() HealthReport {
	h.mu.RLock()
	defer h.mu.RUnlock()

	report := h.newReport(StatusHealthy)
	for name, comp := range h.components {
		report.Components[name] = comp
		switch {
		case comp.Status == StatusUnhealthy:
			report.Status = StatusUnhealthy
			report.Message = name + ": " + comp.Message
		case comp.Status == StatusDegraded && report.Status == StatusHealthy:
			report.Status = StatusDegraded
			report.Message = name + ": " + comp.Message
		}
	}
	return report
}

// Readiness reports ready once every required component has reported and
// none of them is unhealthy. Degraded components still serve.
func (h *Health) Readiness() HealthReport {
	h.mu.RLock()
	defer h.mu.RUnlock()

	report := h.newReport(StatusReady)
	for _, name := range requiredComponents {
		comp, ok := h.components[name]
		if !ok {
			report.Status = StatusNotReady
			report.Message = "waiting for " + name
			continue
		}
		report.Components[name] = comp
		if comp.Status == StatusUnhealthy {
			report.Status = StatusNotReady
			report.Message = name + " is unhealthy: " + comp.Message
		}
	}
	return report
}

func (h *Health) newReport(status string) HealthReport {
	return HealthReport{
		Status:     status,
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentStatus),
		Version:    h.version,
		Uptime:     time.Since(h.started).String(),
	}
}

// HealthHandler serves Report, with 503 while the gateway is unhealthy
func (h *Health) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := h.Report()
		writeJSON(w, report.Status != StatusUnhealthy, report)
	}
}

// ReadyHandler serves Readiness, with 503 until ready
func (h *Health) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := h.Readiness()
		writeJSON(w, report.Status == StatusReady, report)
	}
}

// LivenessHandler answers 200 as long as the process serves HTTP
func (h *Health) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.RLock()
		uptime := time.Since(h.started).String()
		h.mu.RUnlock()
		writeJSON(w, true, map[string]string{"status": "alive", "uptime": uptime})
	}
}

func writeJSON(w http.ResponseWriter, ok bool, body any) {
	w.Header().Set("Content-Type", "application/json")
	code := http.StatusOK
	if !ok {
		code = http.StatusServiceUnavailable
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// SetVersion sets the version on DefaultHealth
func SetVersion(version string) { DefaultHealth.SetVersion(version) }

// MarkHealthy records success on DefaultHealth
func MarkHealthy(component, message string) { DefaultHealth.MarkHealthy(component, message) }

// MarkDown marks a component down on DefaultHealth
func MarkDown(component, message string) { DefaultHealth.MarkDown(component, message) }

// HealthHandler serves DefaultHealth's report
func HealthHandler() http.HandlerFunc { return DefaultHealth.HealthHandler() }

// ReadyHandler serves DefaultHealth's readiness
func ReadyHandler() http.HandlerFunc { return DefaultHealth.ReadyHandler() }

// LivenessHandler serves liveness for DefaultHealth
func LivenessHandler() http.HandlerFunc { return DefaultHealth.LivenessHandler() }
