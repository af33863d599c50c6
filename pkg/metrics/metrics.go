package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Credential metrics
	KeyringsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "iscsigw_keyrings_issued_total",
			Help: "Total number of gateway keyrings requested from the auth authority",
		},
	)

	TLSMaterialStored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iscsigw_tls_material_stored_total",
			Help: "Total number of TLS config-key writes by kind (crt, key)",
		},
		[]string{"kind"},
	)

	DeploymentsPrepared = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "iscsigw_deployments_prepared_total",
			Help: "Total number of gateway deployment bundles prepared",
		},
	)

	// Dashboard metrics
	DashboardCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iscsigw_dashboard_commands_total",
			Help: "Total number of dashboard commands emitted by prefix",
		},
		[]string{"prefix"},
	)

	SpecsMissing = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "iscsigw_specs_missing_total",
			Help: "Daemons skipped during dashboard sync because no spec was found",
		},
	)

	// Reconciler metrics
	ReconciliationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "iscsigw_reconciliation_duration_seconds",
			Help:    "Time taken for a dashboard reconciliation cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReconciliationCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "iscsigw_reconciliation_cycles_total",
			Help: "Total number of reconciliation cycles completed",
		},
	)

	ReconciliationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iscsigw_reconciliation_errors_total",
			Help: "Total number of failed service reconciliations by service",
		},
		[]string{"service"},
	)

	// EventsTotal counts events seen by the run command's broker
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iscsigw_events_total",
			Help: "Reconciliation events by type",
		},
		[]string{"type"},
	)

	// ComponentHealthy mirrors the health endpoints: 1 while healthy
	ComponentHealthy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "iscsigw_component_healthy",
			Help: "Whether a component (store, commander, reconciler) is healthy",
		},
		[]string{"component"},
	)
)

func init() {
	prometheus.MustRegister(KeyringsIssued)
	prometheus.MustRegister(TLSMaterialStored)
	prometheus.MustRegister(DeploymentsPrepared)
	prometheus.MustRegister(DashboardCommands)
	prometheus.MustRegister(SpecsMissing)
	prometheus.MustRegister(ReconciliationDuration)
	prometheus.MustRegister(ReconciliationCyclesTotal)
	prometheus.MustRegister(ReconciliationErrors)
	prometheus.MustRegister(EventsTotal)
	prometheus.MustRegister(ComponentHealthy)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
