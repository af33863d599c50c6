/*
Package metrics provides Prometheus metrics and health endpoints for iscsigw.

All metrics are registered with the default registry at init and served by
Handler:

	iscsigw_keyrings_issued_total                 auth get-or-create calls that returned a keyring
	iscsigw_tls_material_stored_total{kind}       config-key writes of crt/key material
	iscsigw_deployments_prepared_total            bundles produced by PrepareCreate
	iscsigw_dashboard_commands_total{prefix}      dashboard commands applied successfully
	iscsigw_specs_missing_total                   daemons skipped during dashboard sync
	iscsigw_reconciliation_duration_seconds       reconciler cycle duration
	iscsigw_reconciliation_cycles_total           reconciler cycles completed
	iscsigw_reconciliation_errors_total{service}  services whose dashboard sync failed
	iscsigw_events_total{type}                    events seen by the run command
	iscsigw_component_healthy{component}          1 while a component is healthy

Timer measures an operation and records it into a histogram:

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ReconciliationDuration)

# Health

Health tracks the store, the commander and the reconciler. Each reports
after its own operations: MarkHealthy clears the failure run, MarkFailed
degrades the component and turns it unhealthy after FailureThreshold
consecutive failures, and MarkDown makes it unhealthy at once.

HealthHandler returns 503 while any component is unhealthy. ReadyHandler
returns 503 until all three have reported and none is unhealthy; degraded
components still count as ready. LivenessHandler only reports that the
process answers. The package-level helpers use DefaultHealth.

	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", metrics.HealthHandler())
	mux.HandleFunc("/ready", metrics.ReadyHandler())
	mux.HandleFunc("/live", metrics.LivenessHandler())
*/
package metrics
