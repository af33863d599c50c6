/*
Package reconciler keeps the dashboard in sync with running gateways.

Every interval (10 seconds unless configured) the reconciler lists the
iscsi specs in the store, collects the daemons of each service and calls
ConfigDashboard for it. One service failing does not stop the others; the
failure is logged and counted in iscsigw_reconciliation_errors_total.

After each cycle the reconciler reports to metrics.DefaultHealth: the
reconciler component is healthy when every service synced and failed
otherwise, and the store component follows the spec listing. Stop marks
the reconciler down.

	r := reconciler.NewReconciler(store, svc, syncer, 30*time.Second)
	r.Start()
	defer r.Stop()

A cycle runs immediately on Start. ReconcileOnce runs a single cycle
synchronously and is what the `dashboard sync` command uses.
*/
package reconciler
