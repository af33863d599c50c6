/*
Package iscsi reconciles iSCSI gateway daemons with the cluster.

A gateway service is described by a ServiceSpec of type "iscsi". For every
gateway daemon the Service derives a deployable bundle and keeps the
dashboard's registry of gateways in line with the daemons that actually run.
Three records are involved and none of them is owned by this package:

  - the spec store (desired services)
  - the daemon inventory (what the orchestrator reports as running)
  - the dashboard gateway registry (what the dashboard talks to)

# Architecture

	┌──────────────┐     ┌─────────────────────┐     ┌───────────────────┐
	│ ResolveSpec  │────▶│ ProvisionCredentials│────▶│ PrepareCreate     │
	│ (spec store) │     │ (auth + config-key) │     │ (render + config) │
	└──────────────┘     └─────────────────────┘     └───────────────────┘

	┌──────────────────┐     ┌──────────────────┐     ┌──────────────────┐
	│ iscsi-gateway-   │────▶│ GatewayCommands  │────▶│ CheckAndSetter   │
	│ list (JSON)      │     │ (diff)           │     │ (apply in order) │
	└──────────────────┘     └──────────────────┘     └──────────────────┘

# Spec Resolution

A daemon created with an explicit spec uses it. Redeploys and reconfigures
carry no spec, so the spec is found by convention: daemon "gw1.host-a.xyz"
belongs to service "iscsi.gw1". A missing spec is an error; there is no
default.

# Credentials

Every gateway gets the identity client.iscsi.<daemon_id> with exactly these
capabilities:

	mon: profile rbd, allow command "osd blocklist",
	     allow command "config-key get" with "key" prefix "iscsi/"
	mgr: allow command "service status"
	osd: allow rwx

TLS material from the spec is written to

	iscsi/client.iscsi.<daemon_id>/iscsi-gateway.crt
	iscsi/client.iscsi.<daemon_id>/iscsi-gateway.key

certificate first. Either write is skipped when its blob is empty. A
failure aborts the bundle but does not undo earlier writes; every call is
idempotent, so the next reconciliation finishes the job.

# Dashboard Sync

GatewayCommands always starts with `dashboard set-iscsi-api-ssl-verification`.
The value is "false" only when the first daemon's spec has api_secure set and
carries both a certificate and a key. Then, for each daemon in order, the
gateway URL is built as

	http[s]://<api_user>:<api_password>@<ip>:<api_port>

with admin/admin/5000 as defaults. IPv6 addresses are written without brackets,
the way existing registrations spell them. A daemon whose
registered URL already matches is skipped. Anything else, including a missing
entry or a changed password, produces a full `dashboard iscsi-gateway-add`
with the URL in the input buffer.

A daemon without a spec is skipped with an EventSpecMissing event; the
others are still processed. Credentials never appear in events or logs:

	Adding iSCSI gateway http://<api-user>:<api-password>@10.0.0.1:5000 to Dashboard

# Usage

	svc := iscsi.NewService(iscsi.Options{
		Specs:     storage.NewSpecStore(store),
		Commander: mon.NewLocalCommander(store, cfg.Pools),
		Renderer:  template.New(cfg.TemplateDir),
		Generator: deploy.NewGenerator(cfg.FSID, cfg.MonHost),
		Resolver:  dns.NewResolver(cfg.Hosts, cfg.DNSServers),
	})

	d, err := svc.PrepareCreate(&types.DaemonDeployment{
		Identity: types.DaemonIdentity{DaemonType: "iscsi", DaemonID: "gw1.host-a"},
		Host:     "host-a",
	})

	err = svc.ConfigDashboard(dashboard.NewSyncer(commander, observer), daemons)
*/
package iscsi
