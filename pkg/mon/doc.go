/*
Package mon is the cluster command interface.

A Commander executes one CommandRequest and returns its output. Failures
reported by the command itself come back as *CommandError carrying the
prefix and a negative errno, so callers can tell a rejected command from a
transport problem:

	var cmdErr *mon.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == mon.EINVAL {
		...
	}

LocalCommander answers the commands iscsigw sends from a storage.Store:

	auth get-or-create                      keyring for an entity; caps must match an existing entity
	config-key set / config-key get         raw key/value storage
	osd pool ls                             configured pools, plain or json
	dashboard iscsi-gateway-list            {"gateways": {host: {"service_url": ...}}}
	dashboard iscsi-gateway-add             URL in the input buffer, name defaults to the URL host
	dashboard iscsi-gateway-rm              remove a registered gateway
	dashboard set-iscsi-api-ssl-verification  "true" or "false"

WithHealth wraps a Commander so every call reports the commander component
to a metrics.Health. Transport errors count as failures; a *CommandError is
the cluster answering and keeps the commander healthy.
*/
package mon
