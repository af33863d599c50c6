/*
Package log provides structured logging for iscsigw using zerolog.

A single global Logger is shared by every package. It writes to stderr until
Init replaces it with the configured level and format:

	log.Init(log.Config{
		Level:      log.DebugLevel,
		JSONOutput: true,
	})

Packages derive child loggers that carry a fixed field:

	logger := log.WithComponent("iscsi")
	logger.Info().Str("service_name", "iscsi.gw1").Msg("saving service spec")

	log.WithDaemon("iscsi.gw1.x").Warn().Msg("no spec")

Console output (the default) is meant for a terminal; JSON output is one
object per line:

	{"level":"info","component":"reconciler","service_name":"iscsi.gw1","time":"...","message":"syncing dashboard"}

Gateway API credentials are never logged. Dashboard URLs are written with
<api-user> and <api-password> in place of the real values.
*/
package log
