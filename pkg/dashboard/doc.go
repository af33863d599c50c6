/*
Package dashboard applies corrective commands to the dashboard.

Syncer.CheckAndSet reads the dashboard's current state with one command,
hands the output to a diff function and runs whatever commands come back,
in order. A failed command is reported as an EventDashboardCommandErr and
the remaining commands still run; the failures are joined into one error.
*/
package dashboard
