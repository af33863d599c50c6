package mon

import (
	"fmt"

	"github.com/cuemby/iscsigw/pkg/types"
)

// Command prefixes understood by the cluster command interface
const (
	PrefixAuthGetOrCreate      = "auth get-or-create"
	PrefixConfigKeySet         = "config-key set"
	PrefixConfigKeyGet         = "config-key get"
	PrefixOSDPoolLs            = "osd pool ls"
	PrefixDashboardGatewayList = "dashboard iscsi-gateway-list"
	PrefixDashboardGatewayAdd  = "dashboard iscsi-gateway-add"
	PrefixDashboardGatewayRm   = "dashboard iscsi-gateway-rm"
	PrefixDashboardSSLVerify   = "dashboard set-iscsi-api-ssl-verification"
)

// Return codes carried by CommandError
const (
	ENOENT = -2
	EINVAL = -22
)

// Commander sends commands to the cluster and returns their output.
// A non-zero return code is reported as a *CommandError.
type Commander interface {
	CheckMonCommand(req types.CommandRequest) (string, error)
}

// CommandError is a command that completed with a non-zero return code
type CommandError struct {
	Prefix  string
	Code    int
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed (rc=%d): %s", e.Prefix, e.Code, e.Message)
}
