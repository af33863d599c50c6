package mon

import (
	"errors"

	"github.com/cuemby/iscsigw/pkg/metrics"
	"github.com/cuemby/iscsigw/pkg/types"
)

// HealthCommander reports the commander's health after every command. A
// *CommandError is an answer from the cluster and leaves the commander
// healthy; any other error counts as a failure.
type HealthCommander struct {
	next   Commander
	health *metrics.Health
}

// WithHealth wraps next so its calls update the commander component of health
func WithHealth(next Commander, health *metrics.Health) *HealthCommander {
	return &HealthCommander{next: next, health: health}
}

// CheckMonCommand forwards req and records the outcome
func (c *HealthCommander) CheckMonCommand(req types.CommandRequest) (string, error) {
	out, err := c.next.CheckMonCommand(req)
	var cmdErr *CommandError
	if err != nil && !errors.As(err, &cmdErr) {
		c.health.MarkFailed(metrics.ComponentCommander, err)
		return out, err
	}
	c.health.MarkHealthy(metrics.ComponentCommander, req.Prefix)
	return out, err
}
