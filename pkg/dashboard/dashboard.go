package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cuemby/iscsigw/pkg/events"
	"github.com/cuemby/iscsigw/pkg/metrics"
	"github.com/cuemby/iscsigw/pkg/mon"
	"github.com/cuemby/iscsigw/pkg/types"
)

// Syncer applies dashboard corrections through a command interface
type Syncer struct {
	mon      mon.Commander
	observer events.Observer
}

// NewSyncer creates a syncer
func NewSyncer(commander mon.Commander, observer events.Observer) *Syncer {
	if observer == nil {
		observer = events.Discard
	}
	return &Syncer{mon: commander, observer: observer}
}

// CheckAndSet reads the current dashboard state with getCmd, asks diff to
// turn that output into corrective commands and applies them in order. A failing command does not stop
// the ones after it; all failures are returned together.
func (s *Syncer) CheckAndSet(serviceName, getCmd string, diff func(out string) ([]types.CommandRequest, error)) error {
	out, err := s.mon.CheckMonCommand(types.CommandRequest{Prefix: getCmd})
	if err != nil {
		s.emitFailure(serviceName, getCmd, err)
		return fmt.Errorf("failed to get dashboard config for %s: %w", serviceName, err)
	}

	cmds, err := diff(strings.TrimSpace(out))
	if err != nil {
		return fmt.Errorf("failed to compute dashboard changes for %s: %w", serviceName, err)
	}

	var errs []error
	for _, cmd := range cmds {
		if _, err := s.mon.CheckMonCommand(cmd); err != nil {
			s.emitFailure(serviceName, cmd.Prefix, err)
			errs = append(errs, fmt.Errorf("failed to set dashboard config for %s (%s): %w", serviceName, cmd.Prefix, err))
			continue
		}
		metrics.DashboardCommands.WithLabelValues(cmd.Prefix).Inc()
	}
	return errors.Join(errs...)
}

func (s *Syncer) emitFailure(serviceName, prefix string, err error) {
	s.observer.Emit(events.NewEvent(events.EventDashboardCommandErr, "Dashboard command failed", map[string]string{
		"service_name": serviceName,
		"prefix":       prefix,
		"error":        err.Error(),
	}))
}
