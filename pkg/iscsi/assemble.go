package iscsi

import (
	"fmt"

	"github.com/cuemby/iscsigw/pkg/events"
	"github.com/cuemby/iscsigw/pkg/metrics"
	"github.com/cuemby/iscsigw/pkg/types"
)

// PrepareCreate fills in with everything needed to deploy one gateway:
// the resolved spec, a keyring, the rendered iscsi-gateway.cfg, the final
// config and its dependency list. Any failing step aborts the whole bundle
// and leaves in untouched; on success in is updated and returned.
func (s *Service) PrepareCreate(in *types.DaemonDeployment) (*types.DaemonDeployment, error) {
	if in.Identity.DaemonType != TYPE {
		return nil, fmt.Errorf("%w: %q", ErrWrongDaemonType, in.Identity.DaemonType)
	}

	spec, err := s.ResolveSpec(in.Spec, in.Identity)
	if err != nil {
		return nil, err
	}
	d := *in
	d.Spec = spec

	daemonID := d.Identity.DaemonID
	keyring, err := s.ProvisionCredentials(spec, daemonID)
	if err != nil {
		return nil, err
	}

	ctx := map[string]any{
		"client_name": clientName(daemonID),
		"spec":        spec,
	}
	conf, err := s.renderer.Render(gatewayTemplate, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s for %s: %w", gatewayConfigFile, d.Identity.Name(), err)
	}

	d.Keyring = keyring
	d.ExtraFiles = map[string]string{gatewayConfigFile: conf}

	d.FinalConfig, d.Deps, err = s.generator.Generate(&d)
	if err != nil {
		return nil, fmt.Errorf("failed to generate config for %s: %w", d.Identity.Name(), err)
	}

	metrics.DeploymentsPrepared.Inc()
	s.observer.Emit(events.NewEvent(events.EventDeploymentPrepared, "Prepared gateway deployment", map[string]string{
		"daemon":       d.Identity.Name(),
		"service_name": spec.ServiceName(),
		"host":         d.Host,
	}))
	*in = d
	return in, nil
}
