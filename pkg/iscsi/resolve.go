package iscsi

import (
	"fmt"

	"github.com/cuemby/iscsigw/pkg/types"
)

// ResolveSpec returns the spec a daemon deploys with. A supplied spec wins;
// without one (redeploy, reconfigure) the spec is looked up as
// "iscsi.<first token of the daemon id>". There is no default spec.
func (s *Service) ResolveSpec(supplied *types.ServiceSpec, id types.DaemonIdentity) (*types.ServiceSpec, error) {
	if supplied != nil {
		if supplied.ServiceType != TYPE {
			return nil, fmt.Errorf("%w: %q for daemon %s", ErrWrongServiceType, supplied.ServiceType, id.Name())
		}
		return supplied, nil
	}

	serviceName := TYPE + "." + id.ServiceToken()
	spec, err := s.specs.Get(serviceName)
	if err != nil {
		return nil, fmt.Errorf("daemon %s: %w", id.Name(), err)
	}
	if spec == nil {
		return nil, fmt.Errorf("daemon %s: %w: %s", id.Name(), ErrSpecNotFound, serviceName)
	}
	return spec, nil
}
