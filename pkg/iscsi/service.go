package iscsi

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/cuemby/iscsigw/pkg/events"
	"github.com/cuemby/iscsigw/pkg/log"
	"github.com/cuemby/iscsigw/pkg/mon"
	"github.com/cuemby/iscsigw/pkg/types"
	"github.com/rs/zerolog"
)

const (
	// TYPE is both the service type and the daemon type handled here
	TYPE = types.ServiceTypeISCSI

	gatewayTemplate   = "services/iscsi/iscsi-gateway.cfg"
	gatewayConfigFile = "iscsi-gateway.cfg"
	certSuffix        = "iscsi-gateway.crt"
	keySuffix         = "iscsi-gateway.key"
)

// SpecStore is the orchestrator's record of desired service specs.
// Get returns (nil, nil) when no spec exists under serviceName.
type SpecStore interface {
	Get(serviceName string) (*types.ServiceSpec, error)
	All() (map[string]*types.ServiceSpec, error)
	Save(spec *types.ServiceSpec) error
}

// Renderer renders a named template with a context
type Renderer interface {
	Render(name string, ctx map[string]any) (string, error)
}

// ConfigGenerator produces a daemon's final config and dependency list
type ConfigGenerator interface {
	Generate(d *types.DaemonDeployment) (map[string]any, []string, error)
}

// HostResolver maps a hostname to the IP the dashboard should use
type HostResolver interface {
	ResolveIP(hostname string) string
}

// Options wires a Service to its collaborators
type Options struct {
	Specs     SpecStore
	Commander mon.Commander
	Renderer  Renderer
	Generator ConfigGenerator
	Resolver  HostResolver

	// Observer receives reconciliation events. Defaults to a LogObserver.
	Observer events.Observer
}

// Service reconciles iSCSI gateway daemons with the spec store,
// the auth authority and the dashboard
type Service struct {
	specs     SpecStore
	mon       mon.Commander
	renderer  Renderer
	generator ConfigGenerator
	resolver  HostResolver
	observer  events.Observer
	logger    zerolog.Logger
}

// NewService creates an iscsi service
func NewService(opts Options) *Service {
	logger := log.WithComponent("iscsi")
	observer := opts.Observer
	if observer == nil {
		observer = events.LogObserver{Logger: logger}
	}
	return &Service{
		specs:     opts.Specs,
		mon:       opts.Commander,
		renderer:  opts.Renderer,
		generator: opts.Generator,
		resolver:  opts.Resolver,
		observer:  observer,
		logger:    logger,
	}
}

// Config validates spec, checks its pool exists and saves it to the spec store
func (s *Service) Config(spec *types.ServiceSpec) error {
	if spec.ServiceType != TYPE {
		return fmt.Errorf("%w: %q", ErrWrongServiceType, spec.ServiceType)
	}
	if spec.Pool == "" {
		return fmt.Errorf("%s: %w", spec.ServiceName(), ErrNoPool)
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	if err := s.checkPoolExists(spec.Pool, spec.ServiceName()); err != nil {
		return err
	}

	s.logger.Info().
		Str("service_name", spec.ServiceName()).
		Str("placement", spec.Placement.String()).
		Msg("saving service spec")

	if err := s.specs.Save(spec); err != nil {
		return fmt.Errorf("failed to save spec %s: %w", spec.ServiceName(), err)
	}

	s.observer.Emit(events.NewEvent(events.EventSpecSaved, "Saved service spec", map[string]string{
		"service_name": spec.ServiceName(),
	}))
	return nil
}

func (s *Service) checkPoolExists(pool, serviceName string) error {
	out, err := s.mon.CheckMonCommand(types.CommandRequest{Prefix: mon.PrefixOSDPoolLs, Format: "json"})
	if err != nil {
		return fmt.Errorf("failed to list pools: %w", err)
	}
	var pools []string
	if err := json.Unmarshal([]byte(out), &pools); err != nil {
		return fmt.Errorf("failed to decode pool list: %w", err)
	}
	if !slices.Contains(pools, pool) {
		return fmt.Errorf("cannot find pool %q for service %s: %w", pool, serviceName, ErrPoolNotFound)
	}
	return nil
}

// configSection maps a daemon name to its cluster config section.
// Gateway-style daemons authenticate as clients.
func configSection(name string) string {
	daemonType, _, _ := strings.Cut(name, ".")
	switch daemonType {
	case "rgw", "rbd-mirror", "nfs", "crash", "iscsi":
		return "client." + name
	case "mon", "osd", "mds", "mgr", "client":
		return name
	default:
		return "mon"
	}
}

// clientName returns the scoped client identity, e.g. client.iscsi.gw1.x
func clientName(daemonID string) string {
	return configSection(TYPE) + "." + daemonID
}
