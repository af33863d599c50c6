package reconciler

import (
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/iscsigw/pkg/iscsi"
	"github.com/cuemby/iscsigw/pkg/log"
	"github.com/cuemby/iscsigw/pkg/metrics"
	"github.com/cuemby/iscsigw/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultInterval is used when no interval is configured
const DefaultInterval = 10 * time.Second

// Inventory lists desired services and the daemons running for them
type Inventory interface {
	ListSpecs() ([]*types.ServiceSpec, error)
	ListDaemonsByService(serviceName string) ([]*types.DaemonDescription, error)
}

// DashboardConfigurer brings the dashboard in line with a service's daemons
type DashboardConfigurer interface {
	ConfigDashboard(syncer iscsi.CheckAndSetter, daemons []*types.DaemonDescription) error
}

// Reconciler periodically syncs the dashboard with every iscsi service
type Reconciler struct {
	inventory Inventory
	service   DashboardConfigurer
	syncer    iscsi.CheckAndSetter
	interval  time.Duration
	health    *metrics.Health
	logger    zerolog.Logger

	mu       sync.Mutex
	stopCh   chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
}

// NewReconciler creates a new reconciler
func NewReconciler(inventory Inventory, service DashboardConfigurer, syncer iscsi.CheckAndSetter, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reconciler{
		inventory: inventory,
		service:   service,
		syncer:    syncer,
		interval:  interval,
		health:    metrics.DefaultHealth,
		logger:    log.WithComponent("reconciler"),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the reconciliation loop
func (r *Reconciler) Start() {
	go r.run()
}

// Stop stops the loop and waits for the running cycle to finish
func (r *Reconciler) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.doneCh
	r.health.MarkDown(metrics.ComponentReconciler, "stopped")
}

func (r *Reconciler) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.ReconcileOnce()
	for {
		select {
		case <-ticker.C:
			r.ReconcileOnce()
		case <-r.stopCh:
			return
		}
	}
}

// ReconcileOnce runs one cycle over all iscsi services. It returns the
// number of services whose sync failed. A failure to list specs counts as one
// and is charged to the store as well as the reconciler.
func (r *Reconciler) ReconcileOnce() int {
	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.ReconciliationDuration)
		metrics.ReconciliationCyclesTotal.Inc()
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	specs, err := r.inventory.ListSpecs()
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list specs")
		r.health.MarkFailed(metrics.ComponentStore, err)
		r.health.MarkFailed(metrics.ComponentReconciler, err)
		return 1
	}
	r.health.MarkHealthy(metrics.ComponentStore, "specs listed")

	synced, failed := 0, 0
	for _, spec := range specs {
		if spec.ServiceType != types.ServiceTypeISCSI {
			continue
		}
		synced++
		if err := r.reconcileService(spec.ServiceName()); err != nil {
			failed++
			metrics.ReconciliationErrors.WithLabelValues(spec.ServiceName()).Inc()
			r.logger.Error().Err(err).Str("service_name", spec.ServiceName()).Msg("dashboard sync failed")
		}
	}

	if failed > 0 {
		r.health.MarkFailed(metrics.ComponentReconciler, fmt.Errorf("%d of %d services failed to sync", failed, synced))
	} else {
		r.health.MarkHealthy(metrics.ComponentReconciler, fmt.Sprintf("%d services synced", synced))
	}
	return failed
}

func (r *Reconciler) reconcileService(serviceName string) error {
	daemons, err := r.inventory.ListDaemonsByService(serviceName)
	if err != nil {
		return fmt.Errorf("failed to list daemons: %w", err)
	}
	r.logger.Debug().
		Str("service_name", serviceName).
		Int("daemons", len(daemons)).
		Msg("syncing dashboard")
	return r.service.ConfigDashboard(r.syncer, daemons)
}
