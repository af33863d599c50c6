package main

import (
	"fmt"
	"os"

	"github.com/cuemby/iscsigw/pkg/config"
	"github.com/cuemby/iscsigw/pkg/dashboard"
	"github.com/cuemby/iscsigw/pkg/deploy"
	"github.com/cuemby/iscsigw/pkg/dns"
	"github.com/cuemby/iscsigw/pkg/events"
	"github.com/cuemby/iscsigw/pkg/iscsi"
	"github.com/cuemby/iscsigw/pkg/log"
	"github.com/cuemby/iscsigw/pkg/metrics"
	"github.com/cuemby/iscsigw/pkg/mon"
	"github.com/cuemby/iscsigw/pkg/storage"
	"github.com/cuemby/iscsigw/pkg/template"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "iscsigw",
	Short: "iscsigw - iSCSI gateway reconciliation",
	Long: `iscsigw prepares iSCSI gateway deployments and keeps the dashboard's
gateway registry in line with the gateways that are actually running.

Specs, daemons, keyrings, config-keys and the dashboard registry are kept
in a local bbolt database under the data directory.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("data-dir") {
			loaded.DataDir, _ = cmd.Flags().GetString("data-dir")
		}
		if cmd.Flags().Changed("log-level") {
			level, _ := cmd.Flags().GetString("log-level")
			loaded.LogLevel = log.ParseLevel(level)
		}
		cfg = loaded
		log.Init(cfg.LogConfig())
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"iscsigw version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("config", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(specCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(runCmd)
}

// env is everything a command needs, opened from cfg
type env struct {
	store     *storage.BoltStore
	commander mon.Commander
	service   *iscsi.Service
	syncer    *dashboard.Syncer
}

// openEnv opens the store and wires the service. Extra observers receive
// every event alongside the log.
func openEnv(extra ...events.Observer) (*env, error) {
	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	observer := append(events.Multi{events.LogObserver{Logger: log.WithComponent("events")}}, extra...)
	commander := mon.WithHealth(mon.NewLocalCommander(store, cfg.Pools), metrics.DefaultHealth)
	service := iscsi.NewService(iscsi.Options{
		Specs:     storage.NewSpecStore(store),
		Commander: commander,
		Renderer:  template.New(cfg.TemplateDir),
		Generator: deploy.NewGenerator(cfg.FSID, cfg.MonHost),
		Resolver:  dns.NewResolver(cfg.Hosts, cfg.DNSServers),
		Observer:  observer,
	})

	return &env{
		store:     store,
		commander: commander,
		service:   service,
		syncer:    dashboard.NewSyncer(commander, observer),
	}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}
