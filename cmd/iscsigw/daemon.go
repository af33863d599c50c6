package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/cuemby/iscsigw/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage gateway daemons",
}

var daemonAddCmd = &cobra.Command{
	Use:   "add DAEMON_ID --host HOST",
	Short: "Record a running gateway daemon",
	Long: `Record a gateway daemon as running on a host. The daemon id must start
with the service id, e.g. "gw1.host-a" belongs to service iscsi.gw1.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")

		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		dd := &types.DaemonDescription{DaemonType: types.DaemonTypeISCSI, DaemonID: args[0], Hostname: host}
		if err := e.store.SaveDaemon(dd); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Daemon added: %s on %s\n", dd.Name(), host)
		return nil
	},
}

var daemonListCmd = &cobra.Command{
	Use:   "list",
	Short: "List gateway daemons",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		daemons, err := e.store.ListDaemons()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSERVICE\tHOST")
		for _, dd := range daemons {
			fmt.Fprintf(w, "%s\t%s\t%s\n", dd.Name(), dd.ServiceName(), dd.Hostname)
		}
		return w.Flush()
	},
}

var daemonRmCmd = &cobra.Command{
	Use:   "rm DAEMON_ID",
	Short: "Forget a gateway daemon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		id := types.DaemonIdentity{DaemonType: types.DaemonTypeISCSI, DaemonID: args[0]}
		if err := e.store.DeleteDaemon(id.Name()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Daemon removed: %s\n", id.Name())
		return nil
	},
}

var daemonDeployCmd = &cobra.Command{
	Use:   "deploy DAEMON_ID",
	Short: "Prepare a gateway deployment and print it as YAML",
	Long: `Resolve the daemon's spec, issue its keyring, store its TLS material and
render iscsi-gateway.cfg. The resulting bundle is printed as YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")

		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		d, err := e.service.PrepareCreate(&types.DaemonDeployment{
			Identity: types.DaemonIdentity{DaemonType: types.DaemonTypeISCSI, DaemonID: args[0]},
			Host:     host,
		})
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to encode deployment: %w", err)
		}
		return enc.Close()
	},
}

func init() {
	daemonCmd.AddCommand(daemonAddCmd)
	daemonCmd.AddCommand(daemonListCmd)
	daemonCmd.AddCommand(daemonRmCmd)
	daemonCmd.AddCommand(daemonDeployCmd)

	daemonAddCmd.Flags().String("host", "", "Host the daemon runs on (required)")
	_ = daemonAddCmd.MarkFlagRequired("host")

	daemonDeployCmd.Flags().String("host", "", "Target host")
}
