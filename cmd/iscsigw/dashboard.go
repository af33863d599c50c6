package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/cuemby/iscsigw/pkg/mon"
	"github.com/cuemby/iscsigw/pkg/reconciler"
	"github.com/cuemby/iscsigw/pkg/storage"
	"github.com/cuemby/iscsigw/pkg/types"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Inspect and sync the dashboard gateway registry",
}

var dashboardSyncCmd = &cobra.Command{
	Use:   "sync [SERVICE]",
	Short: "Sync the dashboard with running gateways",
	Long: `Register every running gateway with the dashboard and set the API SSL
verification flag. Without a SERVICE all iscsi services are synced.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if len(args) == 0 {
			r := reconciler.NewReconciler(e.store, e.service, e.syncer, cfg.ReconcileInterval)
			if failed := r.ReconcileOnce(); failed > 0 {
				return fmt.Errorf("%d service(s) failed to sync", failed)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Dashboard synced")
			return nil
		}

		daemons, err := e.store.ListDaemonsByService(args[0])
		if err != nil {
			return err
		}
		if err := e.service.ConfigDashboard(e.syncer, daemons); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard synced: %s (%d daemons)\n", args[0], len(daemons))
		return nil
	},
}

var dashboardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List gateways registered with the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		gateways, err := e.store.ListGateways()
		if err != nil {
			return err
		}
		verify, err := e.store.GetDashboardSetting(mon.SSLVerificationSetting)
		if errors.Is(err, storage.ErrNotFound) {
			verify = "<unset>"
		} else if err != nil {
			return err
		}

		names := make([]string, 0, len(gateways))
		for name := range gateways {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "HOST\tSERVICE URL")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\n", name, redactURL(gateways[name].ServiceURL))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nAPI SSL verification: %s\n", verify)
		return nil
	},
}

var dashboardRmCmd = &cobra.Command{
	Use:   "rm HOST",
	Short: "Remove a gateway from the dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if _, err := e.commander.CheckMonCommand(types.CommandRequest{
			Prefix: mon.PrefixDashboardGatewayRm,
			Name:   args[0],
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Gateway removed: %s\n", args[0])
		return nil
	},
}

func init() {
	dashboardCmd.AddCommand(dashboardSyncCmd)
	dashboardCmd.AddCommand(dashboardListCmd)
	dashboardCmd.AddCommand(dashboardRmCmd)
}

// redactURL hides the credentials embedded in a gateway URL. Passwords may
// hold any character, so the userinfo ends at the last '@'. Anything that is
// not scheme://... is replaced whole.
func redactURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || scheme == "" {
		return "<redacted>"
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return raw
	}
	return scheme + "://<api-user>:<api-password>@" + rest[at+1:]
}
