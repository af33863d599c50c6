package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cuemby/iscsigw/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Manage iSCSI service specs",
}

var specApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply service specs from a YAML file",
	Long: `Apply one or more iSCSI service specs from a YAML file.
Documents are separated by "---"; each is validated and its pool checked
before it is saved.

Examples:
  # Apply a gateway service
  iscsigw spec apply -f iscsi.yaml`,
	RunE: runSpecApply,
}

var specListCmd = &cobra.Command{
	Use:   "list",
	Short: "List service specs",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		specs, err := e.store.ListSpecs()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPOOL\tAPI PORT\tSECURE\tPLACEMENT")
		for _, spec := range specs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%s\n",
				spec.ServiceName(), spec.Pool, spec.APIPort, spec.SecureAPI(), spec.Placement.String())
		}
		return w.Flush()
	},
}

var specRmCmd = &cobra.Command{
	Use:   "rm SERVICE",
	Short: "Remove a service spec",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if _, err := e.store.GetSpec(args[0]); err != nil {
			return err
		}
		if err := e.store.DeleteSpec(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Spec removed: %s\n", args[0])
		return nil
	},
}

func init() {
	specCmd.AddCommand(specApplyCmd)
	specCmd.AddCommand(specListCmd)
	specCmd.AddCommand(specRmCmd)

	specApplyCmd.Flags().StringP("file", "f", "", "YAML file to apply (required)")
	_ = specApplyCmd.MarkFlagRequired("file")
}

func runSpecApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()

	specs, err := decodeSpecs(f)
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	for _, spec := range specs {
		if err := e.service.Config(spec); err != nil {
			return fmt.Errorf("failed to apply %s: %w", spec.ServiceName(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Spec applied: %s\n", spec.ServiceName())
	}
	return nil
}

// decodeSpecs reads every YAML document from r
func decodeSpecs(r io.Reader) ([]*types.ServiceSpec, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var specs []*types.ServiceSpec
	for {
		var spec types.ServiceSpec
		err := dec.Decode(&spec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		specs = append(specs, &spec)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no specs found")
	}
	return specs, nil
}
