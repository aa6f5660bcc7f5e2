package plan

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/chasinandrew/cloud-foundation-fabric/internal/factory"
	planner "github.com/chasinandrew/cloud-foundation-fabric/internal/plan"
	"github.com/chasinandrew/cloud-foundation-fabric/pkg/apis/projectfactory/v1alpha1"
)

// NewCommand creates the plan command. It decodes a ProjectConfig document,
// loads any org policy factory files the config points at, runs the
// composition pass and prints the resulting operation plan.
func NewCommand() *cobra.Command {
	var (
		configFile   string
		orgPolicyDir string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compose a project configuration into a canonical operation plan",
		Long: `Compose a project configuration into a canonical operation plan.

The plan carries the merged IAM binding operations, the effective
organization policy set, and the service identity materialization
dependencies for the external provisioning layer to apply. Composition is
all-or-nothing: a configuration defect aborts the pass without output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return fmt.Errorf("reading config: %w", err)
			}

			var cfg v1alpha1.ProjectConfig
			if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
				return fmt.Errorf("parsing config: %w", err)
			}

			dir := orgPolicyDir
			if dir == "" {
				dir = cfg.Spec.OrgPoliciesDataPath
			}
			var loaded map[string]v1alpha1.OrgPolicy
			if dir != "" {
				loaded, err = factory.LoadOrgPolicies(dir)
				if err != nil {
					return err
				}
				slog.Info("loaded org policy factory files",
					slog.String("dir", dir),
					slog.Int("constraints", len(loaded)))
			}

			builder := &planner.Builder{}
			p, err := builder.Build(&cfg, loaded)
			if err != nil {
				return err
			}

			var rendered []byte
			switch output {
			case "json":
				rendered, err = json.MarshalIndent(p, "", "  ")
				if err != nil {
					return err
				}
			case "yaml":
				rendered, err = yaml.Marshal(p)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported output format %q, expected yaml or json", output)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(rendered))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "f", "", "Path to the ProjectConfig YAML document")
	cmd.Flags().StringVar(&orgPolicyDir, "org-policy-dir", "", "Directory of org policy factory files, overriding spec.orgPoliciesDataPath")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format. One of: yaml|json")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
