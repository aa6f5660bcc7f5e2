package version

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/component-base/version"
	"sigs.k8s.io/yaml"
)

// NewCommand creates the version command. Build metadata is stamped through
// k8s.io/component-base ldflags at release time; a plain source build reports
// the zero version with a dirty tree state.
func NewCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build and version metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			out := cmd.OutOrStdout()

			switch output {
			case "json":
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			case "yaml":
				data, err := yaml.Marshal(info)
				if err != nil {
					return err
				}
				fmt.Fprint(out, string(data))
			case "short":
				fmt.Fprintf(out, "fabric %s\n", info.GitVersion)
			case "":
				fmt.Fprintf(out, "fabric %s (commit %s, tree %s)\n", info.GitVersion, info.GitCommit, info.GitTreeState)
				fmt.Fprintf(out, "built %s with %s (%s) for %s\n", info.BuildDate, info.GoVersion, info.Compiler, info.Platform)
			default:
				return fmt.Errorf("unsupported output format %q, expected json, yaml or short", output)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format. One of: json|yaml|short")

	return cmd
}
