package main

import (
	"os"

	"github.com/spf13/cobra"
	"k8s.io/component-base/cli"

	"github.com/chasinandrew/cloud-foundation-fabric/cmd/fabric/plan"
	"github.com/chasinandrew/cloud-foundation-fabric/cmd/fabric/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fabric",
		Short: "Fabric composes IAM bindings, organization policies and service identity references for a cloud resource container into one canonical operation plan.",
	}

	rootCmd.AddCommand(plan.NewCommand())
	rootCmd.AddCommand(version.NewCommand())

	code := cli.Run(rootCmd)
	os.Exit(code)
}
