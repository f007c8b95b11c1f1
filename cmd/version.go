package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assetforge/assetforge/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE:  runVersion,
}

var versionDetailed bool

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVarP(&versionDetailed, "detailed", "d", false, "Show detailed build information")
}

func runVersion(cmd *cobra.Command, args []string) error {
	if versionDetailed {
		fmt.Println(version.GetDetailedVersion())
	} else {
		fmt.Printf("assetforge %s\n", version.GetShortVersion())
	}
	return nil
}
