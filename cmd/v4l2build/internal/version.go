package internal

import (
	"fmt"

	"github.com/goplus/v4l2build/internal/env"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "v4l2build", env.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
