package internal

import (
	"os"

	"github.com/goplus/v4l2build/internal/errs"
	"github.com/goplus/v4l2build/internal/logger"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "v4l2build",
	Short: "v4l2build builds the vendored v4l-utils libraries",
	Long: `v4l2build stages the vendored v4l-utils tree, compiles libv4l2, libv4lconvert
and libv4l1 as static libraries, generates bindings for their public headers
and prints the link metadata for the host build.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetLevel(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error or all")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if phase := errs.Phase(err); phase != "" {
			logger.Error("msg", "build failed", "phase", phase, "err", err)
		} else {
			logger.Error("msg", "failed", "err", err)
		}
		os.Exit(1)
	}
}
