package internal

import (
	"context"

	"github.com/goplus/v4l2build/internal/artifact"
	"github.com/goplus/v4l2build/internal/build"
	"github.com/goplus/v4l2build/internal/env"
	"github.com/spf13/cobra"
)

var (
	buildOpts   buildFlags
	buildFormat string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the libraries and print link metadata",
	Long: `Build stages the vendored tree, compiles the static libraries, generates
bindings, installs everything below <out-dir>/install and prints the link
directives for the host build on stdout.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildOpts.register(buildCmd)
	buildCmd.Flags().StringVar(&buildFormat, "format", artifact.Cargo, "Metadata format: cargo or cgo")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	b := build.New(buildOpts.config(env.FromEnviron()))
	res, err := b.Build(context.Background())
	if err != nil {
		return err
	}
	return artifact.Emit(cmd.OutOrStdout(), res.Artifacts, buildFormat)
}
