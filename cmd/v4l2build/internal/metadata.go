package internal

import (
	"errors"
	"path/filepath"

	"github.com/goplus/v4l2build/internal/artifact"
	"github.com/goplus/v4l2build/internal/env"
	"github.com/goplus/v4l2build/internal/errs"
	"github.com/goplus/v4l2build/internal/logger"
	"github.com/spf13/cobra"
)

var (
	metadataOutDir string
	metadataFormat string
)

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Print the link metadata of the last build",
	Args:  cobra.NoArgs,
	RunE:  runMetadata,
}

func init() {
	metadataCmd.Flags().StringVar(&metadataOutDir, "out-dir", "", "Output directory of the build (default $"+env.OutDirVar+"/v4l2-build)")
	metadataCmd.Flags().StringVar(&metadataFormat, "format", artifact.Cargo, "Metadata format: cargo or cgo")
	rootCmd.AddCommand(metadataCmd)
}

func runMetadata(cmd *cobra.Command, args []string) error {
	out := metadataOutDir
	if out == "" {
		if vars := env.FromEnviron(); vars.OutDir != "" {
			out = filepath.Join(vars.OutDir, "v4l2-build")
		}
	}
	if out == "" {
		return errs.ConfigMissing("out dir")
	}
	a, rec, err := artifact.Load(filepath.Join(out, "install"))
	if err != nil {
		if errors.Is(err, errs.ErrIO) {
			return errs.InPhase("reading build record", err)
		}
		return err
	}
	logger.Info("msg", "last build", "target", rec.Target, "upstream", rec.Upstream, "built", rec.BuildTime)
	return artifact.Emit(cmd.OutOrStdout(), a, metadataFormat)
}
