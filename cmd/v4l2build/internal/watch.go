package internal

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/goplus/v4l2build/internal/build"
	"github.com/goplus/v4l2build/internal/env"
	"github.com/goplus/v4l2build/internal/logger"
	"github.com/goplus/v4l2build/internal/watcher"
	"github.com/goplus/v4l2build/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	watchOpts  buildFlags
	watchQuiet time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild whenever the vendored tree changes",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchOpts.register(watchCmd)
	watchCmd.Flags().DurationVar(&watchQuiet, "quiet", 500*time.Millisecond, "Wait for this long without changes before rebuilding")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := watchOpts.config(env.FromEnviron())
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w, err := watcher.Start(cfg.SourceDir, workspace.VCSDir)
	if err != nil {
		return err
	}
	defer w.Close()

	rebuild := func() {
		if _, err := build.New(cfg).Build(context.Background()); err != nil {
			logger.Error("msg", "build failed", "err", err)
			return
		}
		logger.Info("msg", "build succeeded", "out", cfg.OutDir)
	}
	rebuild()

	batches := watcher.Debounce(w.Changes(), watchQuiet)
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			logger.Info("msg", "vendored tree changed", "files", len(batch))
			rebuild()
		}
	}
}
