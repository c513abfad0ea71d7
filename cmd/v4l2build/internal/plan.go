package internal

import (
	"fmt"
	"path/filepath"

	"github.com/goplus/v4l2build/internal/build"
	"github.com/goplus/v4l2build/internal/env"
	"github.com/spf13/cobra"
)

var planOpts buildFlags

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the compilation units without building",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	planOpts.register(planCmd)
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg := planOpts.config(env.FromEnviron())
	p, err := build.New(cfg).Plan()
	if err != nil {
		return err
	}
	root, err := filepath.Abs(cfg.SourceDir)
	if err != nil {
		return fmt.Errorf("failed to resolve source dir: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "target %s\nhost %s\n", p.Target, p.Host)
	for _, inc := range p.Includes {
		fmt.Fprintf(w, "include %s\n", rel(root, inc))
	}
	for _, u := range p.Units {
		fmt.Fprintf(w, "\nlibrary %s (%d sources)\n", u.Name, len(u.Sources))
		for _, d := range u.Defines {
			fmt.Fprintf(w, "  define %s\n", d)
		}
		for _, src := range u.Sources {
			fmt.Fprintf(w, "  %s\n", rel(root, src))
		}
	}
	return nil
}

func rel(root, path string) string {
	if r, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(r)
	}
	return path
}
