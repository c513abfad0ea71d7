package internal

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/goplus/v4l2build/internal/env"
	"github.com/goplus/v4l2build/internal/hosttool"
	"github.com/goplus/v4l2build/x/cc"
	"github.com/spf13/cobra"
)

var toolsOpts buildFlags

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Show the external tools a build would run",
	Args:  cobra.NoArgs,
	RunE:  runTools,
}

func init() {
	toolsOpts.register(toolsCmd)
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	cfg := toolsOpts.config(env.FromEnviron())
	tc := cc.Select(cfg.Target, cfg.Host, os.Getenv)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "target\t%s\n", cfg.Target)
	fmt.Fprintf(w, "host\t%s\n", cfg.Host)
	for _, tool := range []struct{ role, name string }{
		{"make", hosttool.Make(cfg.Host)},
		{"cc", tc.CC[0]},
		{"ar", tc.AR[0]},
		{"bindgen", "bindgen"},
	} {
		path, ok := hosttool.Lookup(tool.name)
		if !ok {
			path = "not found"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", tool.role, tool.name, path)
	}
	return w.Flush()
}
