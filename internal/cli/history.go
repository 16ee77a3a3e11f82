package cli

import (
	"fmt"

	"github.com/samvad-hq/httpcall/internal/output"
	"github.com/spf13/cobra"
)

func newHistoryCmd(env *Env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently completed exchanges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env.Runner == nil {
				return fmt.Errorf("runner is not initialized")
			}
			entries, err := env.Runner.History(limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			output.NewPrinter(env.Out, env.NoColor).History(entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries (0 for all)")
	return cmd
}

func newVersionCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(env.Out, "httpcall %s (built %s)\n", env.Version, env.BuildTime)
		},
	}
}
