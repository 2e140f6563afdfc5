package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Show whether the market is open",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		clock, err := cfg.Clock()
		if err != nil {
			return err
		}

		now := time.Now()
		open, closeAt := clock.Window()
		local := now.In(clock.Location())
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Window: %s-%s %s, Monday to Friday\n", open, closeAt, clock.Location())
		fmt.Fprintf(out, "Now:    %s\n", local.Format("Mon 2006-01-02 15:04 MST"))
		if clock.IsOpen(now) {
			fmt.Fprintln(out, "Market is open")
			return nil
		}
		next := clock.NextOpen(now)
		fmt.Fprintf(out, "Market is closed, opens %s (in %s)\n",
			next.Format("Mon 2006-01-02 15:04 MST"), next.Sub(now).Truncate(time.Minute))
		return nil
	},
}
