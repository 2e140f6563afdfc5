package cmd

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Alias1177/StockAuto/internal/database"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history TICKER",
	Short: "Print the most recent logged signals for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of rows")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !cfg.Database.Enabled {
		return errors.New("signal log is disabled, set DB_ENABLED=true")
	}

	db, err := database.New(cmd.Context(), cfg.ConnectionParams())
	if err != nil {
		return err
	}
	defer db.Close()

	signals, err := db.RecentSignals(cmd.Context(), strings.ToUpper(args[0]), historyLimit)
	if err != nil {
		return fmt.Errorf("querying signals: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tLABEL\tSCORE\tPRICE\tREASONS")
	for _, s := range signals {
		price := "n/a"
		if s.Price.Valid {
			price = s.Price.Decimal.StringFixed(2)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			s.EvaluatedAt.Local().Format("2006-01-02 15:04"), s.Label, s.Score, price, strings.Join(s.Reasons, ", "))
	}
	return w.Flush()
}
