package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alias1177/StockAuto/internal/analyze"
	"github.com/Alias1177/StockAuto/internal/config"
	"github.com/Alias1177/StockAuto/internal/notify"
	"github.com/Alias1177/StockAuto/internal/scheduler"
)

var (
	scoreNotify bool
	scoreJSON   bool
	scoreDelay  time.Duration
)

var scoreCmd = &cobra.Command{
	Use:   "score [TICKER...]",
	Short: "Score tickers once and print the result",
	Long: `Builds and scores a snapshot for each ticker (the configured list when none
are given), ignoring market hours. Tickers are paced like a regular cycle.`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreNotify, "notify", false, "also send actionable signals to Telegram")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "print reports as JSON")
	scoreCmd.Flags().DurationVar(&scoreDelay, "delay", -1, "pause between tickers (default: configured inter-ticker delay)")
}

func runScore(cmd *cobra.Command, args []string) error {
	tickers := cfg.Cycle.Tickers
	if len(args) > 0 {
		tickers = make([]string, len(args))
		for i, a := range args {
			tickers[i] = strings.ToUpper(a)
		}
	}

	delay := cfg.Cycle.InterTickerDelay
	if scoreDelay >= 0 {
		delay = scoreDelay
	}

	if err := checkOneShotBudget(cfg, tickers, delay); err != nil {
		return fmt.Errorf("score: %w", err)
	}

	clock, err := cfg.Clock()
	if err != nil {
		return err
	}

	var opts []scheduler.Option
	if scoreNotify {
		if err := cfg.RequireTelegram(); err != nil {
			return err
		}
		notifier, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, clock.Location())
		if err != nil {
			return err
		}
		opts = append(opts, scheduler.WithNotifier(notifier))
	}

	sched := scheduler.New(
		scheduler.Config{
			Tickers:            tickers,
			InterTickerDelay:   delay,
			NotifyInsufficient: cfg.Telegram.NotifyInsufficient,
		},
		clock,
		newSource(cfg, nil),
		analyze.NewScorer(cfg.ScoringParams()),
		opts...,
	)

	reports, err := sched.RunCycle(cmd.Context())
	out := cmd.OutOrStdout()
	for _, r := range reports {
		if scoreJSON {
			b, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("encoding report: %w", err)
			}
			fmt.Fprintln(out, string(b))
			continue
		}
		fmt.Fprintln(out, notify.FormatReport(r, clock.Location()))
		fmt.Fprintln(out)
	}
	return err
}

// checkOneShotBudget applies the per-minute request check to a single pass
// over tickers spaced by delay.
func checkOneShotBudget(c *config.Config, tickers []string, delay time.Duration) error {
	pass := *c
	pass.Cycle.Tickers = tickers
	pass.Cycle.InterTickerDelay = delay
	pass.Cycle.CycleInterval = 0
	return pass.CheckRequestBudget()
}
