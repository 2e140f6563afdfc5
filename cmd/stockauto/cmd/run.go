package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/StockAuto/internal/analyze"
	"github.com/Alias1177/StockAuto/internal/config"
	"github.com/Alias1177/StockAuto/internal/database"
	"github.com/Alias1177/StockAuto/internal/health"
	"github.com/Alias1177/StockAuto/internal/metrics"
	"github.com/Alias1177/StockAuto/internal/notify"
	"github.com/Alias1177/StockAuto/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the market-hours scoring loop",
	Long: `Runs the scheduler until SIGINT or SIGTERM. Shutdown waits for the ticker
being evaluated and takes effect at the next pause.`,
	Args: cobra.NoArgs,
	RunE: runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock, err := cfg.Clock()
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)

	notifier, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, clock.Location())
	if err != nil {
		return err
	}

	opts := []scheduler.Option{
		scheduler.WithNotifier(notifier),
		scheduler.WithMetrics(recorder),
	}

	if cfg.Database.Enabled {
		db, err := database.New(ctx, cfg.ConnectionParams())
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, scheduler.WithRecorder(db))
		log.Info().Str("host", cfg.Database.Host).Msg("Signal log enabled")
	}

	sched := scheduler.New(
		cfg.SchedulerConfig(),
		clock,
		newSource(cfg, recorder),
		analyze.NewScorer(cfg.ScoringParams()),
		opts...,
	)

	if cfg.Health.Addr != config.HealthDisabled {
		srv := health.NewServer(cfg.Health.Addr, sched.Heartbeat, cfg.HealthStaleness(), prometheus.DefaultGatherer)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("Health server shutdown")
			}
		}()
	}

	open, closeAt := clock.Window()
	log.Info().
		Str("mode", cfg.Provider.Mode).
		Str("market", open.String()+"-"+closeAt.String()+" "+clock.Location().String()).
		Int("request_cost", cfg.RequestCost()).
		Msg("Starting signal bot")

	err = sched.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("Shutting down")
		return nil
	}
	return err
}
