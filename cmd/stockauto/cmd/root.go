// Package cmd holds the stockauto commands.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/StockAuto/internal/config"
	"github.com/Alias1177/StockAuto/internal/logger"
)

var (
	cfgFile string
	envFile string

	// cfg is loaded once in PersistentPreRunE and never modified afterwards.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "stockauto",
	Short: "Technical-indicator signal bot for US equities",
	Long: `stockauto polls Twelve Data for a handful of tickers during market hours,
scores each one against RSI, MACD (or EMA slope), SMA trend, Bollinger bands
and optionally ADX and MFI, and sends non-neutral signals to Telegram.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		log.Error().Err(err).Msg("Command failed")
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", os.Getenv("CONFIG_FILE"), "YAML config file (env CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(marketCmd)
	rootCmd.AddCommand(historyCmd)
}

// initConfig loads .env, the config file and the environment, then sets up
// logging.
func initConfig() error {
	if err := godotenv.Load(envFile); err != nil {
		log.Warn().Str("file", envFile).Msg(".env file not found, relying on actual environment variables")
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if _, err := logger.Setup(loaded.LoggerConfig()); err != nil {
		return err
	}

	cfg = loaded
	return nil
}
