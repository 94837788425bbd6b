package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"forge/config"
	"forge/logging"
)

var (
	cfg     *config.Config
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "Click-to-photon latency estimator and exchange-rate service",
	Long: `forge estimates end-to-end input latency for a gaming setup and serves
the exchange rates used to price hardware recommendations.

  Quick start:
    forge serve --port 8080
    forge latency --fps 144 --refresh 240 --panel OLED --gpu "RTX 4070"
    forge rates
    forge doctor`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()

		if path, _ := flags.GetString("config"); path != "" {
			os.Setenv("CONFIG_FILE", path)
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if flags.Changed("log-level") {
			cfg.Log.Level, _ = flags.GetString("log-level")
		}
		if flags.Changed("log-format") {
			cfg.Log.Format, _ = flags.GetString("log-format")
		}
		logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path (default config/config.json)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(latencyCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(doctorCmd)
}
