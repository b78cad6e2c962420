package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stackcalc/config"
	"stackcalc/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "stackcalc",
	Short: "Browser calculator with a memory stack",
	Long: `stackcalc serves a calculator with percent handling, degree/radian
trigonometry, a six slot memory stack and a persistent history.
Without a subcommand it starts the web server and opens the browser.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.LogLevel = level
		}
		return logger.Configure(cfg.LogLevel, cfg.LogFile)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("store", "", "State store: file, sqlite, redis or memory")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
