package main

import (
	"os"

	"github.com/spf13/cobra"

	"stackcalc/service/calculator"
	"stackcalc/service/sessions"
	"stackcalc/ui"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive console calculator",
	Long: `Starts a line oriented calculator on the same command set as the web UI.
The console session keeps its history and memory in the configured store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		sessionID, _ := cmd.Flags().GetString("session")

		manager := sessions.NewManager(store)
		manager.Resume(cmd.Context(), sessionID)

		console := ui.NewConsoleInterface(calculator.NewCalculator(manager), sessionID, os.Stdin, os.Stdout)
		return console.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().String("session", "console", "Session name to keep state under")
}
