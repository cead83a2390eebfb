package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "watcher",
	Short:         "Relays alerts from a watched Telegram group to the operator bot chat",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runWatcher,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the watcher (default)",
	RunE:  runWatcher,
}

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Check the bot token, DM the operator and optionally publish a synthetic event",
	RunE:  runSelftest,
}

func init() {
	selftestCmd.Flags().String("text", "", "message text of the synthetic platform event")
	rootCmd.AddCommand(runCmd, selftestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска сервиса: %v\n", err)
		os.Exit(1)
	}
}
