package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var app *App

var (
	configPathFlag string
	dbPathFlag     string
	verboseFlag    bool
)

var rootCmd = &cobra.Command{
	Use:           "tasknest",
	Short:         "Personal task tracker",
	Long:          "tasknest keeps per-user task lists in a local sqlite file.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var handler slog.Handler
		if verboseFlag {
			handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		} else {
			handler = slog.NewTextHandler(io.Discard, nil)
		}
		log := slog.New(handler)

		opened, err := openApp(configPathFlag, dbPathFlag, log)
		if err != nil {
			return err
		}
		app = opened
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			app.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "sqlite db path")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "debug logging")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if app != nil {
			app.Close()
		}
		os.Exit(1)
	}
}
