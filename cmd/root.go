// Package cmd wires the command-line surface.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ardjun6/DeskPilot/internal/config"
	"github.com/Ardjun6/DeskPilot/internal/logging"
	"github.com/Ardjun6/DeskPilot/pkg/paths"
)

var (
	flagConfigDir string
	flagLogLevel  string
	flagLogJSON   bool

	settings config.Settings
	store    *config.Store
	log      *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "deskpilot",
	Short: "Desktop automation command center",
	Long: `DeskPilot runs user-defined action sequences against the live desktop:
global hotkeys trigger them, a recorder turns live input into new ones, and
a background jiggler keeps the session awake on a schedule.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir := flagConfigDir
		if dir == "" {
			dir = paths.ConfigDir()
		}

		var err error
		settings, err = config.LoadSettings(dir)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") || settings.LogLevel == "" {
			settings.LogLevel = flagLogLevel
		}
		if cmd.Flags().Changed("log-json") {
			settings.LogJSON = flagLogJSON
		}

		log, err = logging.New(settings.LogLevel, settings.LogJSON)
		if err != nil {
			return err
		}
		store = config.NewStore(dir, log)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: per-OS app dir)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "emit logs as JSON")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if log != nil {
			log.Errorw("command failed", "error", err)
		} else {
			cobra.CheckErr(err)
		}
		os.Exit(1)
	}
}
