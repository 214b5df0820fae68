package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/Ardjun6/DeskPilot/internal/action"
	"github.com/Ardjun6/DeskPilot/internal/inputhook"
	"github.com/Ardjun6/DeskPilot/internal/recorder"
)

var (
	flagRecordOut  string
	flagRecordName string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record mouse and keyboard input into a candidate action",
	Long: `Record captures live input after a short countdown and, on interrupt,
compacts it into an action definition printed as JSON. Nothing is saved
automatically; pipe or edit the output and add it to your actions file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stopSignals()

		tap := inputhook.NewTap(log)
		tap.Start()
		defer tap.Stop()

		cfg := settings.RecorderConfig()
		rec := recorder.New(tap, cfg, log)
		if err := rec.Start(ctx); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "recording starts in %s; press Ctrl+C to stop\n", cfg.Countdown.Round(time.Second))
		<-ctx.Done()

		steps := rec.Stop()
		if len(steps) == 0 {
			return errors.New("nothing recorded")
		}

		def := action.NewDefinition(flagRecordName, steps)
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return err
		}
		if flagRecordOut != "" {
			return os.WriteFile(flagRecordOut, data, 0o644)
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVarP(&flagRecordOut, "output", "o", "", "write the candidate action to a file instead of stdout")
	recordCmd.Flags().StringVar(&flagRecordName, "name", "Recorded action", "name for the candidate action")
	rootCmd.AddCommand(recordCmd)
}
