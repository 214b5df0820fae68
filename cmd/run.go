package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/Ardjun6/DeskPilot/internal/action"
	"github.com/Ardjun6/DeskPilot/internal/device"
	"github.com/Ardjun6/DeskPilot/internal/engine"
)

var flagDryRun bool

var runCmd = &cobra.Command{
	Use:   "run <action-id>",
	Short: "Execute one action and print its run log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := store.LoadActions()
		if err != nil {
			return err
		}
		def, ok := findAction(defs, args[0])
		if !ok {
			return errors.Newf("unknown action %q", args[0])
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng := engine.New(device.NewRobot(), &device.Guard{}, engine.WithLogger(log))
		var res action.RunResult
		if flagDryRun {
			res = eng.DryRun(ctx, def)
		} else {
			res = eng.Run(ctx, def)
		}

		printResult(res)
		if res.Status != action.StatusSuccess {
			return errors.Newf("run ended with status %s", res.Status)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := store.LoadActions()
		if err != nil {
			return err
		}
		if len(defs) == 0 {
			fmt.Println("no actions configured")
			return nil
		}
		for _, d := range defs {
			marker := " "
			if !d.Enabled {
				marker = "-"
			} else if d.Favorite {
				marker = "*"
			}
			hotkey := ""
			if d.Hotkey != "" {
				hotkey = "  [" + d.Hotkey + "]"
			}
			fmt.Printf("%s %-36s  %s (%d steps)%s\n", marker, d.ID, d.Name, len(d.Steps), hotkey)
		}
		return nil
	},
}

func findAction(defs []action.Definition, idOrName string) (action.Definition, bool) {
	for _, d := range defs {
		if d.ID == idOrName || d.Name == idOrName {
			return d, true
		}
	}
	return action.Definition{}, false
}

func printResult(res action.RunResult) {
	for _, e := range res.Log {
		if e.Step > 0 {
			fmt.Printf("%-7s [%d] %s\n", e.Level, e.Step, e.Message)
		} else {
			fmt.Printf("%-7s %s\n", e.Level, e.Message)
		}
	}
	fmt.Printf("status: %s (%s)\n", res.Status, res.EndedAt.Sub(res.StartedAt).Round(time.Millisecond))
}

func init() {
	runCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "preview steps without touching the desktop")
	rootCmd.AddCommand(runCmd, listCmd)
}
