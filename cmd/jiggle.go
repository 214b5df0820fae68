package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ardjun6/DeskPilot/internal/device"
	"github.com/Ardjun6/DeskPilot/internal/jiggler"
)

var (
	flagJigglePattern  string
	flagJiggleInterval time.Duration
)

var jiggleCmd = &cobra.Command{
	Use:   "jiggle",
	Short: "Run the mouse jiggler in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern, err := jiggler.ParsePattern(flagJigglePattern)
		if err != nil {
			return err
		}

		stats, err := store.LoadStats()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sched := jiggler.New(device.NewRobot(), &device.Guard{}, pattern, flagJiggleInterval,
			jiggler.WithLogger(log),
			jiggler.WithStats(stats),
			jiggler.WithStatsSink(func(st jiggler.Stats) {
				if err := store.SaveStats(st); err != nil {
					log.Warnw("saving jiggle stats failed", "error", err)
				}
			}),
		)
		sched.Start()

		fmt.Fprintf(os.Stderr, "jiggling every %s (%s); press Ctrl+C to stop\n", flagJiggleInterval, pattern)
		sched.Run(ctx, 0)

		st := sched.Snapshot()
		fmt.Printf("sessions: %d  jiggles: %d  uptime: %s\n",
			st.SessionCount, st.JiggleCount, time.Duration(st.UptimeSeconds)*time.Second)
		return nil
	},
}

func init() {
	jiggleCmd.Flags().StringVar(&flagJigglePattern, "pattern", string(jiggler.PatternSubtle),
		"jiggle pattern: subtle, circle, random, square, invisible")
	jiggleCmd.Flags().DurationVar(&flagJiggleInterval, "interval", 30*time.Second, "time between jiggles")
	rootCmd.AddCommand(jiggleCmd)
}
