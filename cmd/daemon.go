package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ardjun6/DeskPilot/internal/action"
	"github.com/Ardjun6/DeskPilot/internal/device"
	"github.com/Ardjun6/DeskPilot/internal/engine"
	"github.com/Ardjun6/DeskPilot/internal/hotkey"
	"github.com/Ardjun6/DeskPilot/internal/inputhook"
	"github.com/Ardjun6/DeskPilot/internal/jiggler"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the hotkey dispatcher, engine worker, and scheduled jiggler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var (
			mu   sync.RWMutex
			defs map[string]action.Definition
		)
		resolve := func(id string) (action.Definition, bool) {
			mu.RLock()
			defer mu.RUnlock()
			d, ok := defs[id]
			return d, ok
		}

		guard := &device.Guard{}
		eng := engine.New(device.NewRobot(), guard,
			engine.WithLogger(log),
			engine.WithResolver(resolve),
		)

		tap := inputhook.NewTap(log)
		tap.Start()
		defer tap.Stop()

		registry := hotkey.NewRegistry(tap, eng.Submit, log)

		reload := func() {
			loaded, err := store.LoadActions()
			if err != nil {
				log.Warnw("action reload rejected", "error", err)
				return
			}
			byID := make(map[string]action.Definition, len(loaded))
			registry.Clear()
			for _, d := range loaded {
				byID[d.ID] = d
				if d.Hotkey == "" || !d.Enabled {
					continue
				}
				if err := registry.Register(d.Hotkey, d.ID); err != nil {
					log.Warnw("hotkey not bound", "action_id", d.ID, "hotkey", d.Hotkey, "error", err)
				}
			}
			mu.Lock()
			defs = byID
			mu.Unlock()
			log.Infow("actions loaded", "count", len(byID), "hotkeys", len(registry.Bindings()))
		}
		reload()

		if err := store.Watch(ctx, reload); err != nil {
			log.Warnw("config watch disabled", "error", err)
		}

		eng.Start(ctx)
		registry.Start(ctx)
		go logResults(ctx, eng)

		if err := startScheduledJiggler(ctx, guard); err != nil {
			log.Warnw("scheduled jiggler disabled", "error", err)
		}

		log.Infow("daemon up", "config_dir", store.Dir())
		<-ctx.Done()
		log.Infow("daemon shutting down")
		return nil
	},
}

// logResults surfaces finished hotkey-triggered runs.
func logResults(ctx context.Context, eng *engine.Engine) {
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-eng.Results():
			fields := []interface{}{
				"action_id", res.ActionID,
				"status", res.Status,
				"duration", res.EndedAt.Sub(res.StartedAt).Round(time.Millisecond),
			}
			if res.Status == action.StatusSuccess {
				log.Infow("action finished", fields...)
			} else {
				log.Warnw("action did not complete", fields...)
			}
		}
	}
}

// startScheduledJiggler arms the jiggler when a calendar schedule is
// configured; without one the daemon leaves jiggling to the jiggle command.
func startScheduledJiggler(ctx context.Context, guard *device.Guard) error {
	sched, err := settings.JigglerSchedule()
	if err != nil || sched == nil {
		return err
	}
	pattern, err := jiggler.ParsePattern(settings.Jiggler.Pattern)
	if err != nil {
		return err
	}
	stats, err := store.LoadStats()
	if err != nil {
		return err
	}

	j := jiggler.New(device.NewRobot(), guard, pattern,
		time.Duration(settings.Jiggler.IntervalSeconds)*time.Second,
		jiggler.WithLogger(log),
		jiggler.WithSchedule(*sched),
		jiggler.WithStats(stats),
		jiggler.WithStatsSink(func(st jiggler.Stats) {
			if err := store.SaveStats(st); err != nil {
				log.Warnw("saving jiggle stats failed", "error", err)
			}
		}),
	)
	j.Activate()
	j.CheckGate(time.Now())
	go j.Run(ctx, 0)
	return nil
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
