package recorder

import (
	"math"
	"strings"
	"time"

	"github.com/Ardjun6/DeskPilot/internal/action"
)

// Compact converts an ordered raw event buffer into an ordered step
// sequence:
//
//   - an inter-event gap above the threshold becomes an explicit delay step;
//     smaller gaps are treated as noise and dropped
//   - key presses with inter-key gaps inside the chord window compact into a
//     single hotkey step
//   - runs of printable key presses concatenate into one type-text step
//     until a gap, a click, or a non-printable key breaks the run
//   - mouse clicks map one to one onto click steps
func Compact(events []RecordedEvent, cfg Config) []action.Step {
	var steps []action.Step
	var text strings.Builder

	flushText := func() {
		if text.Len() > 0 {
			steps = append(steps, action.NewTypeText(text.String()))
			text.Reset()
		}
	}

	for i := 0; i < len(events); i++ {
		ev := events[i]

		if i > 0 {
			gap := ev.At.Sub(events[i-1].At)
			if gap > cfg.GapThreshold {
				flushText()
				steps = append(steps, action.NewDelay(roundSeconds(gap)))
			}
		}

		switch ev.Kind {
		case MouseClick:
			flushText()
			steps = append(steps, action.NewClickButton(ev.X, ev.Y, ev.Button))

		case HotkeyCombo:
			flushText()
			steps = append(steps, action.NewHotkey(ev.Keys...))

		case KeyPress:
			if cluster := chordCluster(events, i, cfg.ChordWindow); len(cluster) > 1 {
				flushText()
				steps = append(steps, action.NewHotkey(cluster...))
				i += len(cluster) - 1
				continue
			}
			if printable(ev.Key) {
				text.WriteString(ev.Key)
			} else {
				flushText()
				steps = append(steps, action.NewHotkey(ev.Key))
			}
		}
	}
	flushText()
	return steps
}

// chordCluster collects the maximal run of key presses starting at i whose
// successive gaps stay inside the chord window: keys pressed near enough to
// simultaneously that they read as one chord, not typing.
func chordCluster(events []RecordedEvent, i int, window time.Duration) []string {
	cluster := []string{events[i].Key}
	for j := i + 1; j < len(events); j++ {
		if events[j].Kind != KeyPress {
			break
		}
		if events[j].At.Sub(events[j-1].At) >= window {
			break
		}
		cluster = append(cluster, events[j].Key)
	}
	return cluster
}

func printable(key string) bool {
	return len([]rune(key)) == 1
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
