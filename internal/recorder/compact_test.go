package recorder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ardjun6/DeskPilot/internal/action"
	"github.com/Ardjun6/DeskPilot/internal/inputhook"
)

func at(base time.Time, offset float64) time.Time {
	return base.Add(time.Duration(offset * float64(time.Second)))
}

func TestCompactMixedCapture(t *testing.T) {
	base := time.Now()
	events := []RecordedEvent{
		{Kind: MouseClick, X: 10, Y: 10, Button: "left", At: at(base, 0)},
		{Kind: MouseClick, X: 20, Y: 20, Button: "left", At: at(base, 0.2)},
		{Kind: KeyPress, Key: "a", At: at(base, 0.3)},
		{Kind: KeyPress, Key: "b", At: at(base, 0.35)},
		{Kind: MouseClick, X: 30, Y: 30, Button: "left", At: at(base, 2.0)},
	}

	steps := Compact(events, DefaultConfig())

	require.Len(t, steps, 5)
	assert.Equal(t, action.NewClickButton(10, 10, "left"), steps[0])
	assert.Equal(t, action.NewClickButton(20, 20, "left"), steps[1])
	assert.Equal(t, action.NewTypeText("ab"), steps[2])
	// The 1.65s gap becomes an explicit delay; the 0.2s and 0.05s gaps are
	// noise below the threshold and vanish.
	require.Equal(t, action.KindDelay, steps[3].Kind)
	assert.InDelta(t, 1.65, steps[3].Seconds, 0.01)
	assert.Equal(t, action.NewClickButton(30, 30, "left"), steps[4])
}

func TestCompactSimultaneousKeysBecomeHotkey(t *testing.T) {
	base := time.Now()
	events := []RecordedEvent{
		{Kind: KeyPress, Key: "a", At: at(base, 0)},
		{Kind: KeyPress, Key: "s", At: at(base, 0.01)},
		{Kind: KeyPress, Key: "d", At: at(base, 0.02)},
	}

	steps := Compact(events, DefaultConfig())

	require.Len(t, steps, 1)
	assert.Equal(t, action.NewHotkey("a", "s", "d"), steps[0])
}

func TestCompactModifierComboBecomesHotkey(t *testing.T) {
	base := time.Now()
	events := []RecordedEvent{
		{Kind: HotkeyCombo, Keys: []string{"ctrl", "c"}, At: at(base, 0)},
		{Kind: HotkeyCombo, Keys: []string{"ctrl", "v"}, At: at(base, 1.0)},
	}

	steps := Compact(events, DefaultConfig())

	require.Len(t, steps, 3)
	assert.Equal(t, action.NewHotkey("ctrl", "c"), steps[0])
	assert.Equal(t, action.KindDelay, steps[1].Kind)
	assert.Equal(t, action.NewHotkey("ctrl", "v"), steps[2])
}

func TestCompactNonPrintableBreaksTextRun(t *testing.T) {
	base := time.Now()
	events := []RecordedEvent{
		{Kind: KeyPress, Key: "h", At: at(base, 0)},
		{Kind: KeyPress, Key: "i", At: at(base, 0.1)},
		{Kind: KeyPress, Key: "enter", At: at(base, 0.2)},
		{Kind: KeyPress, Key: "o", At: at(base, 0.3)},
		{Kind: KeyPress, Key: "k", At: at(base, 0.4)},
	}

	steps := Compact(events, DefaultConfig())

	require.Len(t, steps, 3)
	assert.Equal(t, action.NewTypeText("hi"), steps[0])
	assert.Equal(t, action.NewHotkey("enter"), steps[1])
	assert.Equal(t, action.NewTypeText("ok"), steps[2])
}

func TestCompactEmptyBuffer(t *testing.T) {
	assert.Empty(t, Compact(nil, DefaultConfig()))
}

// fakeSource scripts hook events into the capture loop.
type fakeSource struct {
	ch chan inputhook.Event
}

func (f *fakeSource) Subscribe(int) (<-chan inputhook.Event, func()) {
	return f.ch, func() {}
}

func TestRecorderSessionLifecycle(t *testing.T) {
	src := &fakeSource{ch: make(chan inputhook.Event, 64)}
	cfg := DefaultConfig()
	cfg.Countdown = 10 * time.Millisecond
	rec := New(src, cfg, nil)

	assert.Equal(t, Idle, rec.State())
	require.NoError(t, rec.Start(context.Background()))
	// A second start while a session is active is rejected.
	assert.Error(t, rec.Start(context.Background()))

	require.Eventually(t, func() bool { return rec.State() == Capturing },
		time.Second, 5*time.Millisecond)

	now := time.Now()
	src.ch <- inputhook.Event{Kind: inputhook.MouseDown, X: 5, Y: 6, Button: "left", At: now}
	src.ch <- inputhook.Event{Kind: inputhook.KeyDown, Key: "ctrl", At: now.Add(100 * time.Millisecond)}
	src.ch <- inputhook.Event{Kind: inputhook.KeyDown, Key: "s", At: now.Add(120 * time.Millisecond)}
	src.ch <- inputhook.Event{Kind: inputhook.KeyUp, Key: "ctrl", At: now.Add(140 * time.Millisecond)}

	require.Eventually(t, func() bool { return len(rec.Events()) == 2 },
		time.Second, 5*time.Millisecond)

	steps := rec.Stop()
	assert.Equal(t, Idle, rec.State())
	require.Len(t, steps, 2)
	assert.Equal(t, action.NewClickButton(5, 6, "left"), steps[0])
	assert.Equal(t, action.NewHotkey("ctrl", "s"), steps[1])

	// Stopped recorder can start a fresh session.
	require.NoError(t, rec.Start(context.Background()))
	assert.Empty(t, rec.Events())
	rec.Stop()
}

func TestRecorderCountdownCapturesNothing(t *testing.T) {
	src := &fakeSource{ch: make(chan inputhook.Event, 64)}
	cfg := DefaultConfig()
	cfg.Countdown = time.Hour
	rec := New(src, cfg, nil)

	require.NoError(t, rec.Start(context.Background()))
	assert.Equal(t, Countdown, rec.State())

	src.ch <- inputhook.Event{Kind: inputhook.MouseDown, X: 1, Y: 1, Button: "left", At: time.Now()}
	time.Sleep(20 * time.Millisecond)

	assert.Empty(t, rec.Stop())
	assert.Equal(t, Idle, rec.State())
}
