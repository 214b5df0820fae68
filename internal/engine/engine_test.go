package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ardjun6/DeskPilot/internal/action"
	"github.com/Ardjun6/DeskPilot/internal/device"
)

// fakeController records every device call and can be told to fail the n-th
// type call, standing in for a step that fails mid-run.
type fakeController struct {
	mu          sync.Mutex
	ops         []string
	typeCalls   int
	failTypeAt  int // 1-based; 0 = never
	typeDelay   time.Duration
	inFlight    int
	maxInFlight int
	clip        string
	clipErr     error
	taps        [][]string
}

func (f *fakeController) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
}

func (f *fakeController) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.ops))
	copy(out, f.ops)
	return out
}

func (f *fakeController) Location() (int, int)             { return 0, 0 }
func (f *fakeController) Move(x, y int) error              { f.record("move"); return nil }
func (f *fakeController) MoveRelative(dx, dy int) error    { f.record("moverel"); return nil }
func (f *fakeController) Click(b string, d bool) error     { f.record("click " + b); return nil }
func (f *fakeController) Tap(k string, held ...string) error {
	f.mu.Lock()
	f.taps = append(f.taps, append([]string{k}, held...))
	f.mu.Unlock()
	f.record("tap " + k)
	return nil
}
func (f *fakeController) OpenApp(path string) error        { f.record("app " + path); return nil }
func (f *fakeController) OpenURL(url string) error         { f.record("url " + url); return nil }
func (f *fakeController) RunCommand(c string) error        { f.record("cmd " + c); return nil }
func (f *fakeController) Size() (int, int)                 { return 1920, 1080 }
func (f *fakeController) PreventSleep() error              { f.record("caffeine"); return nil }
func (f *fakeController) WriteText(t string) error         { f.clip = t; return nil }

func (f *fakeController) ReadText() (string, error) {
	if f.clipErr != nil {
		return "", f.clipErr
	}
	return f.clip, nil
}

func (f *fakeController) TypeText(text string) error {
	f.mu.Lock()
	f.typeCalls++
	n := f.typeCalls
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	if f.typeDelay > 0 {
		time.Sleep(f.typeDelay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if f.failTypeAt != 0 && n == f.failTypeAt {
		return errors.New("keyboard rejected input")
	}
	f.record("type " + text)
	return nil
}

func typeSteps(n int) []action.Step {
	steps := make([]action.Step, n)
	for i := range steps {
		steps[i] = action.NewTypeText("x")
	}
	return steps
}

func TestRunStopsAtFailingStep(t *testing.T) {
	const total, failAt = 5, 3
	fake := &fakeController{failTypeAt: failAt}
	eng := New(fake, &device.Guard{})
	def := action.Definition{ID: "a1", Name: "five types", Enabled: true, Steps: typeSteps(total)}

	res := eng.Run(context.Background(), def)

	assert.Equal(t, action.StatusPartialFailure, res.Status)
	// Steps before the failure ran; the failing one and everything after
	// left no device trace.
	assert.Len(t, fake.Ops(), failAt-1)

	for i := 1; i <= failAt; i++ {
		assert.NotEmpty(t, res.StepEntries(i), "step %d should be logged", i)
	}
	for i := failAt + 1; i <= total; i++ {
		assert.Empty(t, res.StepEntries(i), "step %d must never execute", i)
	}

	var errEntries []action.LogEntry
	for _, e := range res.Log {
		if e.Level == action.LevelError {
			errEntries = append(errEntries, e)
		}
	}
	require.Len(t, errEntries, 1)
	assert.Equal(t, failAt, errEntries[0].Step)
	assert.Contains(t, errEntries[0].Message, "keyboard rejected input")
}

func TestRunAllStepsSucceed(t *testing.T) {
	fake := &fakeController{}
	eng := New(fake, &device.Guard{})
	def := action.Definition{ID: "a1", Name: "ok", Enabled: true, Steps: typeSteps(3)}

	res := eng.Run(context.Background(), def)

	assert.Equal(t, action.StatusSuccess, res.Status)
	assert.Len(t, fake.Ops(), 3)
	assert.False(t, res.EndedAt.Before(res.StartedAt))
}

func TestDelayDuration(t *testing.T) {
	eng := New(&fakeController{}, &device.Guard{})
	def := action.Definition{ID: "a1", Name: "wait", Enabled: true, Steps: []action.Step{action.NewDelay(0.2)}}

	start := time.Now()
	res := eng.Run(context.Background(), def)
	elapsed := time.Since(start)

	assert.Equal(t, action.StatusSuccess, res.Status)
	assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
	assert.Less(t, elapsed, 600*time.Millisecond)
}

func TestCancelDuringDelay(t *testing.T) {
	fake := &fakeController{}
	eng := New(fake, &device.Guard{})
	def := action.Definition{
		ID: "a1", Name: "long wait", Enabled: true,
		Steps: []action.Step{action.NewDelay(10), action.NewTypeText("never")},
	}

	done := make(chan action.RunResult, 1)
	go func() { done <- eng.Run(context.Background(), def) }()

	time.Sleep(150 * time.Millisecond)
	cancelled := time.Now()
	eng.Cancel()

	select {
	case res := <-done:
		assert.Equal(t, action.StatusAborted, res.Status)
		// Cancellation is observed within the delay's polling granularity.
		assert.WithinDuration(t, cancelled, res.EndedAt, 500*time.Millisecond)
		assert.Empty(t, fake.Ops(), "steps after the cancelled delay must not run")
	case <-time.After(2 * time.Second):
		t.Fatal("run did not abort after cancellation")
	}
}

func TestQueuedRunsNeverOverlap(t *testing.T) {
	fake := &fakeController{typeDelay: 50 * time.Millisecond}
	defs := map[string]action.Definition{
		"a": {ID: "a", Name: "a", Enabled: true, Steps: typeSteps(2)},
		"b": {ID: "b", Name: "b", Enabled: true, Steps: typeSteps(2)},
	}
	eng := New(fake, &device.Guard{}, WithResolver(func(id string) (action.Definition, bool) {
		d, ok := defs[id]
		return d, ok
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)

	require.NoError(t, eng.Submit("a"))
	require.NoError(t, eng.Submit("b"))

	var results []action.RunResult
	for len(results) < 2 {
		select {
		case res := <-eng.Results():
			results = append(results, res)
		case <-time.After(3 * time.Second):
			t.Fatal("queued runs did not finish")
		}
	}

	assert.Equal(t, "a", results[0].ActionID)
	assert.Equal(t, "b", results[1].ActionID)
	assert.Equal(t, 1, fake.maxInFlight, "runs must never execute concurrently")
	assert.False(t, results[1].StartedAt.Before(results[0].EndedAt),
		"second run must start only after the first reached a terminal status")
}

func TestDryRunTouchesNothing(t *testing.T) {
	fake := &fakeController{}
	eng := New(fake, &device.Guard{})
	def := action.Definition{
		ID: "a1", Name: "preview", Enabled: true,
		Steps: []action.Step{action.NewClick(10, 10), action.NewTypeText("hi"), action.NewPaste()},
	}

	res := eng.DryRun(context.Background(), def)

	assert.Equal(t, action.StatusSuccess, res.Status)
	assert.Empty(t, fake.Ops())
	for i := 1; i <= 3; i++ {
		assert.NotEmpty(t, res.StepEntries(i))
	}
}

func TestClickOutsideScreenBounds(t *testing.T) {
	fake := &fakeController{}
	eng := New(fake, &device.Guard{})
	def := action.Definition{ID: "a1", Name: "click", Enabled: true, Steps: []action.Step{action.NewClick(5000, 5000)}}

	res := eng.Run(context.Background(), def)

	assert.Equal(t, action.StatusPartialFailure, res.Status)
	assert.Empty(t, fake.Ops())
}

func TestHotkeyChordEmitsAllKeys(t *testing.T) {
	fake := &fakeController{}
	eng := New(fake, &device.Guard{})
	def := action.Definition{
		ID: "a1", Name: "chords", Enabled: true,
		Steps: []action.Step{
			action.NewHotkey("a", "s", "d"),
			action.NewHotkey("ctrl", "shift", "p"),
			action.NewHotkey("ctrl", "alt"),
		},
	}

	res := eng.Run(context.Background(), def)

	assert.Equal(t, action.StatusSuccess, res.Status)
	require.Len(t, fake.taps, 3)
	// A chord of plain keys keeps every key; none may be dropped.
	assert.ElementsMatch(t, []string{"a", "s", "d"}, fake.taps[0])
	assert.Equal(t, []string{"p", "ctrl", "shift"}, fake.taps[1])
	// A pure modifier chord taps the last modifier while holding the rest.
	assert.Equal(t, []string{"alt", "ctrl"}, fake.taps[2])
}

func TestPasteSnapshotsClipboard(t *testing.T) {
	fake := &fakeController{clip: "hello"}
	eng := New(fake, &device.Guard{})
	def := action.Definition{ID: "a1", Name: "paste", Enabled: true, Steps: []action.Step{action.NewPaste()}}

	res := eng.Run(context.Background(), def)

	assert.Equal(t, action.StatusSuccess, res.Status)
	assert.Equal(t, []string{"tap v"}, fake.Ops())
}

func TestPasteFailsWhenClipboardUnavailable(t *testing.T) {
	fake := &fakeController{clipErr: device.ErrUnavailable}
	eng := New(fake, &device.Guard{})
	def := action.Definition{ID: "a1", Name: "paste", Enabled: true, Steps: []action.Step{action.NewPaste()}}

	res := eng.Run(context.Background(), def)
	assert.Equal(t, action.StatusPartialFailure, res.Status)
}
