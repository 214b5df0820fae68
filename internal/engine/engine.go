// Package engine executes action definitions step by step on a dedicated
// worker, one run at a time.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/Ardjun6/DeskPilot/internal/action"
	"github.com/Ardjun6/DeskPilot/internal/device"
)

// Resolver looks an action definition up by id at execution time, so a
// config reload between trigger and run is honored.
type Resolver func(id string) (action.Definition, bool)

// Engine runs definitions sequentially. Run is safe to call from any
// goroutine; an internal mutex guarantees at most one run in flight, and
// Submit queues requests behind it.
type Engine struct {
	dev   device.Controller
	guard *device.Guard
	log   *zap.SugaredLogger

	resolve  Resolver
	requests chan string
	results  chan action.RunResult

	runMu sync.Mutex // serializes runs

	mu     sync.Mutex
	cancel context.CancelFunc // cancels the in-flight run, nil when idle
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's structured logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) { e.log = log }
}

// WithResolver wires the lookup used by queued run requests.
func WithResolver(r Resolver) Option {
	return func(e *Engine) { e.resolve = r }
}

// WithQueueSize bounds how many run requests may wait behind the in-flight
// run. Default 16.
func WithQueueSize(n int) Option {
	return func(e *Engine) { e.requests = make(chan string, n) }
}

// New builds an engine around the given device controller and shared input
// lock.
func New(dev device.Controller, guard *device.Guard, opts ...Option) *Engine {
	e := &Engine{
		dev:      dev,
		guard:    guard,
		log:      zap.NewNop().Sugar(),
		requests: make(chan string, 16),
		results:  make(chan action.RunResult, 16),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Submit enqueues a run request for the action with the given id. It never
// blocks: hotkey dispatch calls it from the hook path.
func (e *Engine) Submit(id string) error {
	select {
	case e.requests <- id:
		return nil
	default:
		return errors.Newf("run queue full, dropping request for %q", id)
	}
}

// Results delivers finished run results from queued requests.
func (e *Engine) Results() <-chan action.RunResult { return e.results }

// Start launches the request consumer. It returns immediately; the worker
// stops when ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case id := <-e.requests:
				def, ok := e.lookup(id)
				if !ok {
					e.log.Warnw("run request for unknown action", "action_id", id)
					continue
				}
				res := e.Run(ctx, def)
				select {
				case e.results <- res:
				default:
					e.log.Warnw("results channel full, dropping run result", "action_id", id)
				}
			}
		}
	}()
}

func (e *Engine) lookup(id string) (action.Definition, bool) {
	if e.resolve == nil {
		return action.Definition{}, false
	}
	return e.resolve(id)
}

// Cancel aborts the in-flight run, if any. Queued requests are unaffected.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Run executes def's steps strictly in order and returns the run's result.
// On the first failing step the run stops with StatusPartialFailure; prior
// side effects stand. Cancellation is observed between steps and inside
// delays, yielding StatusAborted.
func (e *Engine) Run(ctx context.Context, def action.Definition) action.RunResult {
	return e.run(ctx, def, false)
}

// DryRun walks def's steps recording what each would do, without touching
// the input surface.
func (e *Engine) DryRun(ctx context.Context, def action.Definition) action.RunResult {
	return e.run(ctx, def, true)
}

func (e *Engine) run(ctx context.Context, def action.Definition, dry bool) action.RunResult {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()
	defer func() {
		cancel()
		e.mu.Lock()
		e.cancel = nil
		e.mu.Unlock()
	}()

	res := action.RunResult{
		ActionID:  def.ID,
		StartedAt: time.Now(),
		Status:    action.StatusSuccess,
	}
	sc := &StepContext{Dev: e.dev, Started: res.StartedAt, DryRun: dry}
	res.Append(action.LevelInfo, "running action: "+def.Name, 0)

	total := len(def.Steps)
	for i, step := range def.Steps {
		idx := i + 1
		if runCtx.Err() != nil {
			res.Status = action.StatusAborted
			res.Append(action.LevelWarn, "cancelled", 0)
			break
		}

		res.Append(action.LevelDebug, fmt.Sprintf("step %d/%d: %s", idx, total, step.Describe()), idx)
		if dry {
			res.Append(action.LevelInfo, "dry-run: skipped", idx)
			continue
		}

		started := time.Now()
		err := e.applyStep(runCtx, sc, step)
		switch {
		case err == nil:
			res.Append(action.LevelInfo, fmt.Sprintf("done in %s", time.Since(started).Round(time.Millisecond)), idx)
		case errors.Is(err, context.Canceled):
			res.Status = action.StatusAborted
			res.Append(action.LevelWarn, "cancelled during "+step.Describe(), idx)
		default:
			res.Status = action.StatusPartialFailure
			res.Append(action.LevelError, fmt.Sprintf("step %d failed: %v", idx, err), idx)
		}
		if res.Status != action.StatusSuccess {
			break
		}
	}

	res.EndedAt = time.Now()
	e.log.Infow("run finished",
		"action_id", def.ID,
		"status", res.Status,
		"duration", res.EndedAt.Sub(res.StartedAt))
	return res
}

// applyStep dispatches one step effect. Device-touching effects run under
// the shared input lock; delays do not hold it so the jiggler is not starved
// through a long wait.
func (e *Engine) applyStep(ctx context.Context, sc *StepContext, step action.Step) error {
	eff, ok := effects[step.Kind]
	if !ok {
		return errors.Newf("no effect registered for step type %q", step.Kind)
	}
	if step.Kind == action.KindDelay {
		return eff(ctx, sc, step)
	}
	return e.guard.Do(func() error { return eff(ctx, sc, step) })
}
