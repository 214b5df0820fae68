// Package jiggler performs timed synthetic input on a recurring schedule to
// keep the session awake.
package jiggler

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/Ardjun6/DeskPilot/internal/device"
)

// Pattern selects the synthetic input applied on each tick.
type Pattern string

const (
	PatternSubtle    Pattern = "subtle"    // +1px and back
	PatternCircle    Pattern = "circle"    // small circle, return to origin
	PatternRandom    Pattern = "random"    // bounded random offset, no return
	PatternSquare    Pattern = "square"    // small square, return to origin
	PatternInvisible Pattern = "invisible" // prevent-idle call, no movement
)

// ParsePattern validates a pattern name.
func ParsePattern(s string) (Pattern, error) {
	switch Pattern(s) {
	case PatternSubtle, PatternCircle, PatternRandom, PatternSquare, PatternInvisible:
		return Pattern(s), nil
	}
	return "", errors.Newf("unknown jiggle pattern %q", s)
}

// Device is the slice of the input surface the jiggler drives.
type Device interface {
	Location() (x, y int)
	Move(x, y int) error
	MoveRelative(dx, dy int) error
	PreventSleep() error
}

// State of the scheduler.
type State int

const (
	Stopped State = iota
	Running
	Paused
)

// Stats accumulate across sessions; the configuration layer persists them.
type Stats struct {
	SessionCount  int64 `json:"session_count"`
	JiggleCount   int64 `json:"jiggle_count"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// Scheduler composes the pattern engine with the calendar gate.
type Scheduler struct {
	dev   Device
	guard *device.Guard
	log   *zap.SugaredLogger

	pattern  Pattern
	interval time.Duration
	schedule *Schedule
	persist  func(Stats)
	now      func() time.Time
	rnd      *rand.Rand

	mu           sync.Mutex
	state        State
	runningSince time.Time
	lastInWindow bool
	stats        Stats
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the structured logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithSchedule enables the calendar gate.
func WithSchedule(sched Schedule) Option {
	return func(s *Scheduler) { s.schedule = &sched }
}

// WithStats seeds accumulated stats loaded from disk.
func WithStats(st Stats) Option {
	return func(s *Scheduler) { s.stats = st }
}

// WithStatsSink receives a stats snapshot on every state transition and at
// shutdown, for persistence.
func WithStatsSink(sink func(Stats)) Option {
	return func(s *Scheduler) { s.persist = sink }
}

// WithNow injects the wall clock; tests use it to drive the gate.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New builds a stopped scheduler.
func New(dev Device, guard *device.Guard, pattern Pattern, interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		dev:      dev,
		guard:    guard,
		log:      zap.NewNop().Sugar(),
		pattern:  pattern,
		interval: interval,
		now:      time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns accumulated stats including the live session's uptime.
func (s *Scheduler) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	if s.state == Running {
		st.UptimeSeconds += int64(s.now().Sub(s.runningSince).Seconds())
	}
	return st
}

// Start activates jiggling manually.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toRunning("manual start")
}

// Stop deactivates entirely; the gate will not restart it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Running {
		s.accumulateLocked()
	}
	s.state = Stopped
	s.flushLocked()
	s.log.Infow("jiggler stopped")
}

// Pause suspends ticking but stays activated, so a schedule-window entry
// resumes it.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return
	}
	s.accumulateLocked()
	s.state = Paused
	s.flushLocked()
	s.log.Infow("jiggler paused")
}

// Resume reactivates a paused scheduler manually.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Paused {
		return
	}
	s.toRunning("manual resume")
}

// Activate arms scheduled operation without starting immediately: the
// scheduler parks in Paused and the calendar gate governs transitions.
func (s *Scheduler) Activate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Stopped {
		s.state = Paused
		s.lastInWindow = false
	}
}

// toRunning transitions into Running. Every activation, manual or
// scheduled, counts one session.
func (s *Scheduler) toRunning(reason string) {
	if s.state == Running {
		return
	}
	s.state = Running
	s.runningSince = s.now()
	s.stats.SessionCount++
	s.flushLocked()
	s.log.Infow("jiggler running", "reason", reason, "pattern", s.pattern)
}

func (s *Scheduler) accumulateLocked() {
	s.stats.UptimeSeconds += int64(s.now().Sub(s.runningSince).Seconds())
}

func (s *Scheduler) flushLocked() {
	if s.persist != nil {
		s.persist(s.stats)
	}
}

// Run drives the tick loop and the lower-frequency calendar gate until ctx
// is cancelled. gateEvery is how often the gate is evaluated; pass 0 for
// the default of one minute.
func (s *Scheduler) Run(ctx context.Context, gateEvery time.Duration) {
	if gateEvery <= 0 {
		gateEvery = time.Minute
	}
	tick := time.NewTicker(s.interval)
	gate := time.NewTicker(gateEvery)
	defer tick.Stop()
	defer gate.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return
		case <-tick.C:
			s.Tick()
		case <-gate.C:
			s.CheckGate(s.now())
		}
	}
}

// Tick applies the configured pattern once if running. The device lock is
// held for exactly one tick so engine steps never interleave with it.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return
	}
	pattern := s.pattern
	s.mu.Unlock()

	err := s.guard.Do(func() error { return s.apply(pattern) })
	if err != nil {
		s.log.Warnw("jiggle tick failed", "pattern", pattern, "error", err)
		return
	}

	s.mu.Lock()
	s.stats.JiggleCount++
	s.mu.Unlock()
}

// CheckGate applies the calendar gate at the given wall-clock time. It is
// edge-triggered on window entry and exit, so a manual start or stop holds
// until the next boundary crossing.
func (s *Scheduler) CheckGate(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule == nil || s.state == Stopped {
		return
	}
	in := s.schedule.Contains(now)
	if in == s.lastInWindow {
		return
	}
	s.lastInWindow = in
	if in {
		if s.state == Paused {
			s.toRunning("schedule window entry")
		}
		return
	}
	if s.state == Running {
		s.accumulateLocked()
		s.state = Paused
		s.flushLocked()
		s.log.Infow("jiggler paused", "reason", "schedule window exit")
	}
}

// apply emits one jiggle with the given pattern.
func (s *Scheduler) apply(p Pattern) error {
	switch p {
	case PatternSubtle:
		if err := s.dev.MoveRelative(1, 0); err != nil {
			return err
		}
		return s.dev.MoveRelative(-1, 0)

	case PatternCircle:
		cx, cy := s.dev.Location()
		const r = 2.0
		for i := 0; i < 8; i++ {
			a := float64(i) / 8 * 2 * math.Pi
			if err := s.dev.Move(cx+int(r*math.Cos(a)), cy+int(r*math.Sin(a))); err != nil {
				return err
			}
		}
		return s.dev.Move(cx, cy)

	case PatternRandom:
		return s.dev.MoveRelative(s.rnd.Intn(7)-3, s.rnd.Intn(7)-3)

	case PatternSquare:
		for _, d := range [][2]int{{2, 0}, {0, 2}, {-2, 0}, {0, -2}} {
			if err := s.dev.MoveRelative(d[0], d[1]); err != nil {
				return err
			}
		}
		return nil

	case PatternInvisible:
		return s.dev.PreventSleep()
	}
	return errors.Newf("unknown jiggle pattern %q", p)
}
