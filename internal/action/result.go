package action

import "time"

// Status is the terminal outcome of one execution attempt.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialFailure Status = "partial_failure"
	StatusAborted        Status = "aborted"
)

// Log levels used in run results.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARNING"
	LevelError = "ERROR"
)

// LogEntry is one line of a run's log. Step is 1-based; 0 marks a run-level
// entry not tied to a particular step.
type LogEntry struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Step    int       `json:"step,omitempty"`
	At      time.Time `json:"at"`
}

// RunResult records the outcome of one execution of a definition. It is
// owned by the caller that requested the run; the engine never retains it.
type RunResult struct {
	ActionID  string     `json:"action_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   time.Time  `json:"ended_at"`
	Status    Status     `json:"status"`
	Log       []LogEntry `json:"log"`
}

// Append adds a log entry stamped with the current time.
func (r *RunResult) Append(level, message string, step int) {
	r.Log = append(r.Log, LogEntry{Level: level, Message: message, Step: step, At: time.Now()})
}

// StepEntries returns the log entries recorded for the given 1-based step.
func (r *RunResult) StepEntries(step int) []LogEntry {
	var out []LogEntry
	for _, e := range r.Log {
		if e.Step == step {
			out = append(out, e)
		}
	}
	return out
}
