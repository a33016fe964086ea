package utils

import (
	"sync"
	"time"
)

// Timer records the durations of named phases of a long-running operation,
// in insertion order, for a summary report at the end.
type Timer struct {
	mu     sync.Mutex
	name   string
	start  time.Time
	phases []*phase
	byName map[string]*phase
}

type phase struct {
	name  string
	start time.Time
	d     time.Duration
	done  bool
}

// NewTimer creates a timer for the named operation and starts it.
func NewTimer(name string) *Timer {
	return &Timer{
		name:   name,
		start:  time.Now(),
		byName: make(map[string]*phase),
	}
}

// StartPhase begins timing a named phase. Returns a stop function; stopping
// twice is harmless.
func (t *Timer) StartPhase(name string) func() time.Duration {
	t.mu.Lock()
	p := &phase{name: name, start: time.Now()}
	t.phases = append(t.phases, p)
	t.byName[name] = p
	t.mu.Unlock()

	return func() time.Duration {
		t.mu.Lock()
		defer t.mu.Unlock()
		if !p.done {
			p.d = time.Since(p.start)
			p.done = true
		}
		return p.d
	}
}

// Phase returns the recorded duration of a phase, or zero if unknown.
func (t *Timer) Phase(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.byName[name]; ok {
		return p.d
	}
	return 0
}

// Elapsed returns the time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Report logs one line per completed phase plus the total.
func (t *Timer) Report(logger Logger) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.phases {
		if !p.done {
			continue
		}
		logger.Info("%s: %s took %s", t.name, p.name, p.d)
	}
	logger.Info("%s: total %s", t.name, time.Since(t.start))
}
