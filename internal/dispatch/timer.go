package dispatch

import "time"

// Timer is the elapsed-time counter of a run. It is owned by the dispatcher
// and only read by the projector.
type Timer struct {
	now     func() time.Time
	started time.Time
	elapsed time.Duration
	running bool
}

func NewTimer(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{now: now}
}

// Start restarts the counter from zero.
func (t *Timer) Start() {
	t.started = t.now()
	t.elapsed = 0
	t.running = true
}

// Stop freezes the counter at its current value.
func (t *Timer) Stop() {
	if !t.running {
		return
	}
	t.elapsed = t.now().Sub(t.started)
	t.running = false
}

func (t *Timer) Reset() {
	t.elapsed = 0
	t.running = false
}

func (t *Timer) Running() bool { return t.running }

func (t *Timer) Elapsed() time.Duration {
	if t.running {
		return t.now().Sub(t.started)
	}
	return t.elapsed
}
