package game

import "time"

// Clock converts a configured time limit and a pause/resume history into
// remaining time at any instant. It has two caller-driven states, stopped and
// running, plus a terminal expired flag it sets on its own when a tick drives
// the remaining time to zero.
//
// The clock never spawns goroutines; the owner calls Tick periodically while
// the match is live. Time is read through an injected now func so tests can
// drive it deterministically (and a monotonic source can be substituted).
type Clock struct {
	limit     time.Duration
	elapsed   time.Duration // banked while stopped
	startedAt time.Time     // zero when stopped
	running   bool
	expired   bool
	now       func() time.Time
}

// NewClock returns a stopped clock with the full limit remaining.
func NewClock(limit time.Duration, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{limit: limit, now: now}
}

// restoreClock rebuilds a clock from persisted state. If startedAt is non-nil
// and time remains, the clock resumes running from that instant. A reloaded
// clock with nothing left is not pre-marked expired; the next Tick fires the
// expiry transition so the session reacts to it exactly once.
func restoreClock(limit time.Duration, elapsed time.Duration, startedAt *time.Time, now func() time.Time) *Clock {
	c := NewClock(limit, now)
	if elapsed > limit {
		elapsed = limit
	}
	c.elapsed = elapsed
	if startedAt != nil && c.Remaining() > 0 {
		c.startedAt = *startedAt
		c.running = true
	}
	return c
}

// Start transitions the clock from stopped to running.
// Starting with no time remaining is rejected.
func (c *Clock) Start() error {
	if c.running {
		return ErrClockRunning
	}
	if c.expired || c.Remaining() == 0 {
		return ErrClockExpired
	}
	c.startedAt = c.now()
	c.running = true
	return nil
}

// Pause banks the running segment into elapsed and stops the clock.
func (c *Clock) Pause() error {
	if !c.running {
		return ErrClockNotRunning
	}
	c.elapsed += c.now().Sub(c.startedAt)
	if c.elapsed > c.limit {
		c.elapsed = c.limit
	}
	c.startedAt = time.Time{}
	c.running = false
	return nil
}

// Tick recomputes the remaining time. When it reaches zero the clock banks
// the full limit, stops itself and reports expiry exactly once; subsequent
// ticks are no-ops. This is the only transition the clock triggers unprompted.
func (c *Clock) Tick() (remaining time.Duration, expired bool) {
	if c.expired {
		return 0, false
	}
	remaining = c.Remaining()
	if remaining > 0 {
		return remaining, false
	}
	c.elapsed = c.limit
	c.startedAt = time.Time{}
	c.running = false
	c.expired = true
	return 0, true
}

// Remaining clamps the time left to zero.
func (c *Clock) Remaining() time.Duration {
	r := c.limit - c.Elapsed()
	if r < 0 {
		return 0
	}
	return r
}

// Elapsed is the banked time plus the current running segment, capped at the limit.
func (c *Clock) Elapsed() time.Duration {
	e := c.elapsed
	if c.running {
		e += c.now().Sub(c.startedAt)
	}
	if e > c.limit {
		return c.limit
	}
	return e
}

// ElapsedSeconds is the whole-second elapsed time used to stamp events.
func (c *Clock) ElapsedSeconds() int { return int(c.Elapsed() / time.Second) }

// BankedSeconds is the whole-second time accumulated across completed
// running segments only. Snapshots persist this next to StartedAt, so the
// running segment is never counted twice on restore.
func (c *Clock) BankedSeconds() int { return int(c.elapsed / time.Second) }

func (c *Clock) Running() bool { return c.running }
func (c *Clock) Expired() bool { return c.expired }

// StartedAt reports the wall-clock instant of the most recent resume, or nil
// when the clock is stopped.
func (c *Clock) StartedAt() *time.Time {
	if !c.running {
		return nil
	}
	t := c.startedAt
	return &t
}
