package game

import "time"

// PoolTimer is the independent stopwatch used to time a single pool play
// before it is committed as an event. It is fully decoupled from the match
// clock and touches no score or stat state until the caller commits the
// captured duration together with an in/out result.
type PoolTimer struct {
	running   bool
	startedAt time.Time
	elapsed   time.Duration
	now       func() time.Time
}

// NewPoolTimer returns an idle pool timer.
func NewPoolTimer(now func() time.Time) *PoolTimer {
	if now == nil {
		now = time.Now
	}
	return &PoolTimer{now: now}
}

// Start resets any previously captured duration and begins timing.
func (p *PoolTimer) Start() error {
	if p.running {
		return ErrPoolTimerRunning
	}
	p.elapsed = 0
	p.startedAt = p.now()
	p.running = true
	return nil
}

// Stop captures the elapsed duration with sub-second precision and returns
// it in seconds, rounded to the decisecond the way the scoreboard shows it.
func (p *PoolTimer) Stop() (float64, error) {
	if !p.running {
		return 0, ErrPoolTimerNotRunning
	}
	p.elapsed = p.now().Sub(p.startedAt)
	p.running = false
	return p.Seconds(), nil
}

// Reset discards any captured duration and cancels a running measurement.
func (p *PoolTimer) Reset() {
	p.running = false
	p.startedAt = time.Time{}
	p.elapsed = 0
}

// Seconds is the captured (or currently running) duration in seconds,
// truncated to decisecond precision.
func (p *PoolTimer) Seconds() float64 {
	e := p.elapsed
	if p.running {
		e = p.now().Sub(p.startedAt)
	}
	return float64(e/(100*time.Millisecond)) / 10
}

func (p *PoolTimer) Running() bool { return p.running }
