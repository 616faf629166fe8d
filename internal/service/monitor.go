package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ClockMonitor drives the live sessions from the background: one tick per
// second for clock updates and expiry, one checkpoint every checkpointEvery
// so a crash costs little banked time.
type ClockMonitor struct {
	matches  MatchService
	tick     time.Duration
	chkEvery time.Duration
	log      zerolog.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewClockMonitor(matches MatchService, tick, checkpointEvery time.Duration, logger zerolog.Logger) *ClockMonitor {
	if tick <= 0 {
		tick = time.Second
	}
	if checkpointEvery <= 0 {
		checkpointEvery = 10 * time.Second
	}
	l := logger.With().Str("module", "service").Str("component", "clock_monitor").Logger()
	return &ClockMonitor{
		matches:  matches,
		tick:     tick,
		chkEvery: checkpointEvery,
		log:      l,
		stopChan: make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled or Stop is called. It is errgroup-friendly.
func (m *ClockMonitor) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.mu.Unlock()

	m.wg.Add(1)
	defer m.wg.Done()

	m.log.Info().Dur("tick", m.tick).Dur("checkpoint_every", m.chkEvery).Msg("clock monitor started")

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()
	checkpoint := time.NewTicker(m.chkEvery)
	defer checkpoint.Stop()

	for {
		select {
		case <-ctx.Done():
			m.finalCheckpoint()
			return ctx.Err()
		case <-m.stopChan:
			m.finalCheckpoint()
			return nil
		case <-ticker.C:
			m.matches.TickAll(ctx)
		case <-checkpoint.C:
			m.matches.Checkpoint(ctx)
		}
	}
}

// Stop ends the loop and waits for the final checkpoint to finish.
func (m *ClockMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	close(m.stopChan)
	m.wg.Wait()
	m.log.Info().Msg("clock monitor stopped")
}

// finalCheckpoint flushes live sessions with a bounded context so shutdown
// never hangs on a slow database.
func (m *ClockMonitor) finalCheckpoint() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.matches.Checkpoint(ctx)
}
