package game

import "errors"

// Domain-level errors surfaced by the live-game engine. Callers are expected
// to branch with errors.Is; pkg/response maps them to HTTP statuses.
var (
	ErrNotActive         = errors.New("match is not active")
	ErrFinished          = errors.New("match already finished")
	ErrNotHalftime       = errors.New("match is not at halftime")
	ErrGenderNotSelected = errors.New("point gender not selected")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrEventNotFound     = errors.New("event not found")
	ErrInvalidTeam       = errors.New("invalid team")
	ErrInvalidConfig     = errors.New("invalid match config")
	ErrInvalidEventType  = errors.New("unsupported event type")
	ErrInvalidGender     = errors.New("invalid gender")
	ErrInvalidPool       = errors.New("invalid pool commit")
	ErrNoPendingEvent    = errors.New("no pending event")

	ErrClockRunning    = errors.New("clock already running")
	ErrClockNotRunning = errors.New("clock is not running")
	ErrClockExpired    = errors.New("clock has expired")

	ErrPoolTimerRunning    = errors.New("pool timer already running")
	ErrPoolTimerNotRunning = errors.New("pool timer is not running")
)
