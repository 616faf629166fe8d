// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/model"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	if v, ok := err.(feIface); ok && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// TeamService defines roster-oriented use cases.
type TeamService interface {
	CreateTeam(ctx context.Context, in CreateTeamInput) (model.Team, error)
	GetTeam(ctx context.Context, id int64) (model.Team, error)
	GetTeamByName(ctx context.Context, name string) (model.Team, error)
	ListTeams(ctx context.Context, page repository.Page) (repository.PageResult[model.Team], error)
}

// CreateTeamInput carries a roster team with its players.
type CreateTeamInput struct {
	Name     string
	City     string
	Coach    string
	Founded  int
	Category string
	Players  []CreateTeamPlayerInput
}

type CreateTeamPlayerInput struct {
	Name     string
	Number   int
	Position string
}

// MatchService drives live matches: it keeps a registry of in-memory sessions,
// restores them from storage on demand, and after every mutating operation
// persists the snapshot and publishes an update.
type MatchService interface {
	CreateMatch(ctx context.Context, in CreateMatchInput) (model.Match, error)
	GetMatch(ctx context.Context, id int64) (model.Match, error)
	ListMatches(ctx context.Context, page repository.Page) (repository.PageResult[model.Match], error)
	ListEvents(ctx context.Context, matchID int64) ([]model.StatEvent, error)

	RegisterGoal(ctx context.Context, matchID int64, in GoalInput) (model.Match, error)
	RegisterTeamPoint(ctx context.Context, matchID int64, team string) (model.Match, error)
	RegisterEvent(ctx context.Context, matchID int64, in EventInput) (model.Match, error)
	RegisterPool(ctx context.Context, matchID int64, in PoolInput) (model.Match, error)

	StageEvent(ctx context.Context, matchID int64, in EventInput) error
	PendingEvent(ctx context.Context, matchID int64) (*PendingEvent, error)
	ConfirmEvent(ctx context.Context, matchID int64) (model.Match, error)
	CancelEvent(ctx context.Context, matchID int64) error

	UndoEvent(ctx context.Context, matchID int64, eventID string) (model.Match, error)
	SetPointGender(ctx context.Context, matchID int64, gender string) (model.Match, error)

	PauseClock(ctx context.Context, matchID int64) (model.Match, error)
	ResumeClock(ctx context.Context, matchID int64) (model.Match, error)
	StartHalftime(ctx context.Context, matchID int64) (model.Match, error)
	EndHalftime(ctx context.Context, matchID int64) (model.Match, error)
	FinishMatch(ctx context.Context, matchID int64) (model.Match, error)

	StartPoolTimer(ctx context.Context, matchID int64) error
	StopPoolTimer(ctx context.Context, matchID int64) (float64, error)
	ResetPoolTimer(ctx context.Context, matchID int64) error

	TickAll(ctx context.Context)
	Checkpoint(ctx context.Context)
}

// CreateMatchInput carries everything needed to open a live match. Zero-valued
// rule fields fall back to the configured defaults.
type CreateMatchInput struct {
	TeamA       string
	TeamB       string
	Profile     string
	IsMixedGame bool
	Config      model.MatchConfig
}

// GoalInput identifies the scorer, the optional assister and the scoring team.
// Players may be referenced by match-local id or by name; unknown names join
// the match lazily.
type GoalInput struct {
	Team         string
	ScorerID     string
	ScorerName   string
	AssisterID   string
	AssisterName string
}

// EventInput is a non-scoring play: block, drop or turnover, with an optional
// turnover subtype.
type EventInput struct {
	Team       string
	PlayerID   string
	PlayerName string
	Type       string
	SubType    string
}

// PoolInput commits a timed pool play for a player.
type PoolInput struct {
	Team       string
	PlayerID   string
	PlayerName string
	Duration   float64
	Result     string
}

// PendingEvent mirrors the staged event exposed to clients. The player id is
// empty when the event was staged for a player known only by name; the
// record is created at confirmation.
type PendingEvent struct {
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	Type       string `json:"type"`
	SubType    string `json:"sub_type,omitempty"`
}

// Update is the payload published to match subscribers after state changes.
type Update struct {
	Type    string            `json:"type"`
	MatchID int64             `json:"match_id"`
	Match   *model.Match      `json:"match,omitempty"`
	Events  []model.StatEvent `json:"events,omitempty"`
	Clock   *ClockState       `json:"clock,omitempty"`
}

// ClockState is the lightweight per-tick payload.
type ClockState struct {
	RemainingSeconds int  `json:"remaining_seconds"`
	ElapsedSeconds   int  `json:"elapsed_seconds"`
	Expired          bool `json:"expired"`
}

// Broadcaster publishes updates to everyone watching a match. Implementations
// must not block the caller.
type Broadcaster interface {
	Publish(matchID int64, u Update)
}

// NopBroadcaster drops updates; useful in tests and tools.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(int64, Update) {}
