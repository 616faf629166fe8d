// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// EventType enumerates the kinds of stat events recorded during a match.
type EventType string

const (
	EventPoint     EventType = "point"
	EventAssist    EventType = "assist"
	EventDrop      EventType = "drop"
	EventBlock     EventType = "block"
	EventTurnover  EventType = "turnover"
	EventThrowAway EventType = "throw_away"
	EventPool      EventType = "pool"
)

// SubType refines a turnover event at registration time.
// A "drop" subtype keeps the stored event type as turnover but also counts a
// drop; a "throw_away" subtype re-tags the stored event type itself.
type SubType string

const (
	SubTypeNone      SubType = ""
	SubTypeDrop      SubType = "drop"
	SubTypeThrowAway SubType = "throw_away"
)

// PoolResult is the outcome of a timed pool play.
type PoolResult string

const (
	PoolIn  PoolResult = "in"
	PoolOut PoolResult = "out"
)

// Gender designates which line is on the field for the current point in a mixed game.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Profile selects which editing surface created the match.
type Profile string

const (
	ProfileScorekeeper Profile = "scorekeeper"
	ProfileCoach       Profile = "coach"
)

// Side identifies one of the two teams of a match.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// TeamCategory classifies a roster team. A match involving at least one
// mixed team requires a per-point gender selection before goals.
type TeamCategory string

const (
	CategoryMens   TeamCategory = "mens"
	CategoryWomens TeamCategory = "womens"
	CategoryMixed  TeamCategory = "mixed"
)

// MatchConfig is the immutable rule set of a single match.
// TimeLimitMinutes is the authoritative clock bound; the soft and hard cap
// thresholds only raise flags on the match when crossed.
type MatchConfig struct {
	TargetPoints           int `json:"target_points"`
	TimeLimitMinutes       int `json:"time_limit_minutes"`
	SoftCapMinutes         int `json:"soft_cap_minutes"`
	HardCapMinutes         int `json:"hard_cap_minutes"`
	HalftimePoints         int `json:"halftime_points"`
	HalftimeMinutes        int `json:"halftime_minutes"`
	TimeoutDurationSeconds int `json:"timeout_duration_seconds"`
	TimeoutsPerTeam        int `json:"timeouts_per_team"`
}

// StatEvent is one recorded play, owned by a player record.
// Minute and second are derived from the match clock at registration time;
// Timestamp orders events across players, with Seq breaking timestamp ties
// in insertion order.
type StatEvent struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	Type      EventType `json:"type"`
	SubType   SubType   `json:"sub_type,omitempty"`
	// Side is stamped on point events so an undo reverts the same
	// scoreboard side the goal moved.
	Side      Side      `json:"side,omitempty"`
	Minute    int       `json:"minute"`
	Second    int       `json:"second"`
	Timestamp time.Time `json:"timestamp"`
	Seq       uint64    `json:"seq"`

	// Pool-only fields.
	PoolDurationSeconds float64    `json:"pool_duration_seconds,omitempty"`
	PoolResult          PoolResult `json:"pool_result,omitempty"`
}

// PlayerRecord is a participant of one match together with the aggregate
// counters derived from its event list.
type PlayerRecord struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Team      string      `json:"team,omitempty"`
	Points    int         `json:"points"`
	Assists   int         `json:"assists"`
	Drops     int         `json:"drops"`
	Blocks    int         `json:"blocks"`
	Turnovers int         `json:"turnovers"`
	Pools     int         `json:"pools"`
	Events    []StatEvent `json:"events"`
}

// Match is the full persistable snapshot of a live session: scores, player
// records with their event lists, and clock state. StartTime marks the most
// recent clock resume; ElapsedSeconds is the time banked while paused.
type Match struct {
	ID                 int64          `json:"id"`
	TeamA              string         `json:"team_a"`
	TeamB              string         `json:"team_b"`
	ScoreA             int            `json:"score_a"`
	ScoreB             int            `json:"score_b"`
	Date               time.Time      `json:"date"`
	IsActive           bool           `json:"is_active"`
	Players            []PlayerRecord `json:"players"`
	StartTime          *time.Time     `json:"start_time,omitempty"`
	ElapsedSeconds     int            `json:"elapsed_seconds"`
	Config             MatchConfig    `json:"config"`
	SoftCapReached     bool           `json:"soft_cap_reached"`
	HardCapReached     bool           `json:"hard_cap_reached"`
	IsHalftime         bool           `json:"is_halftime"`
	Profile            Profile        `json:"profile"`
	IsMixedGame        bool           `json:"is_mixed_game"`
	CurrentPointGender Gender         `json:"current_point_gender,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Team represents a roster team managed outside live play.
type Team struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	City      string       `json:"city"`
	Coach     string       `json:"coach"`
	Founded   int          `json:"founded"`
	Category  TeamCategory `json:"category"`
	Players   []TeamPlayer `json:"players,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TeamPlayer is a roster entry; it becomes a PlayerRecord lazily the first
// time the player participates in a match event.
type TeamPlayer struct {
	ID        int64     `json:"id"`
	TeamID    int64     `json:"team_id"`
	Name      string    `json:"name"`
	Number    int       `json:"number"`
	Position  string    `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
