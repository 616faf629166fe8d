// Package game implements the in-memory live-game engine: the match clock,
// the reversible stat ledger, the score accumulator and the session state
// machine that composes them. It performs no I/O; persistence and transport
// live in the surrounding layers.
package game

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/model"
)

// State is the lifecycle position of a session. Finished is terminal.
type State int

const (
	StateActive State = iota
	StateHalftime
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateHalftime:
		return "halftime"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// PlayerRef identifies a participant by match-local id or, failing that, by
// name. Registration resolves the ref only once the event is admitted, so a
// rejected operation never brings a record into existence.
type PlayerRef struct {
	ID   string
	Name string
	Team string
}

func (r PlayerRef) blank() bool {
	return r.ID == "" && strings.TrimSpace(r.Name) == ""
}

// PendingEvent is a staged non-scoring event awaiting user confirmation.
// Nothing is written to the ledger until ConfirmPending; the player ref is
// resolved at confirmation time.
type PendingEvent struct {
	Player  PlayerRef
	Type    model.EventType
	SubType model.SubType
}

// Session is the orchestrating state machine of one live match. It owns the
// clock, the stat ledger, the score and the staged-event slot, and enforces
// the admission rules before events reach the ledger.
//
// A single mutex serializes foreground operations against the periodic Tick,
// so the clock's expiry side effect can never race an event registration.
type Session struct {
	mu sync.Mutex

	id      int64
	teamA   string
	teamB   string
	cfg     model.MatchConfig
	profile model.Profile
	mixed   bool
	date    time.Time
	created time.Time

	state   State
	clock   *Clock
	pool    *PoolTimer
	ledger  *Ledger
	score   ScoreAccumulator
	gender  model.Gender
	softCap bool
	hardCap bool
	pending *PendingEvent

	now func() time.Time
}

// Option tweaks session construction; tests inject a deterministic clock source.
type Option func(*Session)

// WithNow substitutes the wall-clock source. A monotonic source is a valid
// substitution without changing any contract.
func WithNow(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates an active session with an empty player list, zero scores
// and the clock already running.
func NewSession(id int64, teamA, teamB string, cfg model.MatchConfig, profile model.Profile, mixed bool, opts ...Option) (*Session, error) {
	teamA = strings.TrimSpace(teamA)
	teamB = strings.TrimSpace(teamB)
	if teamA == "" || teamB == "" {
		return nil, fmt.Errorf("%w: team names must not be empty", ErrInvalidTeam)
	}
	if teamA == teamB {
		return nil, fmt.Errorf("%w: team names must differ", ErrInvalidTeam)
	}
	if cfg.TimeLimitMinutes <= 0 {
		return nil, fmt.Errorf("%w: time limit must be positive", ErrInvalidConfig)
	}

	s := &Session{
		id:      id,
		teamA:   teamA,
		teamB:   teamB,
		cfg:     cfg,
		profile: profile,
		mixed:   mixed,
		state:   StateActive,
		ledger:  NewLedger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.date = s.now()
	s.created = s.date
	s.clock = NewClock(time.Duration(cfg.TimeLimitMinutes)*time.Minute, s.now)
	s.pool = NewPoolTimer(s.now)
	_ = s.clock.Start()
	return s, nil
}

// Restore rebuilds a session from a persisted snapshot, e.g. after a reload
// mid-match. Scores, player records with their events and the banked clock
// state all come back; staged events do not survive a reload.
func Restore(m model.Match, opts ...Option) *Session {
	s := &Session{
		id:      m.ID,
		teamA:   m.TeamA,
		teamB:   m.TeamB,
		cfg:     m.Config,
		profile: m.Profile,
		mixed:   m.IsMixedGame,
		date:    m.Date,
		created: m.CreatedAt,
		gender:  m.CurrentPointGender,
		softCap: m.SoftCapReached,
		hardCap: m.HardCapReached,
		ledger:  RestoreLedger(m.Players),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	switch {
	case !m.IsActive:
		s.state = StateFinished
	case m.IsHalftime:
		s.state = StateHalftime
	default:
		s.state = StateActive
	}
	s.clock = restoreClock(
		time.Duration(m.Config.TimeLimitMinutes)*time.Minute,
		time.Duration(m.ElapsedSeconds)*time.Second,
		m.StartTime,
		s.now,
	)
	s.pool = NewPoolTimer(s.now)
	s.score.restore(m.ScoreA, m.ScoreB)
	return s
}

func (s *Session) ID() int64 { return s.id }

// State reports the current lifecycle position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ensureActive gates event admission: only an active session accepts events.
func (s *Session) ensureActive() error {
	switch s.state {
	case StateFinished:
		return ErrFinished
	case StateHalftime:
		return ErrNotActive
	default:
		return nil
	}
}

// clockPosition derives the minute/second stamp for a new event.
func (s *Session) clockPosition() (minute, second int) {
	elapsed := s.clock.ElapsedSeconds()
	return elapsed / 60, elapsed % 60
}

// SideOf resolves a team name to its side of the scoreboard.
func (s *Session) SideOf(team string) (model.Side, error) {
	switch team {
	case s.teamA:
		return model.SideA, nil
	case s.teamB:
		return model.SideB, nil
	default:
		return "", fmt.Errorf("%w: %q is not part of this match", ErrInvalidTeam, team)
	}
}

// ResolvePlayer is the single player-normalization point. It resolves by
// match-local id first, then by name equality (the rule for players presented
// under an external roster id), and finally creates a record lazily with the
// given team tag. A player can not be created without a name.
func (s *Session) ResolvePlayer(id, name, team string) (model.PlayerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.resolvePlayerLocked(id, name, team)
	if err != nil {
		return model.PlayerRecord{}, err
	}
	return clonePlayer(p), nil
}

func (s *Session) resolvePlayerLocked(id, name, team string) (*model.PlayerRecord, error) {
	if id != "" {
		if p, ok := s.ledger.Player(id); ok {
			return p, nil
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPlayerNotFound
	}
	if p, ok := s.ledger.PlayerByName(name); ok {
		return p, nil
	}
	return s.ledger.AddPlayer("", name, team), nil
}

// resolvableLocked reports whether a ref will resolve, without creating
// anything yet.
func (s *Session) resolvableLocked(r PlayerRef) bool {
	if r.ID != "" {
		if _, ok := s.ledger.Player(r.ID); ok {
			return true
		}
	}
	return strings.TrimSpace(r.Name) != ""
}

// RegisterGoal records a point for the scorer, bumps the named side's score
// and, when an assister is given, records the assist one millisecond after
// the goal so the two keep a stable order. The point event carries the side,
// so a later undo reverts exactly what was applied. All checks run before any
// state is touched; the operation applies fully or not at all.
func (s *Session) RegisterGoal(scorer, assister PlayerRef, side model.Side) ([]model.StatEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureActive(); err != nil {
		return nil, err
	}
	if side != model.SideA && side != model.SideB {
		return nil, ErrInvalidTeam
	}
	if s.mixed && s.gender == "" {
		return nil, ErrGenderNotSelected
	}
	if !s.resolvableLocked(scorer) {
		return nil, ErrPlayerNotFound
	}
	withAssist := !assister.blank()
	if withAssist && !s.resolvableLocked(assister) {
		return nil, ErrPlayerNotFound
	}

	sp, err := s.resolvePlayerLocked(scorer.ID, scorer.Name, scorer.Team)
	if err != nil {
		return nil, err
	}
	minute, second := s.clockPosition()
	ts := s.now()
	events := make([]model.StatEvent, 0, 2)

	goal, err := s.ledger.RegisterPoint(sp.ID, side, minute, second, ts)
	if err != nil {
		return nil, err
	}
	events = append(events, goal)

	if withAssist {
		ap, err := s.resolvePlayerLocked(assister.ID, assister.Name, assister.Team)
		if err != nil {
			_, _ = s.ledger.Remove(goal.ID)
			return nil, err
		}
		assist, err := s.ledger.Register(ap.ID, model.EventAssist, model.SubTypeNone, minute, second, ts.Add(time.Millisecond))
		if err != nil {
			// Scorer was mutated already; roll back to keep the all-or-nothing promise.
			_, _ = s.ledger.Remove(goal.ID)
			return nil, err
		}
		events = append(events, assist)
	}

	s.score.Apply(side)
	return events, nil
}

// RegisterTeamPoint bumps a side's score without attributing the point to a
// player. The coach profile uses it for opponent scores.
func (s *Session) RegisterTeamPoint(side model.Side) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureActive(); err != nil {
		return err
	}
	if side != model.SideA && side != model.SideB {
		return ErrInvalidTeam
	}
	if s.mixed && s.gender == "" {
		return ErrGenderNotSelected
	}
	s.score.Apply(side)
	return nil
}

// RegisterSimpleEvent records a block, drop or turnover for a player.
// Points and assists go through RegisterGoal; pools through RegisterPool.
func (s *Session) RegisterSimpleEvent(player PlayerRef, typ model.EventType, sub model.SubType) (model.StatEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerSimpleLocked(player, typ, sub)
}

func (s *Session) registerSimpleLocked(player PlayerRef, typ model.EventType, sub model.SubType) (model.StatEvent, error) {
	if err := s.ensureActive(); err != nil {
		return model.StatEvent{}, err
	}
	switch typ {
	case model.EventBlock, model.EventDrop, model.EventTurnover:
	default:
		return model.StatEvent{}, fmt.Errorf("%w: %q", ErrInvalidEventType, typ)
	}
	if !s.resolvableLocked(player) {
		return model.StatEvent{}, ErrPlayerNotFound
	}
	p, err := s.resolvePlayerLocked(player.ID, player.Name, player.Team)
	if err != nil {
		return model.StatEvent{}, err
	}
	minute, second := s.clockPosition()
	return s.ledger.Register(p.ID, typ, sub, minute, second, s.now())
}

// RegisterPool commits a timed pool play: the duration must have been
// captured by the pool timer and a result chosen before calling in.
func (s *Session) RegisterPool(player PlayerRef, duration float64, result model.PoolResult) (model.StatEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureActive(); err != nil {
		return model.StatEvent{}, err
	}
	if duration <= 0 {
		return model.StatEvent{}, fmt.Errorf("%w: duration must be positive", ErrInvalidPool)
	}
	if result != model.PoolIn && result != model.PoolOut {
		return model.StatEvent{}, fmt.Errorf("%w: result must be in or out", ErrInvalidPool)
	}
	if !s.resolvableLocked(player) {
		return model.StatEvent{}, ErrPlayerNotFound
	}
	p, err := s.resolvePlayerLocked(player.ID, player.Name, player.Team)
	if err != nil {
		return model.StatEvent{}, err
	}
	minute, second := s.clockPosition()
	ev, err := s.ledger.RegisterPool(p.ID, minute, second, s.now(), duration, result)
	if err != nil {
		return model.StatEvent{}, err
	}
	s.pool.Reset()
	return ev, nil
}

// StagePending holds a non-scoring event for confirmation. Staging replaces
// any previously staged event; the ledger and the player list stay untouched
// until confirmation.
func (s *Session) StagePending(player PlayerRef, typ model.EventType, sub model.SubType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureActive(); err != nil {
		return err
	}
	switch typ {
	case model.EventBlock, model.EventDrop, model.EventTurnover:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEventType, typ)
	}
	if !s.resolvableLocked(player) {
		return ErrPlayerNotFound
	}
	s.pending = &PendingEvent{Player: player, Type: typ, SubType: sub}
	return nil
}

// Pending returns the staged event, if any.
func (s *Session) Pending() *PendingEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	cp := *s.pending
	return &cp
}

// ConfirmPending applies the staged event to the ledger and clears the slot.
func (s *Session) ConfirmPending() (model.StatEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return model.StatEvent{}, ErrNoPendingEvent
	}
	ev, err := s.registerSimpleLocked(s.pending.Player, s.pending.Type, s.pending.SubType)
	if err != nil {
		return model.StatEvent{}, err
	}
	s.pending = nil
	return ev, nil
}

// CancelPending discards the staged event without any ledger mutation.
// Cancelling with nothing staged is a no-op.
func (s *Session) CancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// UndoEvent reverses a past event: the ledger entry is deleted, its counters
// decremented, and for points the owning side's score reverted in the same
// step. Undo stays available while the match data is in memory, even after
// the session finished.
func (s *Session) UndoEvent(eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, owner, err := s.ledger.Find(eventID)
	if err != nil {
		return err
	}

	side := ev.Side
	if ev.Type == model.EventPoint && side != model.SideA && side != model.SideB {
		// Snapshots written before sides were stamped on point events carry
		// none; fall back to the owner's team tag.
		resolved, err := s.SideOf(owner.Team)
		if err != nil {
			return err
		}
		side = resolved
	}

	if _, err := s.ledger.Remove(eventID); err != nil {
		return err
	}
	if ev.Type == model.EventPoint {
		s.score.Revert(side)
	}
	return nil
}

// SetPointGender selects the gender for the next point of a mixed game. It
// persists across point registrations until explicitly changed and never
// retroactively alters past events.
func (s *Session) SetPointGender(g model.Gender) error {
	if g != model.GenderMale && g != model.GenderFemale {
		return fmt.Errorf("%w: %q", ErrInvalidGender, g)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gender = g
	return nil
}

// PauseClock stops the match clock, banking the elapsed time.
func (s *Session) PauseClock() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFinished {
		return ErrFinished
	}
	return s.clock.Pause()
}

// ResumeClock restarts the match clock; resuming with no time left is rejected.
func (s *Session) ResumeClock() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFinished {
		return ErrFinished
	}
	return s.clock.Start()
}

// StartHalftime pauses the clock and suspends event admission.
func (s *Session) StartHalftime() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureActive(); err != nil {
		return err
	}
	_ = s.clock.Pause() // a clock paused by hand beforehand is fine
	s.state = StateHalftime
	return nil
}

// EndHalftime resumes play and the clock, if time remains.
func (s *Session) EndHalftime() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateHalftime {
		return ErrNotHalftime
	}
	s.state = StateActive
	_ = s.clock.Start()
	return nil
}

// Finish pauses the clock, banks elapsed time and makes the session terminal.
// Idempotent.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked()
}

func (s *Session) finishLocked() {
	if s.state == StateFinished {
		return
	}
	_ = s.clock.Pause()
	s.state = StateFinished
}

// TickResult is what one clock step observed.
type TickResult struct {
	Remaining      time.Duration
	ElapsedSeconds int
	Expired        bool
}

// Tick advances the clock one observation. Crossing a cap threshold raises
// the matching flag; expiry finishes the session with the same effect as an
// explicit Finish. Ticking a finished session is a no-op.
func (s *Session) Tick() TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinished {
		return TickResult{ElapsedSeconds: s.clock.ElapsedSeconds()}
	}

	remaining, expired := s.clock.Tick()
	elapsed := s.clock.ElapsedSeconds()

	if !s.softCap && s.cfg.SoftCapMinutes > 0 && elapsed >= s.cfg.SoftCapMinutes*60 {
		s.softCap = true
	}
	if !s.hardCap && s.cfg.HardCapMinutes > 0 && elapsed >= s.cfg.HardCapMinutes*60 {
		s.hardCap = true
	}
	if expired {
		s.finishLocked()
	}
	return TickResult{Remaining: remaining, ElapsedSeconds: elapsed, Expired: expired}
}

// StartPoolTimer begins timing a pool play from zero.
func (s *Session) StartPoolTimer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Start()
}

// StopPoolTimer captures the pool duration in seconds.
func (s *Session) StopPoolTimer() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Stop()
}

// ResetPoolTimer discards the measurement, cancelling a running one.
func (s *Session) ResetPoolTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.Reset()
}

// PoolSeconds reads the captured or running pool duration.
func (s *Session) PoolSeconds() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Seconds()
}

// Events lists all events across players in chronological order; descending
// gives the live most-recent-first view.
func (s *Session) Events(descending bool) []model.StatEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Events(descending)
}

// Snapshot produces the full persistable state of the session. The caller
// hands it to the persistence sink after every mutating operation.
func (s *Session) Snapshot() model.Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.Match{
		ID:                 s.id,
		TeamA:              s.teamA,
		TeamB:              s.teamB,
		ScoreA:             s.score.A(),
		ScoreB:             s.score.B(),
		Date:               s.date,
		IsActive:           s.state != StateFinished,
		Players:            s.ledger.Records(),
		StartTime:          s.clock.StartedAt(),
		ElapsedSeconds:     s.clock.BankedSeconds(),
		Config:             s.cfg,
		SoftCapReached:     s.softCap,
		HardCapReached:     s.hardCap,
		IsHalftime:         s.state == StateHalftime,
		Profile:            s.profile,
		IsMixedGame:        s.mixed,
		CurrentPointGender: s.gender,
		CreatedAt:          s.created,
		UpdatedAt:          s.now(),
	}
}

func clonePlayer(p *model.PlayerRecord) model.PlayerRecord {
	cp := *p
	cp.Events = append([]model.StatEvent(nil), p.Events...)
	return cp
}
