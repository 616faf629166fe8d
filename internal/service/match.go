package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/game"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/model"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/repository"
)

// matchService keeps one in-memory game.Session per live match and restores
// sessions from storage on first touch. After every mutating operation it
// writes the full snapshot back and publishes an update, so a process restart
// loses at most the staged (unconfirmed) event.
type matchService struct {
	repo      repository.MatchRepository
	teams     repository.TeamRepository
	broadcast Broadcaster
	defaults  model.MatchConfig
	log       zerolog.Logger

	mu       sync.RWMutex
	sessions map[int64]*game.Session
}

func NewMatchService(
	repo repository.MatchRepository,
	teams repository.TeamRepository,
	broadcast Broadcaster,
	defaults model.MatchConfig,
	logger zerolog.Logger,
) MatchService {
	l := logger.With().Str("module", "service").Str("component", "match").Logger()
	if broadcast == nil {
		broadcast = NopBroadcaster{}
	}
	return &matchService{
		repo:      repo,
		teams:     teams,
		broadcast: broadcast,
		defaults:  defaults,
		log:       l,
		sessions:  make(map[int64]*game.Session),
	}
}

func (s *matchService) CreateMatch(ctx context.Context, in CreateMatchInput) (model.Match, error) {
	start := time.Now()
	teamA := strings.TrimSpace(in.TeamA)
	teamB := strings.TrimSpace(in.TeamB)

	var ferrs []FieldError
	if teamA == "" {
		ferrs = append(ferrs, FieldError{Field: "team_a", Message: "must not be empty"})
	}
	if teamB == "" {
		ferrs = append(ferrs, FieldError{Field: "team_b", Message: "must not be empty"})
	}
	if teamA != "" && teamA == teamB {
		ferrs = append(ferrs, FieldError{Field: "team_b", Message: "must differ from team_a"})
	}
	profile := strings.ToLower(strings.TrimSpace(in.Profile))
	if profile == "" {
		profile = string(model.ProfileScorekeeper)
	} else if !isValidProfile(profile) {
		ferrs = append(ferrs, FieldError{Field: "profile", Message: "must be scorekeeper or coach"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Match{}, err
	}

	cfg := s.applyDefaults(in.Config)
	mixed := in.IsMixedGame || s.rosterIsMixed(ctx, teamA) || s.rosterIsMixed(ctx, teamB)

	sess, err := game.NewSession(0, teamA, teamB, cfg, model.Profile(profile), mixed)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrInvalidTeam):
			return model.Match{}, newInvalidInput([]FieldError{{Field: "teams", Message: err.Error()}})
		case errors.Is(err, game.ErrInvalidConfig):
			return model.Match{}, newInvalidInput([]FieldError{{Field: "config", Message: err.Error()}})
		}
		return model.Match{}, err
	}

	created, err := s.repo.Create(ctx, sess.Snapshot())
	if err != nil {
		s.log.Error().Err(err).Str("team_a", teamA).Str("team_b", teamB).Msg("create match failed")
		return model.Match{}, err
	}

	// Rebuild the session from the stored row so it carries the assigned id.
	live := game.Restore(created)
	s.mu.Lock()
	s.sessions[created.ID] = live
	s.mu.Unlock()

	s.log.Info().Dur("took", time.Since(start)).Int64("match_id", created.ID).Bool("mixed", mixed).Msg("match created")
	s.broadcast.Publish(created.ID, Update{Type: "match_created", MatchID: created.ID, Match: &created})
	return created, nil
}

// applyDefaults fills zero-valued rule fields from the configured defaults.
func (s *matchService) applyDefaults(cfg model.MatchConfig) model.MatchConfig {
	d := s.defaults
	if cfg.TargetPoints <= 0 {
		cfg.TargetPoints = d.TargetPoints
	}
	if cfg.TimeLimitMinutes <= 0 {
		cfg.TimeLimitMinutes = d.TimeLimitMinutes
	}
	if cfg.SoftCapMinutes <= 0 {
		cfg.SoftCapMinutes = d.SoftCapMinutes
	}
	if cfg.HardCapMinutes <= 0 {
		cfg.HardCapMinutes = d.HardCapMinutes
	}
	if cfg.HalftimePoints <= 0 {
		cfg.HalftimePoints = d.HalftimePoints
	}
	if cfg.HalftimeMinutes <= 0 {
		cfg.HalftimeMinutes = d.HalftimeMinutes
	}
	if cfg.TimeoutDurationSeconds <= 0 {
		cfg.TimeoutDurationSeconds = d.TimeoutDurationSeconds
	}
	if cfg.TimeoutsPerTeam <= 0 {
		cfg.TimeoutsPerTeam = d.TimeoutsPerTeam
	}
	return cfg
}

// rosterIsMixed checks whether a team name maps to a mixed roster team.
// Teams unknown to the roster are fine; ad-hoc names are allowed.
func (s *matchService) rosterIsMixed(ctx context.Context, name string) bool {
	if s.teams == nil {
		return false
	}
	t, err := s.teams.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn().Err(err).Str("team", name).Msg("roster lookup failed")
		}
		return false
	}
	return t.Category == model.CategoryMixed
}

// session returns the live session, restoring it from storage on first touch.
func (s *matchService) session(ctx context.Context, id int64) (*game.Session, error) {
	if id <= 0 {
		return nil, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok { // lost the race, keep the first restore
		return sess, nil
	}
	sess = game.Restore(m)
	s.sessions[id] = sess
	s.log.Info().Int64("match_id", id).Str("state", sess.State().String()).Msg("session restored from snapshot")
	return sess, nil
}

// persist writes the snapshot back and publishes it. The update type tells
// subscribers what changed.
func (s *matchService) persist(ctx context.Context, sess *game.Session, updateType string, events []model.StatEvent) (model.Match, error) {
	snap := sess.Snapshot()
	if err := s.repo.Save(ctx, snap); err != nil {
		s.log.Error().Err(err).Int64("match_id", snap.ID).Str("update", updateType).Msg("snapshot save failed")
		return model.Match{}, err
	}
	s.broadcast.Publish(snap.ID, Update{Type: updateType, MatchID: snap.ID, Match: &snap, Events: events})
	return snap, nil
}

func (s *matchService) GetMatch(ctx context.Context, id int64) (model.Match, error) {
	if id <= 0 {
		return model.Match{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	// Prefer the live state over the last checkpoint.
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess.Snapshot(), nil
	}
	return s.repo.GetByID(ctx, id)
}

func (s *matchService) ListMatches(ctx context.Context, page repository.Page) (repository.PageResult[model.Match], error) {
	p := normalizePage(page)
	res, err := s.repo.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list matches failed")
		return repository.PageResult[model.Match]{}, err
	}
	return res, nil
}

func (s *matchService) ListEvents(ctx context.Context, matchID int64) ([]model.StatEvent, error) {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return sess.Events(true), nil
}

func (s *matchService) RegisterGoal(ctx context.Context, matchID int64, in GoalInput) (model.Match, error) {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return model.Match{}, err
	}
	side, err := sess.SideOf(strings.TrimSpace(in.Team))
	if err != nil {
		return model.Match{}, newInvalidInput([]FieldError{{Field: "team", Message: err.Error()}})
	}
	if in.ScorerID == "" && strings.TrimSpace(in.ScorerName) == "" {
		return model.Match{}, newInvalidInput([]FieldError{{Field: "scorer", Message: "must carry an id or a name"}})
	}
	scorer := game.PlayerRef{ID: in.ScorerID, Name: in.ScorerName, Team: in.Team}
	var assister game.PlayerRef
	if in.AssisterID != "" || strings.TrimSpace(in.AssisterName) != "" {
		assister = game.PlayerRef{ID: in.AssisterID, Name: in.AssisterName, Team: in.Team}
	}

	events, err := sess.RegisterGoal(scorer, assister, side)
	if err != nil {
		return model.Match{}, err
	}
	s.log.Info().Int64("match_id", matchID).Str("scorer", events[0].PlayerID).Str("side", string(side)).Msg("goal registered")
	return s.persist(ctx, sess, "goal", events)
}

func (s *matchService) RegisterTeamPoint(ctx context.Context, matchID int64, team string) (model.Match, error) {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return model.Match{}, err
	}
	side, err := sess.SideOf(strings.TrimSpace(team))
	if err != nil {
		return model.Match{}, newInvalidInput([]FieldError{{Field: "team", Message: err.Error()}})
	}
	if err := sess.RegisterTeamPoint(side); err != nil {
		return model.Match{}, err
	}
	return s.persist(ctx, sess, "team_point", nil)
}

func (s *matchService) RegisterEvent(ctx context.Context, matchID int64, in EventInput) (model.Match, error) {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return model.Match{}, err
	}
	typ, sub, player, verr := s.resolveEventInput(in)
	if verr != nil {
		return model.Match{}, verr
	}
	ev, err := sess.RegisterSimpleEvent(player, typ, sub)
	if err != nil {
		return model.Match{}, err
	}
	return s.persist(ctx, sess, "event", []model.StatEvent{ev})
}

// resolveEventInput validates the wire shape; the session resolves the player
// ref itself once the event is admitted.
func (s *matchService) resolveEventInput(in EventInput) (model.EventType, model.SubType, game.PlayerRef, error) {
	var ferrs []FieldError
	typ, ok := parseEventType(in.Type)
	if !ok {
		ferrs = append(ferrs, FieldError{Field: "type", Message: "must be block, drop or turnover"})
	}
	sub, ok := parseSubType(in.SubType)
	if !ok {
		ferrs = append(ferrs, FieldError{Field: "sub_type", Message: "must be drop or throw_away"})
	}
	if in.PlayerID == "" && strings.TrimSpace(in.PlayerName) == "" {
		ferrs = append(ferrs, FieldError{Field: "player", Message: "must carry an id or a name"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return "", "", game.PlayerRef{}, err
	}
	return typ, sub, game.PlayerRef{ID: in.PlayerID, Name: in.PlayerName, Team: in.Team}, nil
}

func (s *matchService) RegisterPool(ctx context.Context, matchID int64, in PoolInput) (model.Match, error) {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return model.Match{}, err
	}
	var ferrs []FieldError
	result, ok := parsePoolResult(in.Result)
	if !ok {
		ferrs = append(ferrs, FieldError{Field: "result", Message: "must be in or out"})
	}
	if in.Duration <= 0 {
		ferrs = append(ferrs, FieldError{Field: "duration", Message: "must be > 0"})
	}
	if in.PlayerID == "" && strings.TrimSpace(in.PlayerName) == "" {
		ferrs = append(ferrs, FieldError{Field: "player", Message: "must carry an id or a name"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Match{}, err
	}
	player := game.PlayerRef{ID: in.PlayerID, Name: in.PlayerName, Team: in.Team}
	ev, err := sess.RegisterPool(player, in.Duration, result)
	if err != nil {
		return model.Match{}, err
	}
	return s.persist(ctx, sess, "pool", []model.StatEvent{ev})
}

func (s *matchService) StageEvent(ctx context.Context, matchID int64, in EventInput) error {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return err
	}
	typ, sub, player, verr := s.resolveEventInput(in)
	if verr != nil {
		return verr
	}
	// Staging is in-memory only; nothing to persist until confirmation.
	return sess.StagePending(player, typ, sub)
}

func (s *matchService) PendingEvent(ctx context.Context, matchID int64) (*PendingEvent, error) {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return nil, err
	}
	p := sess.Pending()
	if p == nil {
		return nil, nil
	}
	return &PendingEvent{
		PlayerID:   p.Player.ID,
		PlayerName: p.Player.Name,
		Type:       string(p.Type),
		SubType:    string(p.SubType),
	}, nil
}

func (s *matchService) ConfirmEvent(ctx context.Context, matchID int64) (model.Match, error) {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return model.Match{}, err
	}
	ev, err := sess.ConfirmPending()
	if err != nil {
		return model.Match{}, err
	}
	return s.persist(ctx, sess, "event", []model.StatEvent{ev})
}

func (s *matchService) CancelEvent(ctx context.Context, matchID int64) error {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return err
	}
	sess.CancelPending()
	return nil
}

func (s *matchService) UndoEvent(ctx context.Context, matchID int64, eventID string) (model.Match, error) {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return model.Match{}, err
	}
	if strings.TrimSpace(eventID) == "" {
		return model.Match{}, newInvalidInput([]FieldError{{Field: "event_id", Message: "must not be empty"}})
	}
	if err := sess.UndoEvent(eventID); err != nil {
		return model.Match{}, err
	}
	s.log.Info().Int64("match_id", matchID).Str("event_id", eventID).Msg("event undone")
	return s.persist(ctx, sess, "undo", nil)
}

func (s *matchService) SetPointGender(ctx context.Context, matchID int64, gender string) (model.Match, error) {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return model.Match{}, err
	}
	g, ok := parseGender(gender)
	if !ok {
		return model.Match{}, newInvalidInput([]FieldError{{Field: "gender", Message: "must be male or female"}})
	}
	if err := sess.SetPointGender(g); err != nil {
		return model.Match{}, err
	}
	return s.persist(ctx, sess, "gender", nil)
}

func (s *matchService) PauseClock(ctx context.Context, matchID int64) (model.Match, error) {
	return s.clockOp(ctx, matchID, "clock_paused", (*game.Session).PauseClock)
}

func (s *matchService) ResumeClock(ctx context.Context, matchID int64) (model.Match, error) {
	return s.clockOp(ctx, matchID, "clock_resumed", (*game.Session).ResumeClock)
}

func (s *matchService) StartHalftime(ctx context.Context, matchID int64) (model.Match, error) {
	return s.clockOp(ctx, matchID, "halftime_started", (*game.Session).StartHalftime)
}

func (s *matchService) EndHalftime(ctx context.Context, matchID int64) (model.Match, error) {
	return s.clockOp(ctx, matchID, "halftime_ended", (*game.Session).EndHalftime)
}

func (s *matchService) clockOp(ctx context.Context, matchID int64, updateType string, op func(*game.Session) error) (model.Match, error) {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return model.Match{}, err
	}
	if err := op(sess); err != nil {
		return model.Match{}, err
	}
	return s.persist(ctx, sess, updateType, nil)
}

func (s *matchService) FinishMatch(ctx context.Context, matchID int64) (model.Match, error) {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return model.Match{}, err
	}
	sess.Finish()
	snap, err := s.persist(ctx, sess, "finished", nil)
	if err != nil {
		return model.Match{}, err
	}
	// Finished matches drop out of the live registry; reads fall back to storage.
	s.mu.Lock()
	delete(s.sessions, matchID)
	s.mu.Unlock()
	s.log.Info().Int64("match_id", matchID).Int("score_a", snap.ScoreA).Int("score_b", snap.ScoreB).Msg("match finished")
	return snap, nil
}

func (s *matchService) StartPoolTimer(ctx context.Context, matchID int64) error {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return err
	}
	return sess.StartPoolTimer()
}

func (s *matchService) StopPoolTimer(ctx context.Context, matchID int64) (float64, error) {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return 0, err
	}
	return sess.StopPoolTimer()
}

func (s *matchService) ResetPoolTimer(ctx context.Context, matchID int64) error {
	sess, err := s.session(ctx, matchID)
	if err != nil {
		return err
	}
	sess.ResetPoolTimer()
	return nil
}

// TickAll advances every live session one clock observation and publishes the
// lightweight clock payload. Expiry finishes the match and persists it.
func (s *matchService) TickAll(ctx context.Context) {
	for _, sess := range s.liveSessions() {
		res := sess.Tick()
		s.broadcast.Publish(sess.ID(), Update{
			Type:    "clock",
			MatchID: sess.ID(),
			Clock: &ClockState{
				RemainingSeconds: int(res.Remaining / time.Second),
				ElapsedSeconds:   res.ElapsedSeconds,
				Expired:          res.Expired,
			},
		})
		if res.Expired {
			snap, err := s.persist(ctx, sess, "finished", nil)
			if err == nil {
				s.mu.Lock()
				delete(s.sessions, sess.ID())
				s.mu.Unlock()
				s.log.Info().Int64("match_id", snap.ID).Msg("match finished on time expiry")
			}
		}
	}
}

// Checkpoint persists every live session so a crash loses little clock time.
func (s *matchService) Checkpoint(ctx context.Context) {
	for _, sess := range s.liveSessions() {
		snap := sess.Snapshot()
		if err := s.repo.Save(ctx, snap); err != nil {
			s.log.Error().Err(err).Int64("match_id", snap.ID).Msg("checkpoint save failed")
		}
	}
}

func (s *matchService) liveSessions() []*game.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*game.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}
