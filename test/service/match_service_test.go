package service_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/game"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/model"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/repository"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/service"
)

type fakeMatchRepo struct {
	nextID  int64
	items   map[int64]model.Match
	saveErr error
	saves   int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1, items: map[int64]model.Match{}}
}

func (f *fakeMatchRepo) Create(_ context.Context, m model.Match) (model.Match, error) {
	m.ID = f.nextID
	f.nextID++
	f.items[m.ID] = m
	return m, nil
}

func (f *fakeMatchRepo) Save(_ context.Context, m model.Match) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.items[m.ID]; !ok {
		return repository.ErrNotFound
	}
	f.items[m.ID] = m
	f.saves++
	return nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id int64) (model.Match, error) {
	m, ok := f.items[id]
	if !ok {
		return model.Match{}, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeMatchRepo) List(_ context.Context, p repository.Page) (repository.PageResult[model.Match], error) {
	res := repository.PageResult[model.Match]{}
	for _, v := range f.items {
		res.Items = append(res.Items, v)
	}
	res.Total = len(res.Items)
	return res, nil
}

var _ repository.MatchRepository = (*fakeMatchRepo)(nil)

type captureBroadcaster struct {
	updates []service.Update
}

func (b *captureBroadcaster) Publish(_ int64, u service.Update) {
	b.updates = append(b.updates, u)
}

func (b *captureBroadcaster) lastType() string {
	if len(b.updates) == 0 {
		return ""
	}
	return b.updates[len(b.updates)-1].Type
}

func testDefaults() model.MatchConfig {
	return model.MatchConfig{
		TargetPoints:           15,
		TimeLimitMinutes:       100,
		SoftCapMinutes:         75,
		HardCapMinutes:         100,
		HalftimePoints:         8,
		HalftimeMinutes:        50,
		TimeoutDurationSeconds: 70,
		TimeoutsPerTeam:        2,
	}
}

func newMatchService(t *testing.T) (service.MatchService, *fakeMatchRepo, *fakeTeamRepo, *captureBroadcaster) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	matches := newFakeMatchRepo()
	teams := newFakeTeamRepo()
	bc := &captureBroadcaster{}
	svc := service.NewMatchService(matches, teams, bc, testDefaults(), logger)
	return svc, matches, teams, bc
}

func TestMatchService_CreateMatch_Validation(t *testing.T) {
	svc, _, _, _ := newMatchService(t)

	cases := []struct {
		name  string
		input service.CreateMatchInput
	}{
		{"empty team_a", service.CreateMatchInput{TeamB: "Blue"}},
		{"empty team_b", service.CreateMatchInput{TeamA: "Red"}},
		{"same teams", service.CreateMatchInput{TeamA: "Red", TeamB: "Red"}},
		{"bad profile", service.CreateMatchInput{TeamA: "Red", TeamB: "Blue", Profile: "referee"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateMatch(context.Background(), tc.input)
			if err == nil || len(service.FieldErrors(err)) == 0 {
				t.Fatalf("expected field errors, got %v", err)
			}
		})
	}
}

func TestMatchService_CreateMatch_AppliesDefaults(t *testing.T) {
	svc, _, _, bc := newMatchService(t)

	m, err := svc.CreateMatch(context.Background(), service.CreateMatchInput{TeamA: "Red", TeamB: "Blue"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if m.Config.TimeLimitMinutes != 100 || m.Config.TargetPoints != 15 {
		t.Fatalf("defaults not applied: %+v", m.Config)
	}
	if m.Profile != model.ProfileScorekeeper {
		t.Fatalf("expected scorekeeper profile default, got %q", m.Profile)
	}
	if !m.IsActive || m.StartTime == nil {
		t.Fatalf("expected active match with a running clock")
	}
	if bc.lastType() != "match_created" {
		t.Fatalf("expected match_created broadcast, got %q", bc.lastType())
	}
}

func TestMatchService_CreateMatch_MixedFromRoster(t *testing.T) {
	svc, _, teams, _ := newMatchService(t)
	_, _ = teams.Create(context.Background(), model.Team{Name: "Fusion", Category: model.CategoryMixed})

	m, err := svc.CreateMatch(context.Background(), service.CreateMatchInput{TeamA: "Fusion", TeamB: "Blue"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.IsMixedGame {
		t.Fatalf("expected mixed game inferred from roster category")
	}
}

func TestMatchService_RegisterGoal_PersistsAndBroadcasts(t *testing.T) {
	svc, matches, _, bc := newMatchService(t)
	m, _ := svc.CreateMatch(context.Background(), service.CreateMatchInput{TeamA: "Red", TeamB: "Blue"})

	out, err := svc.RegisterGoal(context.Background(), m.ID, service.GoalInput{
		Team:         "Red",
		ScorerName:   "Ana",
		AssisterName: "Bea",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ScoreA != 1 || out.ScoreB != 0 {
		t.Fatalf("unexpected score: %d-%d", out.ScoreA, out.ScoreB)
	}
	if len(out.Players) != 2 {
		t.Fatalf("expected two lazily created players, got %d", len(out.Players))
	}
	if bc.lastType() != "goal" {
		t.Fatalf("expected goal broadcast, got %q", bc.lastType())
	}
	stored, _ := matches.GetByID(context.Background(), m.ID)
	if stored.ScoreA != 1 {
		t.Fatalf("snapshot not persisted: %+v", stored)
	}
}

func TestMatchService_RegisterGoal_MixedNeedsGender(t *testing.T) {
	svc, _, _, _ := newMatchService(t)
	m, _ := svc.CreateMatch(context.Background(), service.CreateMatchInput{
		TeamA: "Red", TeamB: "Blue", IsMixedGame: true,
	})

	_, err := svc.RegisterGoal(context.Background(), m.ID, service.GoalInput{Team: "Red", ScorerName: "Ana"})
	if !errors.Is(err, game.ErrGenderNotSelected) {
		t.Fatalf("expected ErrGenderNotSelected, got %v", err)
	}

	if _, err := svc.SetPointGender(context.Background(), m.ID, "female"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.RegisterGoal(context.Background(), m.ID, service.GoalInput{Team: "Red", ScorerName: "Ana"}); err != nil {
		t.Fatalf("unexpected error after gender selection: %v", err)
	}

	if _, err := svc.SetPointGender(context.Background(), m.ID, "other"); err == nil {
		t.Fatalf("expected invalid gender to be rejected")
	}
}

func TestMatchService_RejectedGoalCreatesNoPlayer(t *testing.T) {
	svc, matches, _, _ := newMatchService(t)
	m, _ := svc.CreateMatch(context.Background(), service.CreateMatchInput{
		TeamA: "Red", TeamB: "Blue", IsMixedGame: true,
	})

	_, err := svc.RegisterGoal(context.Background(), m.ID, service.GoalInput{Team: "Red", ScorerName: "Ana"})
	if !errors.Is(err, game.ErrGenderNotSelected) {
		t.Fatalf("expected ErrGenderNotSelected, got %v", err)
	}

	// The rejection left nothing behind: no record in the live session and
	// nothing for the next checkpoint to persist.
	got, _ := svc.GetMatch(context.Background(), m.ID)
	if len(got.Players) != 0 {
		t.Fatalf("rejected goal created %d player record(s): %+v", len(got.Players), got.Players)
	}
	if matches.saves != 0 {
		t.Fatalf("rejected goal persisted a snapshot (%d saves)", matches.saves)
	}
}

func TestMatchService_UndoGoalByTaglessScorer(t *testing.T) {
	svc, _, _, _ := newMatchService(t)
	m, _ := svc.CreateMatch(context.Background(), service.CreateMatchInput{TeamA: "Red", TeamB: "Blue"})

	// A block with no team field creates a tagless record.
	out, err := svc.RegisterEvent(context.Background(), m.ID, service.EventInput{PlayerName: "Ana", Type: "block"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scorerID := out.Players[0].ID

	goal, err := svc.RegisterGoal(context.Background(), m.ID, service.GoalInput{Team: "Red", ScorerID: scorerID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if goal.ScoreA != 1 {
		t.Fatalf("expected 1-0, got %d-%d", goal.ScoreA, goal.ScoreB)
	}

	events, _ := svc.ListEvents(context.Background(), m.ID)
	var pointID string
	for _, ev := range events {
		if ev.Type == model.EventPoint {
			pointID = ev.ID
		}
	}
	undone, err := svc.UndoEvent(context.Background(), m.ID, pointID)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if undone.ScoreA != 0 || undone.Players[0].Points != 0 {
		t.Fatalf("undo left state behind: score=%d %+v", undone.ScoreA, undone.Players[0])
	}
}

func TestMatchService_UndoGoal(t *testing.T) {
	svc, _, _, _ := newMatchService(t)
	m, _ := svc.CreateMatch(context.Background(), service.CreateMatchInput{TeamA: "Red", TeamB: "Blue"})
	_, _ = svc.RegisterGoal(context.Background(), m.ID, service.GoalInput{Team: "Red", ScorerName: "Ana"})

	events, err := svc.ListEvents(context.Background(), m.ID)
	if err != nil || len(events) != 1 {
		t.Fatalf("expected one event, got %v (%v)", events, err)
	}
	undone, err := svc.UndoEvent(context.Background(), m.ID, events[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if undone.ScoreA != 0 {
		t.Fatalf("expected score reverted, got %d", undone.ScoreA)
	}

	if _, err := svc.UndoEvent(context.Background(), m.ID, events[0].ID); !errors.Is(err, game.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound on second undo, got %v", err)
	}
}

func TestMatchService_StageConfirmCancel(t *testing.T) {
	svc, _, _, _ := newMatchService(t)
	m, _ := svc.CreateMatch(context.Background(), service.CreateMatchInput{TeamA: "Red", TeamB: "Blue"})
	_, _ = svc.RegisterGoal(context.Background(), m.ID, service.GoalInput{Team: "Red", ScorerName: "Ana"})

	players, _ := svc.GetMatch(context.Background(), m.ID)
	playerID := players.Players[0].ID

	if err := svc.StageEvent(context.Background(), m.ID, service.EventInput{PlayerID: playerID, Type: "block"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pending, err := svc.PendingEvent(context.Background(), m.ID)
	if err != nil || pending == nil || pending.Type != "block" {
		t.Fatalf("expected staged block, got %+v (%v)", pending, err)
	}

	out, err := svc.ConfirmEvent(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Players[0].Blocks != 1 {
		t.Fatalf("expected confirmed block on counters, got %+v", out.Players[0])
	}

	if _, err := svc.ConfirmEvent(context.Background(), m.ID); !errors.Is(err, game.ErrNoPendingEvent) {
		t.Fatalf("expected ErrNoPendingEvent, got %v", err)
	}
	// cancel with nothing staged is a no-op
	if err := svc.CancelEvent(context.Background(), m.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMatchService_RegisterEvent_Validation(t *testing.T) {
	svc, _, _, _ := newMatchService(t)
	m, _ := svc.CreateMatch(context.Background(), service.CreateMatchInput{TeamA: "Red", TeamB: "Blue"})

	_, err := svc.RegisterEvent(context.Background(), m.ID, service.EventInput{PlayerName: "Ana", Type: "point"})
	if err == nil || len(service.FieldErrors(err)) == 0 {
		t.Fatalf("expected field error for direct point registration, got %v", err)
	}

	out, err := svc.RegisterEvent(context.Background(), m.ID, service.EventInput{
		Team: "Red", PlayerName: "Ana", Type: "turnover", SubType: "drop",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := out.Players[0]
	if p.Turnovers != 1 || p.Drops != 1 {
		t.Fatalf("expected turnover+drop double count, got %+v", p)
	}
}

func TestMatchService_RegisterPool(t *testing.T) {
	svc, _, _, _ := newMatchService(t)
	m, _ := svc.CreateMatch(context.Background(), service.CreateMatchInput{TeamA: "Red", TeamB: "Blue"})

	if err := svc.StartPoolTimer(context.Background(), m.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.StopPoolTimer(context.Background(), m.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := svc.RegisterPool(context.Background(), m.ID, service.PoolInput{
		Team: "Red", PlayerName: "Ana", Duration: 3.4, Result: "in",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Players[0].Pools != 1 {
		t.Fatalf("expected pool counted, got %+v", out.Players[0])
	}

	_, err = svc.RegisterPool(context.Background(), m.ID, service.PoolInput{
		Team: "Red", PlayerName: "Ana", Duration: 0, Result: "sideways",
	})
	fields := service.FieldErrors(err)
	if len(fields) != 2 {
		t.Fatalf("expected duration and result field errors, got %+v (%v)", fields, err)
	}
}

func TestMatchService_FinishAndReject(t *testing.T) {
	svc, matches, _, _ := newMatchService(t)
	m, _ := svc.CreateMatch(context.Background(), service.CreateMatchInput{TeamA: "Red", TeamB: "Blue"})

	final, err := svc.FinishMatch(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final.IsActive {
		t.Fatalf("expected finished match to be inactive")
	}
	stored, _ := matches.GetByID(context.Background(), m.ID)
	if stored.IsActive {
		t.Fatalf("final snapshot not persisted")
	}

	// The session was evicted; the next touch restores a finished session.
	_, err = svc.RegisterGoal(context.Background(), m.ID, service.GoalInput{Team: "Red", ScorerName: "Ana"})
	if !errors.Is(err, game.ErrFinished) {
		t.Fatalf("expected ErrFinished after finish, got %v", err)
	}
}

func TestMatchService_RestoreFromSnapshot(t *testing.T) {
	svc, matches, _, _ := newMatchService(t)
	m, _ := svc.CreateMatch(context.Background(), service.CreateMatchInput{TeamA: "Red", TeamB: "Blue"})
	_, _ = svc.RegisterGoal(context.Background(), m.ID, service.GoalInput{Team: "Red", ScorerName: "Ana"})

	// A fresh service with an empty registry stands in for a restarted process.
	logger := zerolog.New(io.Discard)
	fresh := service.NewMatchService(matches, newFakeTeamRepo(), &captureBroadcaster{}, testDefaults(), logger)

	out, err := fresh.RegisterGoal(context.Background(), m.ID, service.GoalInput{Team: "Blue", ScorerName: "Zoe"})
	if err != nil {
		t.Fatalf("unexpected error after restore: %v", err)
	}
	if out.ScoreA != 1 || out.ScoreB != 1 {
		t.Fatalf("restored session lost state: %d-%d", out.ScoreA, out.ScoreB)
	}
}

func TestMatchService_GetMatch_UnknownID(t *testing.T) {
	svc, _, _, _ := newMatchService(t)
	if _, err := svc.GetMatch(context.Background(), 42); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetMatch(context.Background(), 0); err == nil {
		t.Fatalf("expected invalid input for id 0")
	}
}

func TestMatchService_TickAllBroadcastsClock(t *testing.T) {
	svc, matches, _, bc := newMatchService(t)
	m, _ := svc.CreateMatch(context.Background(), service.CreateMatchInput{TeamA: "Red", TeamB: "Blue"})

	svc.TickAll(context.Background())
	if bc.lastType() != "clock" {
		t.Fatalf("expected clock broadcast, got %q", bc.lastType())
	}
	last := bc.updates[len(bc.updates)-1]
	if last.MatchID != m.ID || last.Clock == nil {
		t.Fatalf("unexpected clock update: %+v", last)
	}
	if last.Clock.Expired {
		t.Fatalf("fresh match should not be expired")
	}

	before := matches.saves
	svc.Checkpoint(context.Background())
	if matches.saves != before+1 {
		t.Fatalf("expected one checkpoint save, got %d", matches.saves-before)
	}
}

func TestMatchService_HalftimeFlow(t *testing.T) {
	svc, _, _, bc := newMatchService(t)
	m, _ := svc.CreateMatch(context.Background(), service.CreateMatchInput{TeamA: "Red", TeamB: "Blue"})

	half, err := svc.StartHalftime(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !half.IsHalftime {
		t.Fatalf("expected halftime snapshot")
	}
	if _, err := svc.RegisterGoal(context.Background(), m.ID, service.GoalInput{Team: "Red", ScorerName: "Ana"}); !errors.Is(err, game.ErrNotActive) {
		t.Fatalf("expected ErrNotActive during break, got %v", err)
	}
	back, err := svc.EndHalftime(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.IsHalftime {
		t.Fatalf("expected play resumed")
	}
	if bc.lastType() != "halftime_ended" {
		t.Fatalf("expected halftime_ended broadcast, got %q", bc.lastType())
	}
}
