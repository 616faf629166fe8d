package contract

import (
	"context"
	"testing"
	"time"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/model"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/repository"
)

// Factories hand a fresh repository plus its cleanup to each subtest, so the
// same suite can run against any storage backend.

type TeamFactory func(t *testing.T) (repository.TeamRepository, func())

type MatchFactory func(t *testing.T) (repository.MatchRepository, func())

type TxFactory func(t *testing.T) (tx repository.TxManager, teams repository.TeamRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func RunTeamRepositoryContract(t *testing.T, makeRepo TeamFactory) {
	t.Helper()

	t.Run("create_and_get_with_roster", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, model.Team{
			Name:     "Condors",
			City:     "Buenos Aires",
			Category: model.CategoryMixed,
			Players: []model.TeamPlayer{
				{Name: "Ana Rodriguez", Number: 7, Position: "handler"},
				{Name: "Carlos Mendez", Number: 3, Position: "cutter"},
			},
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.ID != created.ID || got.Name != created.Name || got.Category != model.CategoryMixed {
			t.Fatalf("mismatch: %+v", got)
		}
		if len(got.Players) != 2 {
			t.Fatalf("roster lost: %d players", len(got.Players))
		}
		// Players come back ordered by jersey number.
		if got.Players[0].Number != 3 || got.Players[1].Number != 7 {
			t.Fatalf("roster order: %d then %d", got.Players[0].Number, got.Players[1].Number)
		}
	})

	t.Run("get_by_name", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := repo.Create(ctx, model.Team{Name: "Viento Sur"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		got, err := repo.GetByName(ctx, "Viento Sur")
		if err != nil {
			t.Fatalf("get by name: %v", err)
		}
		if got.Name != "Viento Sur" {
			t.Fatalf("mismatch: %+v", got)
		}
		if _, err := repo.GetByName(ctx, "Nobody"); err == nil || err != repository.ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), 999999)
		if err == nil || err != repository.ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list_pagination_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 7; i++ {
			name := "T-" + string(rune('A'+i))
			if _, err := repo.Create(ctx, model.Team{Name: name}); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		res, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		res2, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 3})
		if err != nil {
			t.Fatalf("list2: %v", err)
		}
		if len(res2.Items) != 3 || res2.Total != 7 {
			t.Fatalf("unexpected page2: len=%d total=%d", len(res2.Items), res2.Total)
		}
	})

	t.Run("create_duplicate_name_conflict", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		_, err := repo.Create(ctx, model.Team{Name: "Dup"})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		_, err = repo.Create(ctx, model.Team{Name: "Dup"})
		if err == nil || err != repository.ErrAlreadyExists {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func RunMatchRepositoryContract(t *testing.T, makeRepo MatchFactory) {
	t.Helper()

	t.Run("create_and_get_round_trip", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, sampleMatch("Red", "Blue"))
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if created.ID == 0 {
			t.Fatalf("no id assigned")
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.TeamA != "Red" || got.TeamB != "Blue" || got.ScoreA != 1 {
			t.Fatalf("columns lost: %+v", got)
		}
		// The players document survives the JSONB round trip intact.
		if len(got.Players) != 1 || len(got.Players[0].Events) != 1 {
			t.Fatalf("players document lost: %+v", got.Players)
		}
		ev := got.Players[0].Events[0]
		if ev.Type != model.EventPoint || ev.Side != model.SideA || ev.Minute != 4 {
			t.Fatalf("event lost in round trip: %+v", ev)
		}
		if got.Config.TimeLimitMinutes != 100 || got.Config.TimeoutsPerTeam != 2 {
			t.Fatalf("config lost in round trip: %+v", got.Config)
		}
	})

	t.Run("save_updates_snapshot", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, sampleMatch("Red", "Blue"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		created.ScoreA = 5
		created.IsActive = false
		created.Players = append(created.Players, model.PlayerRecord{ID: "p2", Name: "Lucia Torres", Team: "Blue"})
		if err := repo.Save(ctx, created); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ScoreA != 5 || got.IsActive || len(got.Players) != 2 {
			t.Fatalf("save not reflected: score=%d active=%v players=%d", got.ScoreA, got.IsActive, len(got.Players))
		}
	})

	t.Run("save_unknown_id_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		m := sampleMatch("Red", "Blue")
		m.ID = 999999
		if err := repo.Save(context.Background(), m); err == nil || err != repository.ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), 7777777)
		if err == nil || err != repository.ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list_pagination_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 7; i++ {
			if _, err := repo.Create(ctx, sampleMatch("Home", "Away")); err != nil {
				t.Fatalf("seed %d: %v", i, err)
			}
		}
		res, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		res2, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 6})
		if err != nil {
			t.Fatalf("list2: %v", err)
		}
		if len(res2.Items) != 1 || res2.Total != 7 {
			t.Fatalf("unexpected tail page: len=%d total=%d", len(res2.Items), res2.Total)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, teams, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := teams.Create(ctx, model.Team{Name: "TxCommit"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return nil
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := teams.GetByID(ctx, createdID); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, teams, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		errMarker := assertErr("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := teams.Create(ctx, model.Team{Name: "TxRollback"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return errMarker
		})
		if err == nil || err.Error() != errMarker.Error() {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := teams.GetByID(ctx, createdID); err == nil || err != repository.ErrNotFound {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}

// sampleMatch builds a realistic snapshot with one player and one side-stamped
// point event, enough to exercise the JSONB documents.
func sampleMatch(teamA, teamB string) model.Match {
	now := time.Now().UTC().Truncate(time.Second)
	return model.Match{
		TeamA:    teamA,
		TeamB:    teamB,
		ScoreA:   1,
		Date:     now,
		IsActive: true,
		Players: []model.PlayerRecord{{
			ID:     "p1",
			Name:   "Carlos Mendez",
			Team:   teamA,
			Points: 1,
			Events: []model.StatEvent{{
				ID:        "ev1",
				PlayerID:  "p1",
				Type:      model.EventPoint,
				Side:      model.SideA,
				Minute:    4,
				Second:    30,
				Timestamp: now,
				Seq:       1,
			}},
		}},
		ElapsedSeconds: 270,
		Config: model.MatchConfig{
			TargetPoints:           15,
			TimeLimitMinutes:       100,
			SoftCapMinutes:         75,
			HardCapMinutes:         100,
			HalftimePoints:         8,
			HalftimeMinutes:        50,
			TimeoutDurationSeconds: 70,
			TimeoutsPerTeam:        2,
		},
		Profile:   model.ProfileScorekeeper,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// assertErr builds a sentinel error without importing errors to keep helpers local.
func assertErr(msg string) error { return &sentinel{msg} }

type sentinel struct{ s string }

func (e *sentinel) Error() string { return e.s }
