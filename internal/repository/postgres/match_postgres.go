package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/model"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/repository"
)

// matchRepository stores full match snapshots. Scores and clock state live in
// plain columns so lists stay cheap; the player records with their event
// lists, and the rule config, go into JSONB.
type matchRepository struct{ pool *pgxpool.Pool }

func NewMatchRepository(pool *pgxpool.Pool) repository.MatchRepository {
	return &matchRepository{pool: pool}
}

const matchColumns = `id, team_a, team_b, score_a, score_b, date, is_active,
	players, start_time, elapsed_seconds, config,
	soft_cap_reached, hard_cap_reached, is_halftime,
	profile, is_mixed_game, current_point_gender, created_at, updated_at`

func (r *matchRepository) Create(ctx context.Context, m model.Match) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	players, config, err := marshalMatchDocs(m)
	if err != nil {
		return model.Match{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO matches (team_a, team_b, score_a, score_b, date, is_active,
			players, start_time, elapsed_seconds, config,
			soft_cap_reached, hard_cap_reached, is_halftime,
			profile, is_mixed_game, current_point_gender)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING `+matchColumns,
		m.TeamA, m.TeamB, m.ScoreA, m.ScoreB, m.Date, m.IsActive,
		players, m.StartTime, m.ElapsedSeconds, config,
		m.SoftCapReached, m.HardCapReached, m.IsHalftime,
		m.Profile, m.IsMixedGame, m.CurrentPointGender,
	)
	return scanMatch(row)
}

// Save overwrites the stored snapshot. The service calls it after every
// mutating operation, so the row always reflects the last confirmed state.
func (r *matchRepository) Save(ctx context.Context, m model.Match) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	players, config, err := marshalMatchDocs(m)
	if err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`UPDATE matches SET
			team_a = $2, team_b = $3, score_a = $4, score_b = $5, date = $6, is_active = $7,
			players = $8, start_time = $9, elapsed_seconds = $10, config = $11,
			soft_cap_reached = $12, hard_cap_reached = $13, is_halftime = $14,
			profile = $15, is_mixed_game = $16, current_point_gender = $17,
			updated_at = now()
		 WHERE id = $1`,
		m.ID,
		m.TeamA, m.TeamB, m.ScoreA, m.ScoreB, m.Date, m.IsActive,
		players, m.StartTime, m.ElapsedSeconds, config,
		m.SoftCapReached, m.HardCapReached, m.IsHalftime,
		m.Profile, m.IsMixedGame, m.CurrentPointGender,
	)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *matchRepository) GetByID(ctx context.Context, id int64) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, repository.ErrNotFound
		}
		return model.Match{}, err
	}
	return m, nil
}

func (r *matchRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Match], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Match]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+matchColumns+`, COUNT(*) OVER() AS total
		 FROM matches
		 ORDER BY date DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Match]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Match]{Items: make([]model.Match, 0, limit)}
	for rows.Next() {
		m, total, err := scanMatchWithTotal(rows)
		if err != nil {
			return repository.PageResult[model.Match]{}, err
		}
		res.Items = append(res.Items, m)
		res.Total = total
	}
	return res, rows.Err()
}

func marshalMatchDocs(m model.Match) (players, config []byte, err error) {
	if m.Players == nil {
		m.Players = []model.PlayerRecord{}
	}
	players, err = json.Marshal(m.Players)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal players: %w", err)
	}
	config, err = json.Marshal(m.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal config: %w", err)
	}
	return players, config, nil
}

func scanMatch(row pgx.Row) (model.Match, error) {
	var (
		m       model.Match
		players []byte
		config  []byte
	)
	if err := row.Scan(
		&m.ID, &m.TeamA, &m.TeamB, &m.ScoreA, &m.ScoreB, &m.Date, &m.IsActive,
		&players, &m.StartTime, &m.ElapsedSeconds, &config,
		&m.SoftCapReached, &m.HardCapReached, &m.IsHalftime,
		&m.Profile, &m.IsMixedGame, &m.CurrentPointGender, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, err
		}
		return model.Match{}, repository.MapPgError(err)
	}
	if err := unmarshalMatchDocs(&m, players, config); err != nil {
		return model.Match{}, err
	}
	return m, nil
}

func scanMatchWithTotal(rows pgx.Rows) (model.Match, int, error) {
	var (
		m       model.Match
		players []byte
		config  []byte
		total   int
	)
	if err := rows.Scan(
		&m.ID, &m.TeamA, &m.TeamB, &m.ScoreA, &m.ScoreB, &m.Date, &m.IsActive,
		&players, &m.StartTime, &m.ElapsedSeconds, &config,
		&m.SoftCapReached, &m.HardCapReached, &m.IsHalftime,
		&m.Profile, &m.IsMixedGame, &m.CurrentPointGender, &m.CreatedAt, &m.UpdatedAt,
		&total,
	); err != nil {
		return model.Match{}, 0, repository.MapPgError(err)
	}
	if err := unmarshalMatchDocs(&m, players, config); err != nil {
		return model.Match{}, 0, err
	}
	return m, total, nil
}

func unmarshalMatchDocs(m *model.Match, players, config []byte) error {
	if len(players) > 0 {
		if err := json.Unmarshal(players, &m.Players); err != nil {
			return fmt.Errorf("unmarshal players: %w", err)
		}
	}
	if len(config) > 0 {
		if err := json.Unmarshal(config, &m.Config); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
	}
	return nil
}

var _ repository.MatchRepository = (*matchRepository)(nil)
