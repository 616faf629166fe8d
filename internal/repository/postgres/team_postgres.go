package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/model"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/repository"
)

type teamRepository struct{ pool *pgxpool.Pool }

func NewTeamRepository(pool *pgxpool.Pool) repository.TeamRepository {
	return &teamRepository{pool: pool}
}

// Create inserts the team row and its roster entries. Run it inside
// TxManager.WithinTx so a failed roster insert rolls back the team too.
func (r *teamRepository) Create(ctx context.Context, t model.Team) (model.Team, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Team{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO teams (name, city, coach, founded, category)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, city, coach, founded, category, created_at, updated_at`,
		t.Name, t.City, t.Coach, t.Founded, t.Category,
	)
	var out model.Team
	if err := row.Scan(&out.ID, &out.Name, &out.City, &out.Coach, &out.Founded, &out.Category, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return model.Team{}, repository.MapPgError(err)
	}

	out.Players = make([]model.TeamPlayer, 0, len(t.Players))
	for _, p := range t.Players {
		prow := exec.QueryRow(ctx,
			`INSERT INTO team_players (team_id, name, number, position)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, team_id, name, number, position, created_at, updated_at`,
			out.ID, p.Name, p.Number, p.Position,
		)
		var tp model.TeamPlayer
		if err := prow.Scan(&tp.ID, &tp.TeamID, &tp.Name, &tp.Number, &tp.Position, &tp.CreatedAt, &tp.UpdatedAt); err != nil {
			return model.Team{}, repository.MapPgError(err)
		}
		out.Players = append(out.Players, tp)
	}
	return out, nil
}

func (r *teamRepository) GetByID(ctx context.Context, id int64) (model.Team, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Team{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT id, name, city, coach, founded, category, created_at, updated_at
		 FROM teams WHERE id = $1`, id,
	)
	return r.scanTeamWithPlayers(ctx, exec, row)
}

func (r *teamRepository) GetByName(ctx context.Context, name string) (model.Team, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Team{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT id, name, city, coach, founded, category, created_at, updated_at
		 FROM teams WHERE name = $1`, name,
	)
	return r.scanTeamWithPlayers(ctx, exec, row)
}

func (r *teamRepository) scanTeamWithPlayers(ctx context.Context, exec q, row pgx.Row) (model.Team, error) {
	var out model.Team
	if err := row.Scan(&out.ID, &out.Name, &out.City, &out.Coach, &out.Founded, &out.Category, &out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Team{}, repository.ErrNotFound
		}
		return model.Team{}, repository.MapPgError(err)
	}

	rows, err := exec.Query(ctx,
		`SELECT id, team_id, name, number, position, created_at, updated_at
		 FROM team_players
		 WHERE team_id = $1
		 ORDER BY number`, out.ID,
	)
	if err != nil {
		return model.Team{}, repository.MapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var p model.TeamPlayer
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.Number, &p.Position, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return model.Team{}, repository.MapPgError(err)
		}
		out.Players = append(out.Players, p)
	}
	return out, rows.Err()
}

func (r *teamRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Team], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Team]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT id, name, city, coach, founded, category, created_at, updated_at, COUNT(*) OVER() AS total
		 FROM teams
		 ORDER BY id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Team]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Team]{Items: make([]model.Team, 0, limit)}
	for rows.Next() {
		var t model.Team
		var total int
		if err := rows.Scan(&t.ID, &t.Name, &t.City, &t.Coach, &t.Founded, &t.Category, &t.CreatedAt, &t.UpdatedAt, &total); err != nil {
			return repository.PageResult[model.Team]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, t)
		res.Total = total
	}
	return res, rows.Err()
}

var _ repository.TeamRepository = (*teamRepository)(nil)
