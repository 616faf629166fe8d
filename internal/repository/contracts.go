package repository

import (
	"context"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// I prefer a single entry point to keep transaction boundaries explicit and testable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// TeamRepository is the roster provider: teams with their players, queried
// when the live engine resolves a player not yet present in a match.
type TeamRepository interface {
	Create(ctx context.Context, t model.Team) (model.Team, error)
	GetByID(ctx context.Context, id int64) (model.Team, error)
	GetByName(ctx context.Context, name string) (model.Team, error)
	List(ctx context.Context, p Page) (PageResult[model.Team], error)
}

// MatchRepository is the persistence sink for live matches. Save accepts the
// full session snapshot and is called by the service after every mutating
// core operation; the core itself never waits on it.
type MatchRepository interface {
	Create(ctx context.Context, m model.Match) (model.Match, error)
	Save(ctx context.Context, m model.Match) error
	GetByID(ctx context.Context, id int64) (model.Match, error)
	List(ctx context.Context, p Page) (PageResult[model.Match], error)
}
