package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/model"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/repository"
)

// teamService holds roster use-case logic: validation + orchestration, no transport / SQL details.
type teamService struct {
	repo repository.TeamRepository
	tx   repository.TxManager
	log  zerolog.Logger
}

func NewTeamService(repo repository.TeamRepository, tx repository.TxManager, logger zerolog.Logger) TeamService {
	l := logger.With().Str("module", "service").Str("component", "team").Logger()
	return &teamService{repo: repo, tx: tx, log: l}
}

func (s *teamService) CreateTeam(ctx context.Context, in CreateTeamInput) (model.Team, error) {
	start := time.Now()
	name := strings.TrimSpace(in.Name)

	var ferrs []FieldError
	if name == "" {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "must not be empty"})
	} else if ln := len([]rune(name)); ln < 2 || ln > 50 {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "length must be between 2 and 50"})
	}
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if category == "" {
		category = string(model.CategoryMixed)
	} else if !isValidCategory(category) {
		ferrs = append(ferrs, FieldError{Field: "category", Message: "must be mens, womens or mixed"})
	}
	for _, p := range in.Players {
		if strings.TrimSpace(p.Name) == "" {
			ferrs = append(ferrs, FieldError{Field: "players", Message: "player name must not be empty"})
			break
		}
	}
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Str("name_raw", in.Name).Interface("field_errors", ferrs).Msg("team validation failed")
		return model.Team{}, err
	}

	team := model.Team{
		Name:     name,
		City:     strings.TrimSpace(in.City),
		Coach:    strings.TrimSpace(in.Coach),
		Founded:  in.Founded,
		Category: model.TeamCategory(category),
	}
	for _, p := range in.Players {
		team.Players = append(team.Players, model.TeamPlayer{
			Name:     strings.TrimSpace(p.Name),
			Number:   p.Number,
			Position: strings.TrimSpace(p.Position),
		})
	}

	// Team row and roster entries land together or not at all.
	var out model.Team
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var txErr error
		out, txErr = s.repo.Create(ctx, team)
		return txErr
	})
	if err != nil {
		// Repository surfaces domain-level errors already, do not wrap.
		s.log.Error().Err(err).Str("name", name).Msg("create team failed")
		return model.Team{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("team_id", out.ID).Msg("team created")
	return out, nil
}

func (s *teamService) GetTeam(ctx context.Context, id int64) (model.Team, error) {
	if id <= 0 {
		return model.Team{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	return s.repo.GetByID(ctx, id)
}

func (s *teamService) GetTeamByName(ctx context.Context, name string) (model.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Team{}, newInvalidInput([]FieldError{{Field: "name", Message: "must not be empty"}})
	}
	return s.repo.GetByName(ctx, name)
}

func (s *teamService) ListTeams(ctx context.Context, page repository.Page) (repository.PageResult[model.Team], error) {
	p := normalizePage(page)
	res, err := s.repo.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list teams failed")
		return repository.PageResult[model.Team]{}, err
	}
	return res, nil
}
