// Package store reads and writes championships, users, leagues, matches and predictions in postgres.
package store

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/errors"
)

const foreignKeyViolation = "23503"

type Config struct {
	DB *pgxpool.Pool
}

type Store struct {
	db *pgxpool.Pool
}

func New(c Config) *Store {
	return &Store{db: c.DB}
}

func (s *Store) GetChampionship(ctx context.Context, championshipID string) (*domain.Championship, error) {
	const stmt = `
SELECT championship_id, name, country, total_rounds
FROM championships
WHERE championship_id = $1;`

	var c domain.Championship
	err := s.db.QueryRow(ctx, stmt, championshipID).Scan(&c.ChampionshipID, &c.Name, &c.Country, &c.TotalRounds)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.ErrNotFound.With(errors.WithMessagef("championship not found: %s", championshipID))
	}
	if err != nil {
		return nil, fmt.Errorf("get championship %s: %w", championshipID, err)
	}

	return &c, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	const stmt = `
SELECT username, plan, country, extra_championships, is_banned
FROM users
ORDER BY username;`

	rows, err := s.db.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.User, error) {
		var (
			u    domain.User
			plan string
		)
		if err := r.Scan(&u.Username, &plan, &u.Country, &u.ExtraChampionships, &u.Banned); err != nil {
			return domain.User{}, err
		}
		u.Plan = domain.Plan(plan)
		return u, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

func (s *Store) GetLeague(ctx context.Context, leagueID string) (*domain.League, error) {
	const stmt = `
SELECT l.league_id, l.name, l.owner_username, l.championship_id,
       COALESCE(array_agg(m.username ORDER BY m.username) FILTER (WHERE m.username IS NOT NULL), '{}')
FROM leagues l
LEFT JOIN league_members m ON m.league_id = l.league_id
WHERE l.league_id = $1
GROUP BY l.league_id;`

	var l domain.League
	err := s.db.QueryRow(ctx, stmt, leagueID).Scan(&l.LeagueID, &l.Name, &l.OwnerUsername, &l.ChampionshipID, &l.Members)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.ErrNotFound.With(errors.WithMessagef("league not found: %s", leagueID))
	}
	if err != nil {
		return nil, fmt.Errorf("get league %s: %w", leagueID, err)
	}

	return &l, nil
}

func (s *Store) ListLeagues(ctx context.Context, championshipID string) ([]domain.League, error) {
	const stmt = `
SELECT l.league_id, l.name, l.owner_username, l.championship_id,
       COALESCE(array_agg(m.username ORDER BY m.username) FILTER (WHERE m.username IS NOT NULL), '{}')
FROM leagues l
LEFT JOIN league_members m ON m.league_id = l.league_id
WHERE l.championship_id = $1
GROUP BY l.league_id
ORDER BY l.league_id;`

	rows, err := s.db.Query(ctx, stmt, championshipID)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	leagues, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.League, error) {
		var l domain.League
		err := r.Scan(&l.LeagueID, &l.Name, &l.OwnerUsername, &l.ChampionshipID, &l.Members)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	return leagues, nil
}

const matchColumns = `match_id, championship_id, round_number, home_team, away_team, home_score, away_score, is_finished, kickoff`

func scanMatch(r pgx.Row) (domain.Match, error) {
	var m domain.Match
	err := r.Scan(&m.MatchID, &m.ChampionshipID, &m.RoundNumber, &m.HomeTeam, &m.AwayTeam,
		&m.HomeScore, &m.AwayScore, &m.Finished, &m.Kickoff)
	return m, err
}

func (s *Store) ListMatches(ctx context.Context, championshipID string) ([]domain.Match, error) {
	stmt := `SELECT ` + matchColumns + `
FROM matches
WHERE championship_id = $1
ORDER BY round_number, kickoff, match_id;`

	rows, err := s.db.Query(ctx, stmt, championshipID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	matches, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.Match, error) {
		return scanMatch(r)
	})
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	return matches, nil
}

func (s *Store) GetMatch(ctx context.Context, matchID string) (*domain.Match, error) {
	stmt := `SELECT ` + matchColumns + ` FROM matches WHERE match_id = $1;`

	m, err := scanMatch(s.db.QueryRow(ctx, stmt, matchID))
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.ErrNotFound.With(errors.WithMessagef("match not found: %s", matchID))
	}
	if err != nil {
		return nil, fmt.Errorf("get match %s: %w", matchID, err)
	}

	return &m, nil
}

// SetMatchResult stores the final score of a match and marks it finished. Calling it again corrects the result.
func (s *Store) SetMatchResult(ctx context.Context, matchID string, home, away int) (*domain.Match, error) {
	stmt := `
UPDATE matches
SET home_score = $2, away_score = $3, is_finished = TRUE
WHERE match_id = $1
RETURNING ` + matchColumns + `;`

	m, err := scanMatch(s.db.QueryRow(ctx, stmt, matchID, home, away))
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.ErrNotFound.With(errors.WithMessagef("match not found: %s", matchID))
	}
	if err != nil {
		return nil, fmt.Errorf("set match result %s: %w", matchID, err)
	}

	return &m, nil
}

func (s *Store) ListPredictions(ctx context.Context, championshipID string) ([]domain.Prediction, error) {
	const stmt = `
SELECT username, match_id, championship_id, round_number, home_prediction, away_prediction, update_time
FROM predictions
WHERE championship_id = $1;`

	rows, err := s.db.Query(ctx, stmt, championshipID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	preds, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.Prediction, error) {
		var p domain.Prediction
		err := r.Scan(&p.Username, &p.MatchID, &p.ChampionshipID, &p.RoundNumber,
			&p.HomePrediction, &p.AwayPrediction, &p.UpdateTime)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	return preds, nil
}

// UpsertPrediction stores a user's guess for a match, replacing the previous one.
func (s *Store) UpsertPrediction(ctx context.Context, p domain.Prediction) error {
	const stmt = `
INSERT INTO predictions (username, match_id, championship_id, round_number, home_prediction, away_prediction, update_time)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (username, match_id) DO UPDATE
SET home_prediction = EXCLUDED.home_prediction,
    away_prediction = EXCLUDED.away_prediction,
    update_time     = EXCLUDED.update_time;`

	_, err := s.db.Exec(ctx, stmt, p.Username, p.MatchID, p.ChampionshipID, p.RoundNumber,
		p.HomePrediction, p.AwayPrediction, p.UpdateTime)
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return errors.ErrNotFound.With(errors.WithMessagef("user not found: %s", p.Username))
	}
	if err != nil {
		return fmt.Errorf("upsert prediction %s/%s: %w", p.Username, p.MatchID, err)
	}

	return nil
}
