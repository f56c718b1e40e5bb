// Package prediction takes users' guesses and match results.
package prediction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/errors"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/event"
)

// LockDelay is how long after kickoff a prediction can still be changed.
const LockDelay = time.Minute

type Repo interface {
	GetMatch(ctx context.Context, matchID string) (*domain.Match, error)
	ListMatches(ctx context.Context, championshipID string) ([]domain.Match, error)
	UpsertPrediction(ctx context.Context, p domain.Prediction) error
	SetMatchResult(ctx context.Context, matchID string, home, away int) (*domain.Match, error)
}

type Config struct {
	Repo     Repo
	EventBus *event.Bus
	Now      func() time.Time
}

type Service struct {
	repo Repo
	eb   *event.Bus
	now  func() time.Time
}

func NewService(c Config) *Service {
	now := c.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo: c.Repo,
		eb:   c.EventBus,
		now:  now,
	}
}

type SubmitPredictionRequest struct {
	Username       string
	MatchID        string
	HomePrediction int
	AwayPrediction int
}

// SubmitPrediction stores or replaces the user's guess for a match that has not kicked off yet.
func (s *Service) SubmitPrediction(ctx context.Context, req SubmitPredictionRequest) (*domain.Prediction, error) {
	if req.Username == "" || req.MatchID == "" {
		return nil, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("username and match_id are required"))
	}
	if req.HomePrediction < 0 || req.AwayPrediction < 0 {
		return nil, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("predicted goals must not be negative"))
	}

	m, err := s.repo.GetMatch(ctx, req.MatchID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if IsLocked(*m, now) {
		return nil, errors.ErrPredictionLocked.With(errors.WithMessagef("match %s is closed for predictions", m.MatchID))
	}

	p := domain.Prediction{
		Username:       req.Username,
		MatchID:        m.MatchID,
		ChampionshipID: m.ChampionshipID,
		RoundNumber:    m.RoundNumber,
		HomePrediction: req.HomePrediction,
		AwayPrediction: req.AwayPrediction,
		UpdateTime:     now,
	}

	if err := s.repo.UpsertPrediction(ctx, p); err != nil {
		return nil, err
	}

	return &p, nil
}

// IsLocked reports whether predictions on m are closed at now.
func IsLocked(m domain.Match, now time.Time) bool {
	if m.Finished {
		return true
	}
	if m.Kickoff.IsZero() {
		return false
	}
	return !now.Before(m.Kickoff.Add(LockDelay))
}

type FinishMatchRequest struct {
	MatchID   string
	HomeScore int
	AwayScore int
}

// FinishMatch records the final score and announces it, so rankings get recomputed.
func (s *Service) FinishMatch(ctx context.Context, req FinishMatchRequest) (*domain.Match, error) {
	if req.HomeScore < 0 || req.AwayScore < 0 {
		return nil, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("scores must not be negative"))
	}

	m, err := s.repo.SetMatchResult(ctx, req.MatchID, req.HomeScore, req.AwayScore)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "prediction: match finished",
		"match_id", m.MatchID,
		"championship_id", m.ChampionshipID,
		"round", m.RoundNumber,
	)

	s.eb.Publish(ctx, domain.EventMatchFinished{Match: *m})

	return m, nil
}

// CurrentRound returns the round being played in a championship.
func (s *Service) CurrentRound(ctx context.Context, championshipID string) (int, error) {
	matches, err := s.repo.ListMatches(ctx, championshipID)
	if err != nil {
		return 0, fmt.Errorf("list matches: %w", err)
	}

	return CurrentRound(matches), nil
}

// CurrentRound is the lowest round with an unfinished match. Once every match is finished it is the last
// round, and 1 when there are no matches at all.
func CurrentRound(matches []domain.Match) int {
	var open, last int
	for _, m := range matches {
		last = max(last, m.RoundNumber)
		if !m.Finished && (open == 0 || m.RoundNumber < open) {
			open = m.RoundNumber
		}
	}

	switch {
	case open > 0:
		return open
	case last > 0:
		return last
	default:
		return 1
	}
}
