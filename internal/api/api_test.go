package api_test

import (
	"context"
	"sync"
	"time"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/leaderboard"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/prediction"
)

func ptr(i int) *int { return &i }

var brasileiraoRanking = domain.Ranking{
	Scope:        domain.Scope{ChampionshipID: "brasileirao"},
	CurrentRound: 2,
	TotalRounds:  38,
	Entries: []domain.RankingEntry{
		{
			Username:         "alice",
			Position:         1,
			UserStatistics:   domain.UserStatistics{TotalPoints: 8, ExactScores: 1, CorrectResults: 2, GamesPlayed: 2, TotalPredictions: 2, Efficiency: 80},
			PositionChange:   ptr(1),
			PreviousPosition: ptr(2),
		},
		{
			Username:       "bob",
			Position:       2,
			UserStatistics: domain.UserStatistics{TotalPoints: 5, ExactScores: 1, CorrectResults: 1, GamesPlayed: 2, TotalPredictions: 2, Efficiency: 50},
		},
	},
}

type stubRankings struct {
	mu       sync.Mutex
	ranking  *domain.Ranking
	stats    *domain.UserStatistics
	err      error
	requests []any
}

func (s *stubRankings) GetRanking(_ context.Context, req leaderboard.GetRankingRequest) (*domain.Ranking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	return s.ranking, s.err
}

func (s *stubRankings) GetStatistics(_ context.Context, req leaderboard.GetStatisticsRequest) (*domain.UserStatistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	return s.stats, s.err
}

type stubPredictions struct {
	mu       sync.Mutex
	err      error
	round    int
	requests []any
}

func (s *stubPredictions) SubmitPrediction(_ context.Context, req prediction.SubmitPredictionRequest) (*domain.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}

	return &domain.Prediction{
		Username:       req.Username,
		MatchID:        req.MatchID,
		ChampionshipID: "brasileirao",
		RoundNumber:    2,
		HomePrediction: req.HomePrediction,
		AwayPrediction: req.AwayPrediction,
		UpdateTime:     time.Date(2024, 5, 4, 15, 0, 0, 0, time.UTC),
	}, nil
}

func (s *stubPredictions) FinishMatch(_ context.Context, req prediction.FinishMatchRequest) (*domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}

	return &domain.Match{
		MatchID:        req.MatchID,
		ChampionshipID: "brasileirao",
		RoundNumber:    2,
		HomeTeam:       "Flamengo",
		AwayTeam:       "Palmeiras",
		HomeScore:      &req.HomeScore,
		AwayScore:      &req.AwayScore,
		Finished:       true,
	}, nil
}

func (s *stubPredictions) CurrentRound(context.Context, string) (int, error) {
	return s.round, s.err
}
