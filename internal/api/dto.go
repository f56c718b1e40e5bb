package api

import (
	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
)

type (
	Statistics struct {
		TotalPoints      int `json:"total_points"`
		ExactScores      int `json:"exact_scores"`
		CorrectResults   int `json:"correct_results"`
		CorrectHomeGoals int `json:"correct_home_goals"`
		CorrectAwayGoals int `json:"correct_away_goals"`
		TotalPredictions int `json:"total_predictions"`
		GamesPlayed      int `json:"games_played"`
		Efficiency       int `json:"efficiency"`
		PerfectStreak    int `json:"perfect_streak"`
		MaxPerfectStreak int `json:"max_perfect_streak"`
	}

	RankingEntry struct {
		Username string `json:"username"`
		Position int    `json:"position"`
		// PositionChange is null for new entrants and when there is nothing to compare with.
		PositionChange   *int `json:"position_change"`
		PreviousPosition *int `json:"previous_position"`
		Statistics
	}

	Ranking struct {
		ChampionshipID string         `json:"championship_id"`
		Scope          string         `json:"scope"`
		Round          int            `json:"round,omitempty"`
		LeagueID       string         `json:"league_id,omitempty"`
		CurrentRound   int            `json:"current_round"`
		TotalRounds    int            `json:"total_rounds"`
		Entries        []RankingEntry `json:"entries"`
	}

	UserStatistics struct {
		Username       string `json:"username"`
		ChampionshipID string `json:"championship_id"`
		Round          int    `json:"round,omitempty"`
		Statistics
	}

	SubmitPredictionRequest struct {
		Username       string `json:"username" binding:"required"`
		MatchID        string `json:"match_id" binding:"required"`
		HomePrediction *int   `json:"home_prediction" binding:"required"`
		AwayPrediction *int   `json:"away_prediction" binding:"required"`
	}

	Prediction struct {
		Username       string `json:"username"`
		MatchID        string `json:"match_id"`
		ChampionshipID string `json:"championship_id"`
		RoundNumber    int    `json:"round_number"`
		HomePrediction int    `json:"home_prediction"`
		AwayPrediction int    `json:"away_prediction"`
		UpdateTime     string `json:"update_time"`
	}

	MatchResultRequest struct {
		HomeScore *int `json:"home_score" binding:"required"`
		AwayScore *int `json:"away_score" binding:"required"`
	}

	Match struct {
		MatchID        string `json:"match_id"`
		ChampionshipID string `json:"championship_id"`
		RoundNumber    int    `json:"round_number"`
		HomeTeam       string `json:"home_team"`
		AwayTeam       string `json:"away_team"`
		HomeScore      *int   `json:"home_score"`
		AwayScore      *int   `json:"away_score"`
		Finished       bool   `json:"is_finished"`
	}

	CurrentRound struct {
		ChampionshipID string `json:"championship_id"`
		CurrentRound   int    `json:"current_round"`
	}
)

func toStatistics(s domain.UserStatistics) Statistics {
	return Statistics{
		TotalPoints:      s.TotalPoints,
		ExactScores:      s.ExactScores,
		CorrectResults:   s.CorrectResults,
		CorrectHomeGoals: s.CorrectHomeGoals,
		CorrectAwayGoals: s.CorrectAwayGoals,
		TotalPredictions: s.TotalPredictions,
		GamesPlayed:      s.GamesPlayed,
		Efficiency:       s.Efficiency,
		PerfectStreak:    s.PerfectStreak,
		MaxPerfectStreak: s.MaxPerfectStreak,
	}
}

func toRanking(r domain.Ranking) Ranking {
	out := Ranking{
		ChampionshipID: r.Scope.ChampionshipID,
		Scope:          string(r.Scope.Kind()),
		Round:          r.Scope.Round,
		CurrentRound:   r.CurrentRound,
		TotalRounds:    r.TotalRounds,
		Entries:        make([]RankingEntry, 0, len(r.Entries)),
	}
	if r.Scope.League != nil {
		out.LeagueID = r.Scope.League.LeagueID
	}

	for _, e := range r.Entries {
		out.Entries = append(out.Entries, RankingEntry{
			Username:         e.Username,
			Position:         e.Position,
			PositionChange:   e.PositionChange,
			PreviousPosition: e.PreviousPosition,
			Statistics:       toStatistics(e.UserStatistics),
		})
	}

	return out
}

func toMatch(m domain.Match) Match {
	return Match{
		MatchID:        m.MatchID,
		ChampionshipID: m.ChampionshipID,
		RoundNumber:    m.RoundNumber,
		HomeTeam:       m.HomeTeam,
		AwayTeam:       m.AwayTeam,
		HomeScore:      m.HomeScore,
		AwayScore:      m.AwayScore,
		Finished:       m.Finished,
	}
}
