// Package stats folds scored predictions into per-user statistics.
//
// Every function here is a pure fold: the result does not depend on the order of the input, so callers may
// aggregate independent scopes concurrently.
package stats

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/scoring"
)

// Filter keeps a prediction when it returns true. A nil Filter keeps everything.
type Filter func(domain.Prediction) bool

// Aggregate folds one user's predictions into statistics. Predictions on matches that are missing from
// matches or not scorable count toward TotalPredictions only.
func Aggregate(predictions []domain.Prediction, matches map[string]domain.Match, keep Filter) domain.UserStatistics {
	var (
		st     domain.UserStatistics
		scored []domain.ScoredPrediction
	)

	for _, p := range dedupe(predictions) {
		if keep != nil && !keep(p) {
			continue
		}
		st.TotalPredictions++

		m, ok := matches[p.MatchID]
		if !ok {
			continue
		}

		b, err := scoring.Evaluate(p, m)
		if err != nil {
			continue
		}

		pts := b.Points()
		st.GamesPlayed++
		st.TotalPoints += pts
		if b.Outcome {
			st.CorrectResults++
		}
		if b.HomeGoals {
			st.CorrectHomeGoals++
		}
		if b.AwayGoals {
			st.CorrectAwayGoals++
		}
		if b.Exact() {
			st.ExactScores++
		}

		scored = append(scored, domain.ScoredPrediction{Prediction: p, Match: m, Points: pts})
	}

	st.Efficiency = Efficiency(st.TotalPoints, st.GamesPlayed)
	st.PerfectStreak, st.MaxPerfectStreak = PerfectStreaks(scored)

	return st
}

// AggregateByUser groups predictions by username and aggregates each group. Every name in users gets an
// entry, zeroed when the user has no predictions; predictions of other users are ignored.
func AggregateByUser(users []string, predictions []domain.Prediction, matches map[string]domain.Match, keep Filter) map[string]domain.UserStatistics {
	byUser := make(map[string][]domain.Prediction, len(users))
	for _, u := range users {
		byUser[u] = nil
	}

	for _, p := range predictions {
		if _, ok := byUser[p.Username]; ok {
			byUser[p.Username] = append(byUser[p.Username], p)
		}
	}

	out := make(map[string]domain.UserStatistics, len(byUser))
	for u, ps := range byUser {
		out[u] = Aggregate(ps, matches, keep)
	}

	return out
}

// Efficiency is total points as a percentage of MaxPoints per game played, rounded half up. It is 0 when no
// game has been played.
func Efficiency(totalPoints, gamesPlayed int) int {
	if gamesPlayed <= 0 {
		return 0
	}

	maxPoints := decimal.NewFromInt(int64(gamesPlayed * scoring.MaxPoints))
	return int(decimal.NewFromInt(int64(totalPoints) * 100).Div(maxPoints).Round(0).IntPart())
}

// PerfectStreaks returns the trailing and the longest run of exact scores, with matches ordered by kickoff
// and then by match id.
func PerfectStreaks(scored []domain.ScoredPrediction) (current, longest int) {
	sorted := slices.Clone(scored)
	slices.SortFunc(sorted, func(a, b domain.ScoredPrediction) int {
		if c := a.Match.Kickoff.Compare(b.Match.Kickoff); c != 0 {
			return c
		}
		return cmp.Compare(a.Match.MatchID, b.Match.MatchID)
	})

	for _, sp := range sorted {
		if sp.Points == scoring.MaxPoints {
			current++
			longest = max(longest, current)
		} else {
			current = 0
		}
	}

	return current, longest
}

// dedupe keeps one prediction per match, the most recently updated. Equal update times fall back to the
// higher guessed score pair so the pick does not depend on input order.
func dedupe(predictions []domain.Prediction) []domain.Prediction {
	latest := make(map[string]domain.Prediction, len(predictions))
	for _, p := range predictions {
		cur, ok := latest[p.MatchID]
		if !ok || newer(p, cur) {
			latest[p.MatchID] = p
		}
	}

	out := make([]domain.Prediction, 0, len(latest))
	for _, p := range latest {
		out = append(out, p)
	}

	return out
}

func newer(a, b domain.Prediction) bool {
	if c := a.UpdateTime.Compare(b.UpdateTime); c != 0 {
		return c > 0
	}
	if a.HomePrediction != b.HomePrediction {
		return a.HomePrediction > b.HomePrediction
	}
	return a.AwayPrediction > b.AwayPrediction
}
