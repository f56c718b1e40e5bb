// Package ranking orders user statistics into rankings and tracks position changes between snapshots.
package ranking

import (
	"cmp"
	"slices"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
)

// Build orders users by total points, exact scores and correct results, all descending, then by username.
// Users equal on the first three keys share a position and the next group starts at previous position plus
// group size (1, 1, 3). PositionChange is left nil; see Diff.
func Build(statsByUser map[string]domain.UserStatistics) []domain.RankingEntry {
	entries := make([]domain.RankingEntry, 0, len(statsByUser))
	for u, st := range statsByUser {
		entries = append(entries, domain.RankingEntry{
			Username:       u,
			UserStatistics: st,
		})
	}

	slices.SortFunc(entries, Compare)

	for i := range entries {
		if i > 0 && tied(entries[i-1], entries[i]) {
			entries[i].Position = entries[i-1].Position
			continue
		}
		entries[i].Position = i + 1
	}

	return entries
}

// Compare is the ranking order: a negative result puts a before b.
func Compare(a, b domain.RankingEntry) int {
	if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
		return c
	}
	if c := cmp.Compare(b.ExactScores, a.ExactScores); c != 0 {
		return c
	}
	if c := cmp.Compare(b.CorrectResults, a.CorrectResults); c != 0 {
		return c
	}
	return cmp.Compare(a.Username, b.Username)
}

func tied(a, b domain.RankingEntry) bool {
	return a.TotalPoints == b.TotalPoints &&
		a.ExactScores == b.ExactScores &&
		a.CorrectResults == b.CorrectResults
}
