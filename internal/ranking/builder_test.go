package ranking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/ranking"
)

func TestBuild(t *testing.T) {
	type row struct {
		user     string
		position int
	}

	tests := map[string]struct {
		stats map[string]domain.UserStatistics
		want  []row
	}{
		"empty cohort": {
			stats: map[string]domain.UserStatistics{},
			want:  []row{},
		},
		"competition ranking skips after a tie": {
			stats: map[string]domain.UserStatistics{
				"carol": {TotalPoints: 8},
				"bob":   {TotalPoints: 10},
				"alice": {TotalPoints: 10},
			},
			want: []row{{"alice", 1}, {"bob", 1}, {"carol", 3}},
		},
		"exact scores break a tie on points": {
			stats: map[string]domain.UserStatistics{
				"alice": {TotalPoints: 10, ExactScores: 1, CorrectResults: 3},
				"bob":   {TotalPoints: 10, ExactScores: 2, CorrectResults: 2},
			},
			want: []row{{"bob", 1}, {"alice", 2}},
		},
		"correct results break a tie on points and exact scores": {
			stats: map[string]domain.UserStatistics{
				"alice": {TotalPoints: 10, ExactScores: 1, CorrectResults: 2},
				"bob":   {TotalPoints: 10, ExactScores: 1, CorrectResults: 3},
			},
			want: []row{{"bob", 1}, {"alice", 2}},
		},
		"other fields do not break ties": {
			stats: map[string]domain.UserStatistics{
				"zed":   {TotalPoints: 6, ExactScores: 0, CorrectResults: 2, CorrectHomeGoals: 2, Efficiency: 40},
				"alice": {TotalPoints: 6, ExactScores: 0, CorrectResults: 2, GamesPlayed: 4},
				"bob":   {TotalPoints: 0},
				"dan":   {TotalPoints: 0},
			},
			want: []row{{"alice", 1}, {"zed", 1}, {"bob", 3}, {"dan", 3}},
		},
		"several tie groups": {
			stats: map[string]domain.UserStatistics{
				"a": {TotalPoints: 9},
				"b": {TotalPoints: 7},
				"c": {TotalPoints: 7},
				"d": {TotalPoints: 7},
				"e": {TotalPoints: 5},
				"f": {TotalPoints: 3},
				"g": {TotalPoints: 3},
			},
			want: []row{{"a", 1}, {"b", 2}, {"c", 2}, {"d", 2}, {"e", 5}, {"f", 6}, {"g", 6}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := ranking.Build(tt.stats)

			rows := make([]row, 0, len(got))
			for _, e := range got {
				rows = append(rows, row{e.Username, e.Position})
				assert.Nil(t, e.PositionChange)
				assert.Equal(t, tt.stats[e.Username], e.UserStatistics)
			}
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestBuild_Idempotent(t *testing.T) {
	st := map[string]domain.UserStatistics{
		"alice": {TotalPoints: 10, ExactScores: 1},
		"bob":   {TotalPoints: 10, ExactScores: 1},
		"carol": {TotalPoints: 12},
		"dan":   {TotalPoints: 3, CorrectResults: 1},
		"erin":  {TotalPoints: 3, CorrectResults: 1},
		"frank": {},
	}

	first := ranking.Build(st)
	for range 20 {
		require.Equal(t, first, ranking.Build(st))
	}
}

func TestCompare(t *testing.T) {
	a := domain.RankingEntry{Username: "alice", UserStatistics: domain.UserStatistics{TotalPoints: 5}}
	b := domain.RankingEntry{Username: "bob", UserStatistics: domain.UserStatistics{TotalPoints: 5}}
	c := domain.RankingEntry{Username: "carol", UserStatistics: domain.UserStatistics{TotalPoints: 6}}

	assert.Negative(t, ranking.Compare(a, b))
	assert.Positive(t, ranking.Compare(b, a))
	assert.Negative(t, ranking.Compare(c, a))
	assert.Zero(t, ranking.Compare(a, a))
}
