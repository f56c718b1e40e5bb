// Package scoring converts a score guess and a final result into points.
//
// The point values are part of the public contract: a round scored with one rule must recompute to the same
// points later, otherwise historical rankings change.
package scoring

import (
	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/errors"
)

const (
	PointsOutcome   = 3
	PointsHomeGoals = 1
	PointsAwayGoals = 1
	MaxPoints       = PointsOutcome + PointsHomeGoals + PointsAwayGoals
)

type Outcome int

const (
	HomeWin Outcome = iota + 1
	Draw
	AwayWin
)

func (o Outcome) String() string {
	switch o {
	case HomeWin:
		return "home_win"
	case Draw:
		return "draw"
	case AwayWin:
		return "away_win"
	default:
		return "unknown"
	}
}

func OutcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return HomeWin
	case home < away:
		return AwayWin
	default:
		return Draw
	}
}

// Breakdown tells which parts of a prediction were right.
type Breakdown struct {
	Outcome   bool
	HomeGoals bool
	AwayGoals bool
}

func (b Breakdown) Exact() bool {
	return b.HomeGoals && b.AwayGoals
}

func (b Breakdown) Points() int {
	var p int
	if b.Outcome {
		p += PointsOutcome
	}
	if b.HomeGoals {
		p += PointsHomeGoals
	}
	if b.AwayGoals {
		p += PointsAwayGoals
	}
	return p
}

// Evaluate compares a prediction with the match result. It returns errors.ErrNotScorable when the match is not
// finished, has no final score, or either side holds a negative number.
func Evaluate(p domain.Prediction, m domain.Match) (Breakdown, error) {
	if !m.Finished || m.HomeScore == nil || m.AwayScore == nil {
		return Breakdown{}, errors.ErrNotScorable.With(
			errors.WithMessagef("match %s has no final result", m.MatchID))
	}

	home, away := *m.HomeScore, *m.AwayScore
	if home < 0 || away < 0 || p.HomePrediction < 0 || p.AwayPrediction < 0 {
		return Breakdown{}, errors.ErrNotScorable.With(
			errors.WithMessagef("negative score: match=%s result=%d-%d prediction=%d-%d",
				m.MatchID, home, away, p.HomePrediction, p.AwayPrediction))
	}

	return Breakdown{
		Outcome:   OutcomeOf(p.HomePrediction, p.AwayPrediction) == OutcomeOf(home, away),
		HomeGoals: p.HomePrediction == home,
		AwayGoals: p.AwayPrediction == away,
	}, nil
}

// Score returns the points a prediction earns: 3 for the right outcome, plus 1 for each side's goals.
// Both goal counts right means the outcome is right too, so 2 is never returned.
func Score(p domain.Prediction, m domain.Match) (int, error) {
	b, err := Evaluate(p, m)
	if err != nil {
		return 0, err
	}

	return b.Points(), nil
}
