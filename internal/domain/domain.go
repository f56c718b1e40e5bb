package domain

import (
	"fmt"
	"time"
)

// Plan is a subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
	PlanVIP     Plan = "vip"
)

// Paid reports whether the plan unlocks extra championships and leagues.
func (p Plan) Paid() bool {
	return p == PlanPremium || p == PlanVIP
}

type User struct {
	Username           string
	Plan               Plan
	Country            string
	ExtraChampionships []string
	Banned             bool
}

type Championship struct {
	ChampionshipID string
	Name           string
	Country        string
	TotalRounds    int
}

// League is a private group of users following one championship. Its ranking is a view over the
// championship's predictions, restricted to Members.
type League struct {
	LeagueID       string
	Name           string
	OwnerUsername  string
	ChampionshipID string
	Members        []string
}

// Match is a fixture. HomeScore and AwayScore are nil until a result is known.
type Match struct {
	MatchID        string
	ChampionshipID string
	RoundNumber    int
	HomeTeam       string
	AwayTeam       string
	HomeScore      *int
	AwayScore      *int
	Finished       bool
	Kickoff        time.Time
}

// Prediction is a user's guessed score for a match. A user has at most one prediction per match.
type Prediction struct {
	Username       string
	MatchID        string
	ChampionshipID string
	RoundNumber    int
	HomePrediction int
	AwayPrediction int
	UpdateTime     time.Time
}

// ScoredPrediction is a prediction on a finished match together with the points it earned.
type ScoredPrediction struct {
	Prediction Prediction
	Match      Match
	Points     int
}

// UserStatistics summarises a user's predictions within a scope.
type UserStatistics struct {
	TotalPoints      int
	ExactScores      int
	CorrectResults   int
	CorrectHomeGoals int
	CorrectAwayGoals int
	TotalPredictions int
	GamesPlayed      int
	// Efficiency is an integer percentage of the maximum possible points.
	Efficiency       int
	PerfectStreak    int
	MaxPerfectStreak int
}

// RankingEntry is one row of a ranking. Users tied on points, exact scores and correct results share
// the same Position. PositionChange and PreviousPosition are nil when there is no prior snapshot entry.
type RankingEntry struct {
	Username string
	Position int
	UserStatistics
	PositionChange   *int
	PreviousPosition *int
}

type ScopeKind string

const (
	ScopeGeneral ScopeKind = "general"
	ScopeRound   ScopeKind = "round"
	ScopeLeague  ScopeKind = "league"
)

// Scope selects which users and predictions feed a ranking. Round 0 means the whole championship.
type Scope struct {
	ChampionshipID string
	Round          int
	League         *League
}

func (s Scope) Kind() ScopeKind {
	switch {
	case s.League != nil:
		return ScopeLeague
	case s.Round > 0:
		return ScopeRound
	default:
		return ScopeGeneral
	}
}

// Signature identifies the scope. Two rankings are only comparable when their signatures match.
func (s Scope) Signature() string {
	sig := s.ChampionshipID
	if s.League != nil {
		sig += ":league:" + s.League.LeagueID
	}
	if s.Round > 0 {
		sig += fmt.Sprintf(":round:%d", s.Round)
	} else {
		sig += ":general"
	}
	return sig
}

// Ranking is an ordered list of entries for a scope.
type Ranking struct {
	Scope        Scope
	CurrentRound int
	TotalRounds  int
	Entries      []RankingEntry
}

// RankingSnapshot is an immutable copy of a ranking, kept as the reference for position changes.
type RankingSnapshot struct {
	SnapshotID string
	Signature  string
	Entries    []RankingEntry
	CreateTime time.Time
}
