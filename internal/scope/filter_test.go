package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/scope"
)

var users = []domain.User{
	{Username: "alice", Plan: domain.PlanFree, Country: "BR"},
	{Username: "bob", Plan: domain.PlanPremium, Country: "IT", ExtraChampionships: []string{"brasileirao"}},
	{Username: "carol", Plan: domain.PlanFree, Country: "IT", ExtraChampionships: []string{"brasileirao"}},
	{Username: "dan", Plan: domain.PlanVIP, Country: "BR", Banned: true},
	{Username: "erin", Plan: domain.PlanFree, Country: "BR"},
}

var predictions = []domain.Prediction{
	{Username: "alice", MatchID: "m1", ChampionshipID: "brasileirao", RoundNumber: 1},
	{Username: "alice", MatchID: "m2", ChampionshipID: "brasileirao", RoundNumber: 2},
	{Username: "alice", MatchID: "x1", ChampionshipID: "serie_a", RoundNumber: 1},
	{Username: "bob", MatchID: "m1", ChampionshipID: "brasileirao", RoundNumber: 1},
	{Username: "carol", MatchID: "m1", ChampionshipID: "brasileirao", RoundNumber: 1},
	{Username: "dan", MatchID: "m1", ChampionshipID: "brasileirao", RoundNumber: 1},
	{Username: "erin", MatchID: "m2", ChampionshipID: "brasileirao", RoundNumber: 2},
}

func TestFilter(t *testing.T) {
	type key struct {
		user  string
		match string
	}

	league := &domain.League{LeagueID: "l1", ChampionshipID: "brasileirao", Members: []string{"alice", "bob", "carol", "zed"}}

	tests := map[string]struct {
		scope     domain.Scope
		wantUsers []string
		wantPreds []key
	}{
		"general": {
			scope:     domain.Scope{ChampionshipID: "brasileirao"},
			wantUsers: []string{"alice", "bob", "erin"},
			wantPreds: []key{{"alice", "m1"}, {"alice", "m2"}, {"bob", "m1"}, {"erin", "m2"}},
		},
		"round": {
			scope:     domain.Scope{ChampionshipID: "brasileirao", Round: 2},
			wantUsers: []string{"alice", "bob", "erin"},
			wantPreds: []key{{"alice", "m2"}, {"erin", "m2"}},
		},
		"league": {
			scope:     domain.Scope{ChampionshipID: "brasileirao", League: league},
			wantUsers: []string{"alice", "bob"},
			wantPreds: []key{{"alice", "m1"}, {"alice", "m2"}, {"bob", "m1"}},
		},
		"league round": {
			scope:     domain.Scope{ChampionshipID: "brasileirao", Round: 1, League: league},
			wantUsers: []string{"alice", "bob"},
			wantPreds: []key{{"alice", "m1"}, {"bob", "m1"}},
		},
		"other championship": {
			scope:     domain.Scope{ChampionshipID: "serie_a"},
			wantUsers: []string{"bob", "carol"},
			wantPreds: []key{},
		},
		"unknown championship": {
			scope:     domain.Scope{ChampionshipID: "nowhere"},
			wantUsers: []string{},
			wantPreds: []key{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			gotUsers, gotPreds := scope.Filter(users, predictions, tt.scope, scope.NewPlanAccess(users))

			assert.Equal(t, tt.wantUsers, scope.Usernames(gotUsers))

			keys := make([]key, 0, len(gotPreds))
			for _, p := range gotPreds {
				keys = append(keys, key{p.Username, p.MatchID})
			}
			assert.Equal(t, tt.wantPreds, keys)
		})
	}
}

func TestPlanAccess(t *testing.T) {
	a := scope.NewPlanAccess(users)

	tests := map[string]struct {
		user, championship string
		want               scope.AccessType
	}{
		"national for free user":          {"alice", "brasileirao", scope.AccessNational},
		"free user cannot use extras":     {"carol", "brasileirao", scope.AccessNone},
		"premium user with an extra":      {"bob", "brasileirao", scope.AccessExtra},
		"premium user national":           {"bob", "serie_a", scope.AccessNational},
		"premium user without that extra": {"bob", "la_liga", scope.AccessNone},
		"banned user":                     {"dan", "brasileirao", scope.AccessNone},
		"unknown user":                    {"zed", "brasileirao", scope.AccessNone},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, a.AccessType(tt.user, tt.championship))
		})
	}
}

func TestNationalChampionship(t *testing.T) {
	assert.Equal(t, "serie_a", scope.NationalChampionship("IT"))
	assert.Equal(t, "mls", scope.NationalChampionship("US"))
	assert.Equal(t, "brasileirao", scope.NationalChampionship("XX"))
}
