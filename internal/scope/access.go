package scope

import (
	"slices"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
)

// AccessType is how a user reaches a championship.
type AccessType string

const (
	AccessNone     AccessType = ""
	AccessNational AccessType = "national"
	AccessExtra    AccessType = "extra"
)

const defaultNationalChampionship = "brasileirao"

var nationalChampionships = map[string]string{
	"BR": "brasileirao",
	"IT": "serie_a",
	"ES": "la_liga",
	"EN": "premier_league",
	"DE": "bundesliga",
	"FR": "ligue_1",
	"PT": "primeira_liga",
	"AR": "liga_argentina",
	"NL": "eredivisie",
	"US": "mls",
}

// NationalChampionship returns the championship every user of a country can play for free.
func NationalChampionship(country string) string {
	if c, ok := nationalChampionships[country]; ok {
		return c
	}
	return defaultNationalChampionship
}

// AccessRights answers whether a user may appear in a championship's rankings.
type AccessRights interface {
	HasAccess(username, championshipID string) bool
}

// PlanAccess derives access from users' plans: the national championship is always open, extra
// championships need a paid plan.
type PlanAccess struct {
	users map[string]domain.User
}

func NewPlanAccess(users []domain.User) *PlanAccess {
	m := make(map[string]domain.User, len(users))
	for _, u := range users {
		m[u.Username] = u
	}
	return &PlanAccess{users: m}
}

func (a *PlanAccess) AccessType(username, championshipID string) AccessType {
	u, ok := a.users[username]
	if !ok || u.Banned {
		return AccessNone
	}

	if NationalChampionship(u.Country) == championshipID {
		return AccessNational
	}

	if u.Plan.Paid() && slices.Contains(u.ExtraChampionships, championshipID) {
		return AccessExtra
	}

	return AccessNone
}

func (a *PlanAccess) HasAccess(username, championshipID string) bool {
	return a.AccessType(username, championshipID) != AccessNone
}
