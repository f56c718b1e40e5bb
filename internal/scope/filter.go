// Package scope restricts users and predictions to the cohort of a ranking.
package scope

import (
	"slices"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/stats"
)

// Filter returns the users eligible for s and the predictions that feed its ranking:
//   - users must not be banned and must have access to the championship;
//   - league scopes keep only league members;
//   - predictions must belong to the championship and to a kept user, and to the round for round scopes.
//
// Both results keep the input order.
func Filter(users []domain.User, predictions []domain.Prediction, s domain.Scope, access AccessRights) ([]domain.User, []domain.Prediction) {
	kept := make(map[string]struct{}, len(users))
	outUsers := make([]domain.User, 0, len(users))

	for _, u := range users {
		if u.Banned || !access.HasAccess(u.Username, s.ChampionshipID) {
			continue
		}
		if s.League != nil && !slices.Contains(s.League.Members, u.Username) {
			continue
		}
		if _, dup := kept[u.Username]; dup {
			continue
		}

		kept[u.Username] = struct{}{}
		outUsers = append(outUsers, u)
	}

	keep := Predicate(s)
	outPreds := make([]domain.Prediction, 0, len(predictions))
	for _, p := range predictions {
		if _, ok := kept[p.Username]; ok && keep(p) {
			outPreds = append(outPreds, p)
		}
	}

	return outUsers, outPreds
}

// Predicate keeps predictions of the scope's championship, and of its round when the scope has one.
func Predicate(s domain.Scope) stats.Filter {
	return func(p domain.Prediction) bool {
		if p.ChampionshipID != s.ChampionshipID {
			return false
		}
		return s.Round <= 0 || p.RoundNumber == s.Round
	}
}

// Usernames lists the names of users in order.
func Usernames(users []domain.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}
