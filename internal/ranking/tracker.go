package ranking

import (
	"slices"
	"time"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/errors"
)

// NewSnapshot copies entries into a snapshot for scope.
func NewSnapshot(id string, scope domain.Scope, entries []domain.RankingEntry, now time.Time) domain.RankingSnapshot {
	return domain.RankingSnapshot{
		SnapshotID: id,
		Signature:  scope.Signature(),
		Entries:    slices.Clone(entries),
		CreateTime: now,
	}
}

// CheckSnapshot returns errors.ErrStaleSnapshot when prev cannot serve as the reference for scope: it is
// nil, belongs to another scope, or holds duplicate users or non-positive positions.
func CheckSnapshot(scope domain.Scope, prev *domain.RankingSnapshot) error {
	if prev == nil {
		return errors.ErrStaleSnapshot.With(errors.WithMessagef("no previous snapshot for %s", scope.Signature()))
	}

	if prev.Signature != scope.Signature() {
		return errors.ErrStaleSnapshot.With(
			errors.WithMessagef("snapshot %s is for %s, want %s", prev.SnapshotID, prev.Signature, scope.Signature()))
	}

	seen := make(map[string]struct{}, len(prev.Entries))
	for _, e := range prev.Entries {
		if _, dup := seen[e.Username]; dup || e.Position < 1 {
			return errors.ErrStaleSnapshot.With(
				errors.WithMessagef("snapshot %s is corrupt at user %q", prev.SnapshotID, e.Username))
		}
		seen[e.Username] = struct{}{}
	}

	return nil
}

// Diff annotates a copy of current with the movement since prev: PositionChange is the previous position
// minus the current one, so positive means the user moved up. Users absent from prev get nil. When prev is
// unusable (see CheckSnapshot) every entry gets nil and the reason is returned for logging only.
func Diff(scope domain.Scope, current []domain.RankingEntry, prev *domain.RankingSnapshot) ([]domain.RankingEntry, error) {
	out := slices.Clone(current)
	for i := range out {
		out[i].PositionChange = nil
		out[i].PreviousPosition = nil
	}

	if err := CheckSnapshot(scope, prev); err != nil {
		return out, err
	}

	before := make(map[string]int, len(prev.Entries))
	for _, e := range prev.Entries {
		before[e.Username] = e.Position
	}

	for i := range out {
		p, ok := before[out[i].Username]
		if !ok {
			continue
		}

		change := p - out[i].Position
		out[i].PositionChange = &change
		out[i].PreviousPosition = &p
	}

	return out, nil
}

// Unchanged reports whether current holds the same standings as snap: the same users in the same order, at
// the same positions and with the same statistics. Movement annotations are ignored.
func Unchanged(current []domain.RankingEntry, snap *domain.RankingSnapshot) bool {
	if snap == nil || len(current) != len(snap.Entries) {
		return false
	}

	for i, e := range current {
		p := snap.Entries[i]
		if e.Username != p.Username || e.Position != p.Position || e.UserStatistics != p.UserStatistics {
			return false
		}
	}

	return true
}
