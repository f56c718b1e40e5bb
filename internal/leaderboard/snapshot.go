package leaderboard

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/errors"
)

type slot string

const (
	slotCurrent  slot = "current"
	slotPrevious slot = "previous"
)

// snapshotStore keeps the two latest ranking snapshots of every scope.
type snapshotStore struct {
	redis  redis.UniversalClient
	prefix string
}

// load returns nil without error when the slot is empty. Undecodable data is reported as a stale snapshot.
func (s *snapshotStore) load(ctx context.Context, sig string, sl slot) (*domain.RankingSnapshot, error) {
	raw, err := s.redis.Get(ctx, s.key(sig, sl)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s/%s: %w", sig, sl, err)
	}

	var snap domain.RankingSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, errors.ErrStaleSnapshot.With(
			errors.WithMessagef("decode snapshot %s/%s", sig, sl),
			errors.WithCause(err),
		)
	}

	return &snap, nil
}

// rotate stores snap as the current snapshot of its scope and moves the former current one to previous.
func (s *snapshotStore) rotate(ctx context.Context, snap domain.RankingSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snap.Signature, err)
	}

	cur, prev := s.key(snap.Signature, slotCurrent), s.key(snap.Signature, slotPrevious)

	old, err := s.redis.Get(ctx, cur).Bytes()
	if err != nil && !stderrors.Is(err, redis.Nil) {
		return fmt.Errorf("get snapshot %s/%s: %w", snap.Signature, slotCurrent, err)
	}

	_, err = s.redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if old != nil {
			p.Set(ctx, prev, old, 0)
		}
		p.Set(ctx, cur, raw, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store snapshot %s: %w", snap.Signature, err)
	}

	return nil
}

func (s *snapshotStore) key(sig string, sl slot) string {
	return fmt.Sprintf("%s:%s:snapshot:%s", s.prefix, sig, sl)
}
