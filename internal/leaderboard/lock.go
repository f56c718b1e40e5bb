package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// lock serialises recomputations of one scope across instances. It waits until the scope is free or ctx
// is done. The returned func releases the lock only if it is still held by this caller.
func (s *Service) lock(ctx context.Context, sig string) (func(), error) {
	key := fmt.Sprintf("%s:%s:lock", s.prefix, sig)
	token := uuid.NewString()

	for {
		ok, err := s.redis.SetNX(ctx, key, token, s.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", sig, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %s: %w", sig, ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}

	return func() {
		ctx := context.WithoutCancel(ctx)
		if err := unlockScript.Run(ctx, s.redis, []string{key}, token).Err(); err != nil {
			slog.ErrorContext(ctx, "leaderboard: release lock failed",
				"scope", sig,
				"error", err,
			)
		}
	}, nil
}
