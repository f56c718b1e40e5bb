package api_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/api"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/event"
)

func TestAPI_PublishRankingUpdated(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rs := miniredis.RunT(t)
	rc := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{rs.Addr()},
	})
	require.NoError(t, rc.Ping(ctx).Err(), "should be able to ping redis")

	sub := rc.Subscribe(ctx, "callclub:user:alice", "callclub:user:bob")
	defer sub.Close()
	for range 2 {
		_, err := sub.Receive(ctx)
		require.NoError(t, err)
	}

	eb := event.NewBus()
	api.New(api.Config{
		EventBus:     eb,
		Rankings:     &stubRankings{},
		Predictions:  &stubPredictions{},
		Redis:        rc,
		PubsubPrefix: "callclub",
	})

	eb.Publish(ctx, domain.EventRankingUpdated{Ranking: brasileiraoRanking})
	eb.Stop()

	got := make(map[string]api.Notification)
	for range 2 {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)

		var n api.Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &n))
		got[msg.Channel] = n
	}

	require.Len(t, got, 2)
	for channel, n := range got {
		assert.Equal(t, domain.EventNameRankingUpdated, n.Event, channel)

		data := n.Data.(map[string]any)
		assert.Equal(t, "brasileirao", data["championship_id"], channel)
		assert.Len(t, data["entries"], 2, channel)
	}
}
