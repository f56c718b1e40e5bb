// Package api exposes rankings, statistics and predictions over HTTP and gRPC, and pushes ranking updates
// to users through redis pub/sub.
package api

import (
	"context"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/event"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/leaderboard"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/prediction"
)

type Rankings interface {
	GetRanking(ctx context.Context, req leaderboard.GetRankingRequest) (*domain.Ranking, error)
	GetStatistics(ctx context.Context, req leaderboard.GetStatisticsRequest) (*domain.UserStatistics, error)
}

type Predictions interface {
	SubmitPrediction(ctx context.Context, req prediction.SubmitPredictionRequest) (*domain.Prediction, error)
	FinishMatch(ctx context.Context, req prediction.FinishMatchRequest) (*domain.Match, error)
	CurrentRound(ctx context.Context, championshipID string) (int, error)
}

type Redis interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type Config struct {
	// GRPC, when set, gets the RankingService registered.
	GRPC         *grpc.Server
	EventBus     *event.Bus
	Rankings     Rankings
	Predictions  Predictions
	Redis        Redis
	PubsubPrefix string
}

type API struct {
	rankings    Rankings
	predictions Predictions

	redis  Redis
	prefix string
}

func New(c Config) *API {
	a := &API{
		rankings:    c.Rankings,
		predictions: c.Predictions,
		redis:       c.Redis,
		prefix:      c.PubsubPrefix,
	}

	if c.GRPC != nil {
		registerRankingService(c.GRPC, a)
	}

	c.EventBus.Subscribe(domain.EventNameRankingUpdated, func(ctx context.Context, e event.Event) error {
		return a.PublishRankingUpdated(ctx, e.(domain.EventRankingUpdated))
	})

	return a
}
