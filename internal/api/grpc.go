package api

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/errors"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/leaderboard"
)

const rankingServiceName = "callclub.v1.RankingService"

// RankingServiceServer serves rankings over gRPC. Requests and responses are google.protobuf.Struct values
// carrying the same fields as the HTTP API.
type RankingServiceServer interface {
	GetRanking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetStatistics(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var rankingServiceDesc = grpc.ServiceDesc{
	ServiceName: rankingServiceName,
	HandlerType: (*RankingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetRanking", Handler: unaryHandler("GetRanking", RankingServiceServer.GetRanking)},
		{MethodName: "GetStatistics", Handler: unaryHandler("GetStatistics", RankingServiceServer.GetStatistics)},
	},
	Metadata: "callclub/v1/ranking.proto",
}

func registerRankingService(s grpc.ServiceRegistrar, srv RankingServiceServer) {
	s.RegisterService(&rankingServiceDesc, srv)
}

func unaryHandler(method string, call func(RankingServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := fmt.Sprintf("/%s/%s", rankingServiceName, method)

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(RankingServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(RankingServiceServer), ctx, req.(*structpb.Struct))
		})
	}
}

func (a *API) GetRanking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	round, err := intField(req, "round")
	if err != nil {
		return nil, err
	}

	r, err := a.rankings.GetRanking(ctx, leaderboard.GetRankingRequest{
		ChampionshipID: stringField(req, "championship_id"),
		LeagueID:       stringField(req, "league_id"),
		Round:          round,
		Viewer:         stringField(req, "viewer"),
	})
	if err != nil {
		return nil, err
	}

	return toStruct(toRanking(*r))
}

func (a *API) GetStatistics(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	round, err := intField(req, "round")
	if err != nil {
		return nil, err
	}

	in := leaderboard.GetStatisticsRequest{
		Username:       stringField(req, "username"),
		ChampionshipID: stringField(req, "championship_id"),
		Round:          round,
	}

	st, err := a.rankings.GetStatistics(ctx, in)
	if err != nil {
		return nil, err
	}

	return toStruct(UserStatistics{
		Username:       in.Username,
		ChampionshipID: in.ChampionshipID,
		Round:          in.Round,
		Statistics:     toStatistics(*st),
	})
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func intField(s *structpb.Struct, name string) (int, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, nil
	}

	n := v.GetNumberValue()
	if n < 0 || n != float64(int(n)) {
		return 0, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("invalid %s: %v", name, n))
	}

	return int(n), nil
}

// toStruct converts a JSON DTO into a Struct with the same field names.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}

	s := new(structpb.Struct)
	if err := s.UnmarshalJSON(b); err != nil {
		return nil, fmt.Errorf("convert response: %w", err)
	}

	return s, nil
}
