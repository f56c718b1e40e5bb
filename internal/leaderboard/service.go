// Package leaderboard serves championship, round and league rankings and keeps the snapshots their position
// changes are measured against.
package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/domain"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/errors"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/event"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/prediction"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/ranking"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/scope"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/stats"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/telemetry"
)

const (
	defaultLockTTL     = 10 * time.Second
	defaultConcurrency = 4
	lockRetryInterval  = 50 * time.Millisecond
)

// Source is the read side of the store.
type Source interface {
	GetChampionship(ctx context.Context, championshipID string) (*domain.Championship, error)
	GetLeague(ctx context.Context, leagueID string) (*domain.League, error)
	ListLeagues(ctx context.Context, championshipID string) ([]domain.League, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListMatches(ctx context.Context, championshipID string) ([]domain.Match, error)
	ListPredictions(ctx context.Context, championshipID string) ([]domain.Prediction, error)
}

type Config struct {
	EventBus *event.Bus
	Source   Source
	Redis    redis.UniversalClient
	Prefix   string
	// LockTTL bounds how long one recomputation may hold a scope.
	LockTTL time.Duration
	// Concurrency bounds the scopes of a championship recomputed at once.
	Concurrency int
	Now         func() time.Time
}

type Service struct {
	eb          *event.Bus
	src         Source
	redis       redis.UniversalClient
	prefix      string
	snapshots   *snapshotStore
	lockTTL     time.Duration
	concurrency int
	now         func() time.Time
}

func NewService(c Config) *Service {
	s := &Service{
		eb:          c.EventBus,
		src:         c.Source,
		redis:       c.Redis,
		prefix:      c.Prefix,
		snapshots:   &snapshotStore{redis: c.Redis, prefix: c.Prefix},
		lockTTL:     c.LockTTL,
		concurrency: c.Concurrency,
		now:         c.Now,
	}

	if s.lockTTL <= 0 {
		s.lockTTL = defaultLockTTL
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultConcurrency
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.eb.Subscribe(domain.EventNameMatchFinished, func(ctx context.Context, e event.Event) error {
		m := e.(domain.EventMatchFinished).Match
		return s.RecomputeChampionship(ctx, m.ChampionshipID, m.RoundNumber)
	})

	return s
}

type GetRankingRequest struct {
	ChampionshipID string
	// Round selects a round ranking; 0 ranks the whole championship.
	Round int
	// LeagueID restricts the ranking to a league. ChampionshipID may then be left empty.
	LeagueID string
	// Viewer, when set, must be part of the ranking's cohort.
	Viewer string
}

// GetRanking builds the live ranking of a scope and annotates it with the movement since the previous
// snapshot. A scope that does not exist or is hidden from the viewer yields an empty ranking.
func (s *Service) GetRanking(ctx context.Context, req GetRankingRequest) (*domain.Ranking, error) {
	sc, champ, err := s.resolveScope(ctx, req.ChampionshipID, req.LeagueID, req.Round)
	if errors.Is(err, errors.ErrMissingScope) {
		slog.DebugContext(ctx, "leaderboard: missing scope", "error", err)
		return emptyRanking(sc), nil
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	in, err := s.load(ctx, sc.ChampionshipID)
	if err != nil {
		return nil, err
	}

	entries, cohort := build(sc, in)
	if req.Viewer != "" && !slices.Contains(cohort, req.Viewer) {
		slog.DebugContext(ctx, "leaderboard: viewer outside scope",
			"viewer", req.Viewer,
			"scope", sc.Signature(),
		)
		return emptyRanking(sc), nil
	}

	prev, err := s.snapshots.load(ctx, sc.Signature(), slotPrevious)
	if err != nil {
		s.reportStale(ctx, sc, err)
	}

	entries, err = ranking.Diff(sc, entries, prev)
	if err != nil && prev != nil {
		s.reportStale(ctx, sc, err)
	}

	kind := string(sc.Kind())
	telemetry.RankingBuilds.WithLabelValues(kind).Inc()
	telemetry.RankingBuildDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	return &domain.Ranking{
		Scope:        sc,
		CurrentRound: prediction.CurrentRound(in.matches),
		TotalRounds:  champ.TotalRounds,
		Entries:      entries,
	}, nil
}

type GetStatisticsRequest struct {
	Username       string
	ChampionshipID string
	Round          int
}

// GetStatistics aggregates one user's predictions in a championship, or in one of its rounds. Banned users
// and users without access to the championship get errors.ErrMissingScope.
func (s *Service) GetStatistics(ctx context.Context, req GetStatisticsRequest) (*domain.UserStatistics, error) {
	sc, _, err := s.resolveScope(ctx, req.ChampionshipID, "", req.Round)
	if err != nil {
		return nil, err
	}

	in, err := s.load(ctx, sc.ChampionshipID)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(in.users, func(u domain.User) bool { return u.Username == req.Username })
	if i < 0 {
		return nil, errors.ErrNotFound.With(errors.WithMessagef("user not found: %s", req.Username))
	}

	users, mine := scope.Filter(in.users[i:i+1], in.predictions, sc, scope.NewPlanAccess(in.users))
	if len(users) == 0 {
		return nil, errors.ErrMissingScope.With(
			errors.WithMessagef("user %s has no access to %s", req.Username, sc.ChampionshipID))
	}

	st := stats.Aggregate(mine, in.matchesByID(), nil)
	return &st, nil
}

// Recompute builds the ranking of sc, diffs it against the current snapshot and stores it as the new
// current snapshot. The former current snapshot becomes the previous one. When the standings equal the
// current snapshot nothing is stored and the ranking is diffed against the previous snapshot instead.
func (s *Service) Recompute(ctx context.Context, sc domain.Scope) (*domain.Ranking, error) {
	champ, err := s.src.GetChampionship(ctx, sc.ChampionshipID)
	if err != nil {
		return nil, err
	}

	in, err := s.load(ctx, sc.ChampionshipID)
	if err != nil {
		return nil, err
	}

	return s.recompute(ctx, sc, champ, in)
}

// RecomputeChampionship recomputes the general ranking of a championship, its round ranking when round is
// positive, and the same rankings of every league following it.
func (s *Service) RecomputeChampionship(ctx context.Context, championshipID string, round int) error {
	champ, err := s.src.GetChampionship(ctx, championshipID)
	if err != nil {
		return err
	}

	leagues, err := s.src.ListLeagues(ctx, championshipID)
	if err != nil {
		return fmt.Errorf("list leagues: %w", err)
	}

	in, err := s.load(ctx, championshipID)
	if err != nil {
		return err
	}

	scopes := []domain.Scope{{ChampionshipID: championshipID}}
	if round > 0 {
		scopes = append(scopes, domain.Scope{ChampionshipID: championshipID, Round: round})
	}
	for i := range leagues {
		l := &leagues[i]
		scopes = append(scopes, domain.Scope{ChampionshipID: championshipID, League: l})
		if round > 0 {
			scopes = append(scopes, domain.Scope{ChampionshipID: championshipID, Round: round, League: l})
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, sc := range scopes {
		g.Go(func() error {
			_, err := s.recompute(ctx, sc, champ, in)
			return err
		})
	}

	return g.Wait()
}

func (s *Service) recompute(ctx context.Context, sc domain.Scope, champ *domain.Championship, in *inputs) (_ *domain.Ranking, err error) {
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			slog.ErrorContext(ctx, "leaderboard: recompute failed",
				"scope", sc.Signature(),
				"error", err,
			)
		}
		telemetry.Recomputes.WithLabelValues(result).Inc()
	}()

	unlock, err := s.lock(ctx, sc.Signature())
	if err != nil {
		return nil, err
	}
	defer unlock()

	start := time.Now()
	entries, _ := build(sc, in)

	cur, err := s.snapshots.load(ctx, sc.Signature(), slotCurrent)
	if err != nil {
		s.reportStale(ctx, sc, err)
	}

	kind := string(sc.Kind())
	telemetry.RankingBuilds.WithLabelValues(kind).Inc()
	telemetry.RankingBuildDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	r := &domain.Ranking{
		Scope:        sc,
		CurrentRound: prediction.CurrentRound(in.matches),
		TotalRounds:  champ.TotalRounds,
	}

	// Same standings as the current snapshot: keep both slots so the last movement stays visible.
	if cur != nil && cur.Signature == sc.Signature() && ranking.Unchanged(entries, cur) {
		prev, err := s.snapshots.load(ctx, sc.Signature(), slotPrevious)
		if err != nil {
			s.reportStale(ctx, sc, err)
		}

		r.Entries, err = ranking.Diff(sc, entries, prev)
		if err != nil && prev != nil {
			s.reportStale(ctx, sc, err)
		}

		slog.DebugContext(ctx, "leaderboard: ranking unchanged, snapshots kept",
			"scope", sc.Signature(),
			"snapshot_id", cur.SnapshotID,
		)
		return r, nil
	}

	r.Entries, err = ranking.Diff(sc, entries, cur)
	if err != nil && cur != nil {
		s.reportStale(ctx, sc, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate snapshot ID: %w", err)
	}

	if err := s.snapshots.rotate(ctx, ranking.NewSnapshot(id.String(), sc, r.Entries, s.now())); err != nil {
		return nil, err
	}

	s.eb.Publish(ctx, domain.EventRankingUpdated{Ranking: *r})

	slog.InfoContext(ctx, "leaderboard: ranking recomputed",
		"scope", sc.Signature(),
		"entries", len(r.Entries),
		"snapshot_id", id.String(),
	)

	return r, nil
}

func (s *Service) resolveScope(ctx context.Context, championshipID, leagueID string, round int) (domain.Scope, *domain.Championship, error) {
	sc := domain.Scope{ChampionshipID: championshipID, Round: round}

	if leagueID != "" {
		l, err := s.src.GetLeague(ctx, leagueID)
		if errors.Is(err, errors.ErrNotFound) {
			return sc, nil, errors.ErrMissingScope.With(errors.WithMessagef("league not found: %s", leagueID))
		}
		if err != nil {
			return sc, nil, err
		}
		if championshipID != "" && championshipID != l.ChampionshipID {
			return sc, nil, errors.ErrMissingScope.With(
				errors.WithMessagef("league %s does not follow %s", leagueID, championshipID))
		}

		sc.ChampionshipID = l.ChampionshipID
		sc.League = l
	}

	champ, err := s.src.GetChampionship(ctx, sc.ChampionshipID)
	if errors.Is(err, errors.ErrNotFound) {
		return sc, nil, errors.ErrMissingScope.With(errors.WithMessagef("championship not found: %s", sc.ChampionshipID))
	}
	if err != nil {
		return sc, nil, err
	}

	if round < 0 || (champ.TotalRounds > 0 && round > champ.TotalRounds) {
		return sc, nil, errors.ErrMissingScope.With(
			errors.WithMessagef("round %d out of range for %s", round, sc.ChampionshipID))
	}

	return sc, champ, nil
}

func (s *Service) reportStale(ctx context.Context, sc domain.Scope, err error) {
	telemetry.StaleSnapshots.Inc()
	slog.WarnContext(ctx, "leaderboard: snapshot unusable, serving ranking without position changes",
		"scope", sc.Signature(),
		"error", err,
	)
}

func emptyRanking(sc domain.Scope) *domain.Ranking {
	return &domain.Ranking{
		Scope:   sc,
		Entries: []domain.RankingEntry{},
	}
}

type inputs struct {
	users       []domain.User
	matches     []domain.Match
	predictions []domain.Prediction
}

func (in *inputs) matchesByID() map[string]domain.Match {
	out := make(map[string]domain.Match, len(in.matches))
	for _, m := range in.matches {
		out[m.MatchID] = m
	}
	return out
}

// load fetches everything a championship's rankings are built from.
func (s *Service) load(ctx context.Context, championshipID string) (*inputs, error) {
	var in inputs

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.users, err = s.src.ListUsers(ctx)
		return err
	})
	g.Go(func() (err error) {
		in.matches, err = s.src.ListMatches(ctx, championshipID)
		return err
	})
	g.Go(func() (err error) {
		in.predictions, err = s.src.ListPredictions(ctx, championshipID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load championship %s: %w", championshipID, err)
	}

	return &in, nil
}

// build ranks the cohort of sc and returns it along with the usernames in the cohort.
func build(sc domain.Scope, in *inputs) ([]domain.RankingEntry, []string) {
	users, preds := scope.Filter(in.users, in.predictions, sc, scope.NewPlanAccess(in.users))
	names := scope.Usernames(users)

	return ranking.Build(stats.AggregateByUser(names, preds, in.matchesByID(), nil)), names
}
