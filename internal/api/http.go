package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mariovettorifilho-code/CALLCLUB/internal/errors"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/leaderboard"
	"github.com/mariovettorifilho-code/CALLCLUB/internal/prediction"
)

// Register mounts the HTTP API on r.
func (a *API) Register(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	g := r.Group("/api")
	g.GET("/ranking/league/:league_id", a.getLeagueRanking)
	g.GET("/ranking/:championship_id", a.getRanking)
	g.GET("/ranking/:championship_id/round/:round", a.getRanking)
	g.GET("/statistics/:username", a.getStatistics)
	g.GET("/rounds/current", a.getCurrentRound)
	g.POST("/predictions", a.submitPrediction)
	g.POST("/admin/matches/:match_id/result", a.finishMatch)
}

func (a *API) getRanking(c *gin.Context) {
	round, ok := intParam(c, c.Param("round"))
	if !ok {
		return
	}

	r, err := a.rankings.GetRanking(c, leaderboard.GetRankingRequest{
		ChampionshipID: c.Param("championship_id"),
		Round:          round,
		Viewer:         c.Query("viewer"),
	})
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, toRanking(*r))
}

func (a *API) getLeagueRanking(c *gin.Context) {
	round, ok := intParam(c, c.Query("round"))
	if !ok {
		return
	}

	r, err := a.rankings.GetRanking(c, leaderboard.GetRankingRequest{
		LeagueID: c.Param("league_id"),
		Round:    round,
		Viewer:   c.Query("viewer"),
	})
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, toRanking(*r))
}

func (a *API) getStatistics(c *gin.Context) {
	round, ok := intParam(c, c.Query("round"))
	if !ok {
		return
	}

	req := leaderboard.GetStatisticsRequest{
		Username:       c.Param("username"),
		ChampionshipID: c.Query("championship_id"),
		Round:          round,
	}
	if req.ChampionshipID == "" {
		abort(c, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("championship_id is required")))
		return
	}

	st, err := a.rankings.GetStatistics(c, req)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, UserStatistics{
		Username:       req.Username,
		ChampionshipID: req.ChampionshipID,
		Round:          req.Round,
		Statistics:     toStatistics(*st),
	})
}

func (a *API) getCurrentRound(c *gin.Context) {
	champ := c.Query("championship_id")
	if champ == "" {
		abort(c, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("championship_id is required")))
		return
	}

	round, err := a.predictions.CurrentRound(c, champ)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, CurrentRound{ChampionshipID: champ, CurrentRound: round})
}

func (a *API) submitPrediction(c *gin.Context) {
	var req SubmitPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("invalid prediction: %v", err)))
		return
	}

	p, err := a.predictions.SubmitPrediction(c, prediction.SubmitPredictionRequest{
		Username:       req.Username,
		MatchID:        req.MatchID,
		HomePrediction: *req.HomePrediction,
		AwayPrediction: *req.AwayPrediction,
	})
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, Prediction{
		Username:       p.Username,
		MatchID:        p.MatchID,
		ChampionshipID: p.ChampionshipID,
		RoundNumber:    p.RoundNumber,
		HomePrediction: p.HomePrediction,
		AwayPrediction: p.AwayPrediction,
		UpdateTime:     p.UpdateTime.UTC().Format(time.RFC3339),
	})
}

func (a *API) finishMatch(c *gin.Context) {
	var req MatchResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("invalid result: %v", err)))
		return
	}

	m, err := a.predictions.FinishMatch(c, prediction.FinishMatchRequest{
		MatchID:   c.Param("match_id"),
		HomeScore: *req.HomeScore,
		AwayScore: *req.AwayScore,
	})
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, toMatch(*m))
}

// intParam parses an optional integer path or query value. Empty means 0.
func intParam(c *gin.Context, v string) (int, bool) {
	if v == "" {
		return 0, true
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		abort(c, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("invalid round: %q", v)))
		return 0, false
	}

	return n, true
}

func abort(c *gin.Context, err error) {
	e := errors.Convert(err)
	if e.Code == errors.CodeInternal {
		slog.ErrorContext(c, "api: request failed",
			"path", c.FullPath(),
			"error", err,
		)
		e = errors.New(errors.CodeInternal)
	}

	c.AbortWithStatusJSON(e.HTTPStatusCode(), e)
}
