package domain

const (
	EventNameMatchFinished  = "match.finished"
	EventNameRankingUpdated = "ranking.updated"
)

// EventMatchFinished is published when a match gets a final result or its result is corrected.
type EventMatchFinished struct {
	Match Match
}

func (EventMatchFinished) Name() string { return EventNameMatchFinished }

type EventRankingUpdated struct {
	Ranking Ranking
}

func (EventRankingUpdated) Name() string { return EventNameRankingUpdated }
