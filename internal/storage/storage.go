// Package storage persists finished rounds. Two backends ship, Postgres and
// SQLite; both implement game.TopScoreSink for writes and TopScoreQuerier for
// the all-time ranking the HTTP surface serves.
package storage

import (
	"context"

	"github.com/typerace/server/internal/game"
)

// TopEntry is one line of the all-time speed ranking.
type TopEntry struct {
	UserName  string  `json:"userName"`
	BestSpeed float64 `json:"bestSpeed"`
	Rounds    int     `json:"rounds"`
}

// TopScoreQuerier serves the all-time ranking.
type TopScoreQuerier interface {
	TopScores(ctx context.Context, limit int) ([]TopEntry, error)
}

// Noop discards records; wired when no storage backend is configured.
type Noop struct{}

func (Noop) Record(context.Context, game.RoundRecord) error { return nil }

var _ game.TopScoreSink = Noop{}
