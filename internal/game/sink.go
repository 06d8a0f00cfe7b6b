package game

import (
	"context"

	"github.com/typerace/server/internal/score"
)

// RoundRecord is what leaves the game core for persistence after a round is
// scored. Scores are detached value copies, safe to hold across rounds.
type RoundRecord struct {
	GameID        uint64        `json:"game_id"`
	RoundID       int           `json:"round_id"`
	Mode          string        `json:"mode"`
	Style         string        `json:"style"`
	Language      string        `json:"language"`
	Difficulty    string        `json:"difficulty"`
	WordsCount    int           `json:"words_count"`
	RoundDuration int64         `json:"round_duration_ms"`
	Victor        string        `json:"victor"`
	Scores        []score.Score `json:"scores"`
	Timestamp     int64         `json:"timestamp"`
}

// TopScoreSink records finished rounds. Implementations are best-effort:
// the game logs failures and moves on, gameplay never waits on a sink.
type TopScoreSink interface {
	Record(ctx context.Context, rec RoundRecord) error
}
