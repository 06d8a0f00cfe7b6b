// Package score holds the pure scoring model for typing rounds and games.
// Nothing here locks or does IO; the game core calls in with its own lock held.
package score

import "sort"

// Score tracks a single player's standing inside one game. Points and Speed
// are reset at the start of every round; the remaining fields accumulate for
// the lifetime of the game.
type Score struct {
	UserName               string   `json:"userName"`
	Points                 int      `json:"points"`
	Speed                  float64  `json:"speed"`
	BestSpeed              float64  `json:"bestSpeed"`
	Victories              int      `json:"victories"`
	LatestVictoryTimestamp int64    `json:"latestVictoryTimestamp"`
	Awards                 []string `json:"awards,omitempty"`
}

// WordsPerMinute converts a round's claimed-word count into a typing speed.
// elapsedMillis below 1ms is clamped so a frozen clock cannot divide by zero.
func WordsPerMinute(points int, elapsedMillis int64) float64 {
	if elapsedMillis < 1 {
		elapsedMillis = 1
	}
	return float64(points) * 60000 / float64(elapsedMillis)
}

// RoundOrder ranks scores for a single round: points first, speed as the
// tie-break. Full ties keep their input order, which the game relies on to
// attribute a victory deterministically even when nobody claimed a word.
func RoundOrder(scores []*Score) []*Score {
	out := make([]*Score, len(scores))
	copy(out, scores)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Speed > out[j].Speed
	})
	return out
}

// GameOrder ranks cumulative scores: most victories first, then best speed,
// then the earliest latest-victory timestamp (an older equal record wins).
// Full ties keep their input order.
func GameOrder(scores []*Score) []*Score {
	out := make([]*Score, len(scores))
	copy(out, scores)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Victories != out[j].Victories {
			return out[i].Victories > out[j].Victories
		}
		if out[i].BestSpeed != out[j].BestSpeed {
			return out[i].BestSpeed > out[j].BestSpeed
		}
		return out[i].LatestVictoryTimestamp < out[j].LatestVictoryTimestamp
	})
	return out
}

// Snapshot deep-copies scores into plain values, detaching them from the live
// per-game structs so async consumers never observe a later round's reset.
func Snapshot(scores []*Score) []Score {
	out := make([]Score, 0, len(scores))
	for _, s := range scores {
		c := *s
		if s.Awards != nil {
			c.Awards = append([]string(nil), s.Awards...)
		}
		out = append(out, c)
	}
	return out
}
