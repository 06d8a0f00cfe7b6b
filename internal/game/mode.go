package game

import "github.com/typerace/server/internal/protocol"

// Mode is the per-variant behavior of a game: how large the round pool is
// for a given member count, and when a round is finished after a claim.
// Both methods assume the game lock is held.
type Mode interface {
	Name() protocol.Mode
	EffectiveWordCount(declared, players int) int
	RoundFinished(g *Game) bool
}

// captureMode shares one declared-size pool; the round runs until the pool
// is exhausted or the timer fires.
type captureMode struct{}

func (captureMode) Name() protocol.Mode { return protocol.ModeCapture }

func (captureMode) EffectiveWordCount(declared, players int) int { return declared }

func (captureMode) RoundFinished(g *Game) bool { return g.unclaimedLocked() == 0 }

// raceMode sizes the pool at declared words per player; the round ends as
// soon as one player has claimed a full declared share. The pool-exhausted
// check also applies, which matters when the providers came back short.
type raceMode struct{}

func (raceMode) Name() protocol.Mode { return protocol.ModeRace }

func (raceMode) EffectiveWordCount(declared, players int) int {
	if players < 1 {
		players = 1
	}
	return declared * players
}

func (raceMode) RoundFinished(g *Game) bool {
	if g.unclaimedLocked() == 0 {
		return true
	}
	for _, m := range g.members {
		if sc := g.scores[m.ID]; sc != nil && sc.Points >= g.params.WordsCount {
			return true
		}
	}
	return false
}

// ModeFor maps the wire-level mode token to its behavior.
func ModeFor(m protocol.Mode) Mode {
	if m == protocol.ModeRace {
		return raceMode{}
	}
	return captureMode{}
}
