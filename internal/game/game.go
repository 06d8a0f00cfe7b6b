// Package game runs one typing competition: the round cycle, word claims,
// scoring and membership. Every game is serialized by its own mutex; timer
// callbacks re-enter through the lock and validate the round epoch they
// captured, so a round that ended early makes its leftover timers inert.
package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/typerace/server/internal/metrics"
	"github.com/typerace/server/internal/protocol"
	"github.com/typerace/server/internal/score"
	"github.com/typerace/server/internal/session"
	"github.com/typerace/server/internal/words"
)

// DefaultCountdown is the pause between game-start and the play phase.
const DefaultCountdown = 5 * time.Second

const sinkTimeout = 5 * time.Second

// LobbyHooks are the game-to-lobby callbacks. Lock order is one way: game
// methods may call into the lobby while holding the game lock; the lobby
// never touches a game while holding its own.
type LobbyHooks interface {
	// GameDestroyed removes the game from the running table and refreshes
	// the lobby view.
	GameDestroyed(g *Game)
	// SessionReturned hands a player who quit back to the lobby view.
	SessionReturned(s *session.Session)
}

// Config assembles a game's identity, members and collaborators. Members are
// in join order; the first one created the game and starts as manager.
type Config struct {
	ID        uint64
	Params    protocol.CreateParams
	Members   []*session.Session
	Countdown time.Duration
	Clock     Clock
	Scheduler Scheduler
	Dict      words.DictionaryProvider
	Calc      words.CalculusProvider
	Sinks     []TopScoreSink
	Send      session.SendFunc
	Hooks     LobbyHooks
}

// Game is one running competition.
type Game struct {
	ID uint64

	Mu      sync.Mutex
	params  protocol.CreateParams
	members []*session.Session
	scores  map[uuid.UUID]*score.Score
	manager string

	pool       []protocol.WordState
	roundID    int
	roundEpoch int
	roundStart int64
	playing    bool
	gameOver   bool
	destroyed  bool

	countdown time.Duration
	mode      Mode
	clock     Clock
	sched     Scheduler
	dict      words.DictionaryProvider
	calc      words.CalculusProvider
	sinks     []TopScoreSink
	send      session.SendFunc
	hooks     LobbyHooks
}

// New builds a game from a started lobby descriptor. It does not start the
// first round; the lobby does that after releasing its own lock.
func New(cfg Config) *Game {
	g := &Game{
		ID:        cfg.ID,
		params:    cfg.Params,
		members:   append([]*session.Session(nil), cfg.Members...),
		scores:    make(map[uuid.UUID]*score.Score, len(cfg.Members)),
		countdown: cfg.Countdown,
		mode:      ModeFor(cfg.Params.Mode),
		clock:     cfg.Clock,
		sched:     cfg.Scheduler,
		dict:      cfg.Dict,
		calc:      cfg.Calc,
		sinks:     cfg.Sinks,
		send:      cfg.Send,
		hooks:     cfg.Hooks,
	}
	if g.countdown <= 0 {
		g.countdown = DefaultCountdown
	}
	if g.clock == nil {
		g.clock = SystemClock()
	}
	if g.sched == nil {
		g.sched = TimerScheduler()
	}
	if len(g.members) > 0 {
		g.manager = g.members[0].Name()
	}
	for _, m := range g.members {
		m.SetGame(g.ID)
		g.scores[m.ID] = &score.Score{UserName: m.Name()}
	}
	metrics.ActiveGames.Inc()
	return g
}

// Params returns the creation parameters; immutable after construction.
func (g *Game) Params() protocol.CreateParams { return g.params }

// Manager returns the display name of the player steering the game.
func (g *Game) Manager() string {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.manager
}

// Over reports whether the game has been decided.
func (g *Game) Over() bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.gameOver
}

// StartFirstRound opens the first countdown. The lobby calls it exactly once
// per game, after the descriptor moved to the running table.
func (g *Game) StartFirstRound() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.destroyed || g.playing || g.roundID > 0 {
		log.Printf("game %d: first round requested twice, ignored", g.ID)
		return
	}
	g.startRoundLocked()
}

// StartRound begins the next round. Only the manager may call it, only
// between rounds; called on a decided game it resets everything for a
// rematch with the same members and parameters.
func (g *Game) StartRound(s *session.Session) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.destroyed || g.playing || g.roundID == 0 {
		return
	}
	if s.Name() != g.manager {
		log.Printf("game %d: start-round from %q ignored, manager is %q", g.ID, s.Name(), g.manager)
		return
	}
	if g.gameOver {
		g.resetForRematchLocked()
	}
	g.startRoundLocked()
}

// startRoundLocked opens the countdown for the next round. Assumes the game
// lock is held.
func (g *Game) startRoundLocked() {
	g.roundEpoch++
	g.roundID++
	g.playing = false
	g.pool = nil
	g.roundStart = 0
	for _, m := range g.members {
		if sc := g.scores[m.ID]; sc != nil {
			sc.Points = 0
			sc.Speed = 0
		}
		m.SetState(session.StateStarted)
	}

	secs := int(g.countdown / time.Second)
	g.fireLocked(protocol.NewGameStart(g.ID, g.roundID, secs, g.memberNamesLocked()), true)

	epoch := g.roundEpoch
	g.sched.Schedule(g.countdown, func() { g.beginPlay(epoch) })
	log.Printf("game %d: round %d countdown started (%ds)", g.ID, g.roundID, secs)
}

// beginPlay opens the play phase once the countdown elapses.
func (g *Game) beginPlay(epoch int) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.destroyed || epoch != g.roundEpoch || g.playing {
		log.Printf("game %d: countdown callback with stale epoch %d ignored", g.ID, epoch)
		return
	}

	count := g.mode.EffectiveWordCount(g.params.WordsCount, len(g.members))
	g.pool = g.generateWords(count)
	g.playing = true
	g.roundStart = g.clock.NowMillis()
	for _, m := range g.members {
		m.SetState(session.StateRunning)
	}
	g.fireLocked(protocol.NewWordsList(g.poolSnapshotLocked()), false)

	expiry := time.Duration(g.params.WordsCount*g.params.Style.SecondsPerWord()) * time.Second
	g.sched.Schedule(expiry, func() { g.expire(epoch) })
	log.Printf("game %d: round %d playing with %d words, expires in %s", g.ID, g.roundID, len(g.pool), expiry)
}

// generateWords asks the providers for the round pool. Shortfalls and errors
// degrade to a smaller (possibly empty) round rather than failing it.
func (g *Game) generateWords(count int) []protocol.WordState {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var (
		ws  []words.Word
		err error
	)
	if g.params.Style == words.StyleCalculus {
		ws, err = g.calc.Generate(ctx, count, g.params.Difficulty)
	} else {
		ws, err = g.dict.Generate(ctx, g.params.Language, count, g.params.Style, g.params.Difficulty)
	}
	if err != nil {
		log.Printf("game %d: word generation failed: %v", g.ID, err)
		return nil
	}
	if len(ws) < count {
		log.Printf("game %d: provider returned %d of %d words", g.ID, len(ws), count)
	}

	out := make([]protocol.WordState, 0, len(ws))
	for _, w := range ws {
		out = append(out, protocol.WordState{Label: w.Label, Display: w.Display})
	}
	return out
}

// ClaimWord is a player's attempt at typing label. The first claim wins a
// word; repeats, unknown labels and claims outside the play phase change
// nothing.
func (g *Game) ClaimWord(s *session.Session, label string) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.destroyed || !g.playing || label == "" {
		return
	}
	sc := g.scores[s.ID]
	if sc == nil {
		log.Printf("game %d: claim from non-member %q ignored", g.ID, s.Name())
		return
	}

	idx := -1
	for i := range g.pool {
		if g.pool[i].Label == label && g.pool[i].ClaimedBy == "" {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	g.pool[idx].ClaimedBy = s.Name()
	sc.Points++
	metrics.WordsClaimed.Inc()
	g.fireLocked(protocol.NewWordsList(g.poolSnapshotLocked()), false)

	if g.mode.RoundFinished(g) {
		g.endRoundLocked()
	}
}

// expire closes the round when the play timer fires, unless the round
// already ended and moved the epoch on.
func (g *Game) expire(epoch int) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.destroyed || epoch != g.roundEpoch || !g.playing {
		log.Printf("game %d: expiration callback with stale epoch %d ignored", g.ID, epoch)
		return
	}
	log.Printf("game %d: round %d expired", g.ID, g.roundID)
	g.endRoundLocked()
}

// endRoundLocked scores the round, elects its victor, persists and
// broadcasts. Every round has exactly one victor, zero-claim rounds
// included: the round ordering falls back to join order on full ties.
// Assumes the game lock is held.
func (g *Game) endRoundLocked() {
	g.roundEpoch++ // stale-out the pending expiration
	g.playing = false

	now := g.clock.NowMillis()
	elapsed := now - g.roundStart
	if elapsed < 1 {
		elapsed = 1
	}

	ordered := g.orderedScoresLocked()
	for _, sc := range ordered {
		sc.Speed = score.WordsPerMinute(sc.Points, elapsed)
		if sc.Speed > sc.BestSpeed {
			sc.BestSpeed = sc.Speed
		}
	}

	round := score.RoundOrder(ordered)
	victor := ""
	if len(round) > 0 {
		round[0].Victories++
		round[0].LatestVictoryTimestamp = now
		victor = round[0].UserName
	}
	ranked := score.GameOrder(ordered)
	g.gameOver = len(ranked) > 0 && ranked[0].Victories >= g.params.Rounds

	next := session.StateEndRound
	if g.gameOver {
		next = session.StateScores
	}
	for _, m := range g.members {
		m.SetState(next)
	}

	ev := protocol.Scores{
		Type:          protocol.TypeScores,
		RoundScores:   score.Snapshot(round),
		GameScores:    score.Snapshot(ranked),
		Manager:       g.manager,
		RoundDuration: elapsed,
		GameOver:      g.gameOver,
		Words:         g.poolSnapshotLocked(),
	}
	g.fireLocked(ev, true)
	metrics.RoundsPlayed.Inc()
	g.recordRoundLocked(ev.RoundScores, elapsed, victor, now)
	log.Printf("game %d: round %d scored, victor %q, game over %v", g.ID, g.roundID, victor, g.gameOver)
}

// recordRoundLocked hands the finished round to the sinks on a separate
// goroutine. Assumes the game lock is held.
func (g *Game) recordRoundLocked(scores []score.Score, elapsed int64, victor string, now int64) {
	if len(g.sinks) == 0 {
		return
	}
	rec := RoundRecord{
		GameID:        g.ID,
		RoundID:       g.roundID,
		Mode:          string(g.params.Mode),
		Style:         string(g.params.Style),
		Language:      g.params.Language,
		Difficulty:    string(g.params.Difficulty),
		WordsCount:    len(g.pool),
		RoundDuration: elapsed,
		Victor:        victor,
		Scores:        scores,
		Timestamp:     now,
	}
	sinks := append([]TopScoreSink(nil), g.sinks...)
	go func() {
		for _, sink := range sinks {
			ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
			if err := sink.Record(ctx, rec); err != nil {
				log.Printf("game %d: top-score sink failed: %v", rec.GameID, err)
				metrics.SinkErrors.Inc()
			}
			cancel()
		}
	}()
}

// QuitGame removes a player who chose to leave between rounds, or once the
// game is decided. Mid-round quits are ignored.
func (g *Game) QuitGame(s *session.Session) {
	g.Mu.Lock()
	if g.destroyed {
		g.Mu.Unlock()
		return
	}
	if s.State() == session.StateRunning && !g.gameOver {
		g.Mu.Unlock()
		return
	}
	left := g.removeMemberLocked(s)
	g.Mu.Unlock()

	if left && g.hooks != nil {
		g.hooks.SessionReturned(s)
	}
}

// HandleDisconnect removes a player whose transport went away. The round in
// progress, if any, continues for the rest.
func (g *Game) HandleDisconnect(s *session.Session) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.destroyed {
		return
	}
	g.removeMemberLocked(s)
}

// removeMemberLocked takes s out of the game, re-electing the manager or
// destroying the game as needed. Returns whether s actually was a member.
// Assumes the game lock is held.
func (g *Game) removeMemberLocked(s *session.Session) bool {
	idx := -1
	for i, m := range g.members {
		if m == s {
			idx = i
			break
		}
	}
	if idx < 0 {
		log.Printf("game %d: removal of non-member %q ignored", g.ID, s.Name())
		return false
	}

	g.members = append(g.members[:idx], g.members[idx+1:]...)
	delete(g.scores, s.ID)
	s.ClearGame()
	s.SetState(session.StateIdentified)
	log.Printf("game %d: %q left (%d remaining)", g.ID, s.Name(), len(g.members))

	if len(g.members) == 0 {
		g.destroyLocked()
		return true
	}
	if s.Name() == g.manager {
		g.manager = g.members[0].Name()
		g.fireLocked(protocol.NewManager(g.manager), true)
		log.Printf("game %d: manager handed to %q", g.ID, g.manager)
	}
	return true
}

// destroyLocked ends the game's life: every pending timer goes stale and the
// lobby forgets the id. Assumes the game lock is held.
func (g *Game) destroyLocked() {
	if g.destroyed {
		return
	}
	g.destroyed = true
	g.roundEpoch++
	g.playing = false
	metrics.ActiveGames.Dec()
	log.Printf("game %d: destroyed", g.ID)
	if g.hooks != nil {
		g.hooks.GameDestroyed(g)
	}
}

// resetForRematchLocked clears a decided game for another cycle with the
// same members and parameters. Assumes the game lock is held.
func (g *Game) resetForRematchLocked() {
	g.gameOver = false
	g.roundID = 0
	for _, m := range g.members {
		if sc := g.scores[m.ID]; sc != nil {
			*sc = score.Score{UserName: sc.UserName}
		}
	}
	log.Printf("game %d: rematch with %d players", g.ID, len(g.members))
}

// fireLocked fans ev out to the current members. Assumes the game lock is
// held; the send function marshals once, enqueues without blocking and never
// re-enters the game.
func (g *Game) fireLocked(ev any, critical bool) {
	if g.send == nil {
		return
	}
	targets := make([]*session.Session, len(g.members))
	copy(targets, g.members)
	g.send(targets, ev, critical)
}

// memberNamesLocked lists display names in join order. Assumes the game lock
// is held.
func (g *Game) memberNamesLocked() []string {
	names := make([]string, 0, len(g.members))
	for _, m := range g.members {
		names = append(names, m.Name())
	}
	return names
}

// orderedScoresLocked returns the live scores in join order. Assumes the
// game lock is held.
func (g *Game) orderedScoresLocked() []*score.Score {
	out := make([]*score.Score, 0, len(g.members))
	for _, m := range g.members {
		if sc := g.scores[m.ID]; sc != nil {
			out = append(out, sc)
		}
	}
	return out
}

// poolSnapshotLocked copies the round pool for a broadcast. Assumes the game
// lock is held.
func (g *Game) poolSnapshotLocked() []protocol.WordState {
	return append([]protocol.WordState(nil), g.pool...)
}

// unclaimedLocked counts the words still up for grabs. Assumes the game lock
// is held.
func (g *Game) unclaimedLocked() int {
	n := 0
	for i := range g.pool {
		if g.pool[i].ClaimedBy == "" {
			n++
		}
	}
	return n
}
