package game

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typerace/server/internal/protocol"
	"github.com/typerace/server/internal/session"
	"github.com/typerace/server/internal/words"
)

// sentEvent is one fan-out captured by the recorder.
type sentEvent struct {
	targets  []*session.Session
	ev       any
	critical bool
}

// recorder collects events instead of sending them over WS.
type recorder struct {
	mu     sync.Mutex
	events []sentEvent
}

func newRecorder() *recorder { return &recorder{} }

func (r *recorder) send(targets []*session.Session, ev any, critical bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{targets: targets, ev: ev, critical: critical})
}

func (r *recorder) last(t *testing.T) sentEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events, "no event was sent")
	return r.events[len(r.events)-1]
}

func (r *recorder) lastGameStart(t *testing.T) protocol.GameStart {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if ev, ok := r.events[i].ev.(protocol.GameStart); ok {
			return ev
		}
	}
	t.Fatal("no game-start event was sent")
	return protocol.GameStart{}
}

func (r *recorder) lastWordsList(t *testing.T) protocol.WordsList {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if ev, ok := r.events[i].ev.(protocol.WordsList); ok {
			return ev
		}
	}
	t.Fatal("no words-list event was sent")
	return protocol.WordsList{}
}

func (r *recorder) lastScores(t *testing.T) protocol.Scores {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if ev, ok := r.events[i].ev.(protocol.Scores); ok {
			return ev
		}
	}
	t.Fatal("no scores event was sent")
	return protocol.Scores{}
}

func (r *recorder) lastManager(t *testing.T) protocol.Manager {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if ev, ok := r.events[i].ev.(protocol.Manager); ok {
			return ev
		}
	}
	t.Fatal("no manager event was sent")
	return protocol.Manager{}
}

func (r *recorder) countGameStarts() int {
	return r.count(func(ev any) bool { _, ok := ev.(protocol.GameStart); return ok })
}

func (r *recorder) countWordsLists() int {
	return r.count(func(ev any) bool { _, ok := ev.(protocol.WordsList); return ok })
}

func (r *recorder) countScores() int {
	return r.count(func(ev any) bool { _, ok := ev.(protocol.Scores); return ok })
}

func (r *recorder) count(match func(any) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if match(e.ev) {
			n++
		}
	}
	return n
}

// manualScheduler queues tasks so tests fire timers by hand.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []func()
}

func (m *manualScheduler) Schedule(_ time.Duration, task func()) {
	m.mu.Lock()
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()
}

func (m *manualScheduler) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// fireNext runs the oldest pending task on the test goroutine.
func (m *manualScheduler) fireNext(t *testing.T) {
	t.Helper()
	m.mu.Lock()
	require.NotEmpty(t, m.tasks, "no scheduled task to fire")
	task := m.tasks[0]
	m.tasks = m.tasks[1:]
	m.mu.Unlock()
	task()
}

// fakeClock hands out an explicit time so elapsed-based speeds come out exact.
type fakeClock struct {
	mu     sync.Mutex
	millis int64
}

func (c *fakeClock) NowMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.millis
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.millis += d.Milliseconds()
	c.mu.Unlock()
}

// fakeDict serves the predictable labels w1..wN so claims are scriptable.
type fakeDict struct{}

func (fakeDict) Generate(_ context.Context, _ string, count int, _ words.Style, _ words.Difficulty) ([]words.Word, error) {
	out := make([]words.Word, 0, count)
	for i := 1; i <= count; i++ {
		label := fmt.Sprintf("w%d", i)
		out = append(out, words.Word{Label: label, Display: label})
	}
	return out, nil
}

// fakeCalc serves results 10, 20, 30... behind sum displays.
type fakeCalc struct{}

func (fakeCalc) Generate(_ context.Context, count int, _ words.Difficulty) ([]words.Word, error) {
	out := make([]words.Word, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, words.Word{
			Label:   strconv.Itoa(i * 10),
			Display: fmt.Sprintf("%d + %d", i*5, i*5),
		})
	}
	return out, nil
}

// hookRecorder stands in for the lobby side of the game-to-lobby callbacks.
type hookRecorder struct {
	mu        sync.Mutex
	destroyed int
	returned  []string
}

func (h *hookRecorder) GameDestroyed(*Game) {
	h.mu.Lock()
	h.destroyed++
	h.mu.Unlock()
}

func (h *hookRecorder) SessionReturned(s *session.Session) {
	h.mu.Lock()
	h.returned = append(h.returned, s.Name())
	h.mu.Unlock()
}

func (h *hookRecorder) destroyedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.destroyed
}

func (h *hookRecorder) returnedNames() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.returned...)
}

// chanSink forwards round records to the test goroutine.
type chanSink struct{ recs chan RoundRecord }

func (c chanSink) Record(_ context.Context, rec RoundRecord) error {
	c.recs <- rec
	return nil
}

type gameFixture struct {
	g     *Game
	ss    []*session.Session
	rec   *recorder
	sched *manualScheduler
	clock *fakeClock
	hooks *hookRecorder
}

func captureParams() protocol.CreateParams {
	return protocol.CreateParams{
		Mode:       protocol.ModeCapture,
		Style:      words.StyleRegular,
		Rounds:     2,
		WordsCount: 3,
		Language:   "en",
		Difficulty: words.DifficultyEasy,
	}
}

// setupTestGame initializes a game with named players and test collaborators.
func setupTestGame(t *testing.T, names []string, params protocol.CreateParams, sinks ...TopScoreSink) *gameFixture {
	t.Helper()
	reg := session.NewRegistry(session.DefaultMaxNameLength)
	ss := make([]*session.Session, len(names))
	for i, name := range names {
		s := session.New(8, nil)
		reg.Add(s)
		require.NoError(t, reg.Identify(s, name))
		ss[i] = s
	}

	f := &gameFixture{
		ss:    ss,
		rec:   newRecorder(),
		sched: &manualScheduler{},
		clock: &fakeClock{millis: 1_000_000},
		hooks: &hookRecorder{},
	}
	f.g = New(Config{
		ID:        7,
		Params:    params,
		Members:   ss,
		Clock:     f.clock,
		Scheduler: f.sched,
		Dict:      fakeDict{},
		Calc:      fakeCalc{},
		Sinks:     sinks,
		Send:      f.rec.send,
		Hooks:     f.hooks,
	})
	return f
}

// startPlaying runs the first countdown through to the play phase.
func (f *gameFixture) startPlaying(t *testing.T) {
	t.Helper()
	f.g.StartFirstRound()
	f.sched.fireNext(t)
}

func TestFirstRoundCountdownThenPlay(t *testing.T) {
	f := setupTestGame(t, []string{"alice", "bob"}, captureParams())

	f.g.StartFirstRound()
	for _, s := range f.ss {
		assert.Equal(t, session.StateStarted, s.State())
	}
	entry := f.rec.last(t)
	assert.True(t, entry.critical, "game-start must be a critical frame")
	assert.Len(t, entry.targets, 2)

	start := f.rec.lastGameStart(t)
	assert.Equal(t, uint64(7), start.GameID)
	assert.Equal(t, 1, start.RoundID)
	assert.Equal(t, 5, start.CountdownSeconds)
	assert.Equal(t, []string{"alice", "bob"}, start.Players)
	require.Equal(t, 1, f.sched.pending(), "countdown timer should be armed")

	f.sched.fireNext(t)
	for _, s := range f.ss {
		assert.Equal(t, session.StateRunning, s.State())
	}
	entry = f.rec.last(t)
	assert.False(t, entry.critical, "words-list is droppable under pressure")

	wl := f.rec.lastWordsList(t)
	require.Len(t, wl.Words, 3)
	for _, w := range wl.Words {
		assert.Empty(t, w.ClaimedBy)
	}
	assert.Equal(t, 1, f.sched.pending(), "expiration timer should be armed")
}

func TestStartFirstRoundTwiceIgnored(t *testing.T) {
	f := setupTestGame(t, []string{"alice", "bob"}, captureParams())

	f.g.StartFirstRound()
	f.g.StartFirstRound()

	assert.Equal(t, 1, f.rec.countGameStarts())
	assert.Equal(t, 1, f.sched.pending())
}

func TestClaimBeforePlayIgnored(t *testing.T) {
	f := setupTestGame(t, []string{"alice", "bob"}, captureParams())

	f.g.StartFirstRound()
	f.g.ClaimWord(f.ss[0], "w1")

	assert.Equal(t, 0, f.rec.countWordsLists())
	assert.Equal(t, 0, f.rec.countScores())
}

func TestClaimFirstComeFirstServed(t *testing.T) {
	f := setupTestGame(t, []string{"alice", "bob"}, captureParams())
	f.startPlaying(t)

	f.g.ClaimWord(f.ss[0], "w1")
	f.g.ClaimWord(f.ss[1], "w1") // already taken
	f.g.ClaimWord(f.ss[1], "nope")

	wl := f.rec.lastWordsList(t)
	claimed := map[string]string{}
	for _, w := range wl.Words {
		claimed[w.Label] = w.ClaimedBy
	}
	assert.Equal(t, "alice", claimed["w1"])
	assert.Empty(t, claimed["w2"])
	assert.Empty(t, claimed["w3"])

	// Only the initial list and alice's successful claim were broadcast.
	assert.Equal(t, 2, f.rec.countWordsLists())
}

func TestCaptureRoundEndsWhenPoolExhausted(t *testing.T) {
	f := setupTestGame(t, []string{"alice", "bob"}, captureParams())
	f.startPlaying(t)
	f.clock.advance(30 * time.Second)

	f.g.ClaimWord(f.ss[0], "w1")
	f.g.ClaimWord(f.ss[0], "w2")
	assert.Equal(t, 0, f.rec.countScores(), "round must keep running while words remain")
	f.g.ClaimWord(f.ss[1], "w3")

	entry := f.rec.last(t)
	sc, ok := entry.ev.(protocol.Scores)
	require.True(t, ok, "final claim should close the round with a scores event")
	assert.True(t, entry.critical, "scores must be a critical frame")

	assert.False(t, sc.GameOver)
	assert.Equal(t, int64(30000), sc.RoundDuration)
	require.Len(t, sc.RoundScores, 2)
	assert.Equal(t, "alice", sc.RoundScores[0].UserName)
	assert.Equal(t, 2, sc.RoundScores[0].Points)
	assert.InDelta(t, 4.0, sc.RoundScores[0].Speed, 1e-9) // 2 words in 30s
	assert.Equal(t, 1, sc.RoundScores[0].Victories)
	assert.Equal(t, "bob", sc.RoundScores[1].UserName)
	assert.Equal(t, 1, sc.RoundScores[1].Points)

	for _, w := range sc.Words {
		assert.NotEmpty(t, w.ClaimedBy)
	}
	for _, s := range f.ss {
		assert.Equal(t, session.StateEndRound, s.State())
	}
}

func TestRaceRoundEndsOnFullShare(t *testing.T) {
	params := captureParams()
	params.Mode = protocol.ModeRace
	params.WordsCount = 2
	f := setupTestGame(t, []string{"alice", "bob"}, params)
	f.startPlaying(t)

	wl := f.rec.lastWordsList(t)
	require.Len(t, wl.Words, 4, "race pool is declared count times players")

	f.g.ClaimWord(f.ss[0], "w1")
	assert.Equal(t, 0, f.rec.countScores())
	f.g.ClaimWord(f.ss[0], "w2") // alice reaches her full share

	sc := f.rec.lastScores(t)
	assert.Equal(t, "alice", sc.RoundScores[0].UserName)
	assert.Equal(t, 2, sc.RoundScores[0].Points)
	assert.Equal(t, 0, sc.RoundScores[1].Points)

	unclaimed := 0
	for _, w := range sc.Words {
		if w.ClaimedBy == "" {
			unclaimed++
		}
	}
	assert.Equal(t, 2, unclaimed, "the rest of the pool stays on the table")
}

func TestExpirationElectsVictorOnZeroClaims(t *testing.T) {
	f := setupTestGame(t, []string{"alice", "bob"}, captureParams())
	f.startPlaying(t)
	f.clock.advance(15 * time.Second)

	f.sched.fireNext(t) // expiration

	sc := f.rec.lastScores(t)
	assert.Equal(t, int64(15000), sc.RoundDuration)
	require.Len(t, sc.RoundScores, 2)
	// Full tie: the first player to have joined takes the round.
	assert.Equal(t, "alice", sc.RoundScores[0].UserName)
	assert.Equal(t, 0, sc.RoundScores[0].Points)
	assert.Equal(t, 1, sc.RoundScores[0].Victories)
	assert.Equal(t, 0, sc.RoundScores[1].Victories)
}

func TestStaleExpirationAfterRoundEndIgnored(t *testing.T) {
	params := captureParams()
	params.WordsCount = 1
	f := setupTestGame(t, []string{"alice", "bob"}, params)
	f.startPlaying(t)

	f.g.ClaimWord(f.ss[0], "w1") // exhausts the pool, round ends
	require.Equal(t, 1, f.rec.countScores())
	require.Equal(t, 1, f.sched.pending(), "expiration timer is still queued")

	f.sched.fireNext(t) // fires with a stale epoch

	assert.Equal(t, 1, f.rec.countScores(), "stale expiration must not score again")
}

func TestBestSpeedPersistsAcrossRounds(t *testing.T) {
	params := captureParams()
	params.Rounds = 3
	f := setupTestGame(t, []string{"alice", "bob"}, params)

	// Round 1: three words in 30s, 6 wpm.
	f.startPlaying(t)
	f.clock.advance(30 * time.Second)
	f.g.ClaimWord(f.ss[0], "w1")
	f.g.ClaimWord(f.ss[0], "w2")
	f.g.ClaimWord(f.ss[0], "w3")

	// Round 2: a slower three words in 60s, 3 wpm.
	f.g.StartRound(f.ss[0])
	assert.Equal(t, 2, f.rec.lastGameStart(t).RoundID)
	f.sched.fireNext(t)
	f.clock.advance(60 * time.Second)
	f.g.ClaimWord(f.ss[0], "w1")
	f.g.ClaimWord(f.ss[0], "w2")
	f.g.ClaimWord(f.ss[0], "w3")

	sc := f.rec.lastScores(t)
	assert.False(t, sc.GameOver)
	require.Equal(t, "alice", sc.GameScores[0].UserName)
	assert.Equal(t, 2, sc.GameScores[0].Victories)
	assert.InDelta(t, 3.0, sc.GameScores[0].Speed, 1e-9)
	assert.InDelta(t, 6.0, sc.GameScores[0].BestSpeed, 1e-9)
}

func TestGameOverMovesEveryoneToScores(t *testing.T) {
	params := captureParams()
	params.Rounds = 1
	f := setupTestGame(t, []string{"alice", "bob"}, params)
	f.startPlaying(t)

	f.g.ClaimWord(f.ss[0], "w1")
	f.g.ClaimWord(f.ss[0], "w2")
	f.g.ClaimWord(f.ss[0], "w3")

	sc := f.rec.lastScores(t)
	assert.True(t, sc.GameOver)
	assert.True(t, f.g.Over())
	for _, s := range f.ss {
		assert.Equal(t, session.StateScores, s.State())
	}
}

func TestStartRoundFromNonManagerIgnored(t *testing.T) {
	f := setupTestGame(t, []string{"alice", "bob"}, captureParams())
	f.startPlaying(t)
	f.g.ClaimWord(f.ss[0], "w1")
	f.g.ClaimWord(f.ss[0], "w2")
	f.g.ClaimWord(f.ss[0], "w3")
	require.Equal(t, 1, f.rec.countGameStarts())

	f.g.StartRound(f.ss[1]) // bob is not the manager

	assert.Equal(t, 1, f.rec.countGameStarts())
	assert.Equal(t, session.StateEndRound, f.ss[1].State())
}

func TestRematchAfterDecidedGame(t *testing.T) {
	params := captureParams()
	params.Rounds = 1
	f := setupTestGame(t, []string{"alice", "bob"}, params)
	f.startPlaying(t)
	f.g.ClaimWord(f.ss[0], "w1")
	f.g.ClaimWord(f.ss[0], "w2")
	f.g.ClaimWord(f.ss[0], "w3")
	require.True(t, f.g.Over())

	f.g.StartRound(f.ss[0]) // manager asks for a rematch

	assert.False(t, f.g.Over())
	start := f.rec.lastGameStart(t)
	assert.Equal(t, 1, start.RoundID, "rematch starts the round count over")

	// Play the rematch out: the old victories must not have carried over.
	f.sched.fireNext(t)
	f.g.ClaimWord(f.ss[1], "w1")
	f.g.ClaimWord(f.ss[1], "w2")
	f.g.ClaimWord(f.ss[1], "w3")

	sc := f.rec.lastScores(t)
	assert.True(t, sc.GameOver)
	require.Equal(t, "bob", sc.GameScores[0].UserName)
	assert.Equal(t, 1, sc.GameScores[0].Victories)
}

func TestQuitBetweenRoundsHandsManagerOn(t *testing.T) {
	f := setupTestGame(t, []string{"alice", "bob", "carol"}, captureParams())
	f.startPlaying(t)
	f.g.ClaimWord(f.ss[0], "w1")
	f.g.ClaimWord(f.ss[0], "w2")
	f.g.ClaimWord(f.ss[0], "w3")

	f.g.QuitGame(f.ss[0]) // the manager leaves between rounds

	entry := f.rec.last(t)
	assert.True(t, entry.critical, "manager hand-over must be a critical frame")
	assert.Equal(t, "bob", f.rec.lastManager(t).Manager)
	assert.Equal(t, "bob", f.g.Manager())

	assert.Equal(t, []string{"alice"}, f.hooks.returnedNames())
	assert.Equal(t, session.StateIdentified, f.ss[0].State())
	assert.Equal(t, uint64(0), f.ss[0].GameID())
}

func TestMidRoundQuitIgnored(t *testing.T) {
	f := setupTestGame(t, []string{"alice", "bob"}, captureParams())
	f.startPlaying(t)

	f.g.QuitGame(f.ss[1])

	assert.Empty(t, f.hooks.returnedNames())
	assert.Equal(t, session.StateRunning, f.ss[1].State())

	// Still a member: the claim lands.
	f.g.ClaimWord(f.ss[1], "w1")
	wl := f.rec.lastWordsList(t)
	found := false
	for _, w := range wl.Words {
		if w.Label == "w1" {
			found = w.ClaimedBy == "bob"
		}
	}
	assert.True(t, found)
}

func TestLastQuitDestroysGame(t *testing.T) {
	f := setupTestGame(t, []string{"alice", "bob"}, captureParams())
	f.startPlaying(t)
	f.g.ClaimWord(f.ss[0], "w1")
	f.g.ClaimWord(f.ss[0], "w2")
	f.g.ClaimWord(f.ss[0], "w3")

	f.g.QuitGame(f.ss[0])
	require.Equal(t, 0, f.hooks.destroyedCount())
	f.g.QuitGame(f.ss[1])

	assert.Equal(t, 1, f.hooks.destroyedCount())
	assert.Equal(t, []string{"alice", "bob"}, f.hooks.returnedNames())

	// The destroyed game ignores everything that arrives late.
	before := f.rec.countGameStarts()
	f.g.StartRound(f.ss[1])
	f.g.ClaimWord(f.ss[1], "w1")
	assert.Equal(t, before, f.rec.countGameStarts())
}

func TestDisconnectMidRoundKeepsRoundRunning(t *testing.T) {
	f := setupTestGame(t, []string{"alice", "bob"}, captureParams())
	f.startPlaying(t)

	f.g.HandleDisconnect(f.ss[1])
	assert.Empty(t, f.hooks.returnedNames(), "a dropped transport does not return to the lobby")

	// Claims from the departed session no longer land.
	f.g.ClaimWord(f.ss[1], "w1")
	wl := f.rec.lastWordsList(t)
	for _, w := range wl.Words {
		assert.Empty(t, w.ClaimedBy)
	}

	f.g.ClaimWord(f.ss[0], "w1")
	f.g.ClaimWord(f.ss[0], "w2")
	f.g.ClaimWord(f.ss[0], "w3")

	sc := f.rec.lastScores(t)
	require.Len(t, sc.RoundScores, 1)
	assert.Equal(t, "alice", sc.RoundScores[0].UserName)
}

func TestManagerDisconnectMidRoundReelectsAndContinues(t *testing.T) {
	f := setupTestGame(t, []string{"alice", "bob"}, captureParams())
	f.startPlaying(t)

	f.g.HandleDisconnect(f.ss[0])

	got := f.rec.lastManager(t)
	assert.Equal(t, "bob", got.Manager)

	f.g.ClaimWord(f.ss[1], "w1")
	f.g.ClaimWord(f.ss[1], "w2")
	f.g.ClaimWord(f.ss[1], "w3")

	sc := f.rec.lastScores(t)
	assert.Equal(t, "bob", sc.Manager)
	require.Len(t, sc.RoundScores, 1)
	assert.Equal(t, "bob", sc.RoundScores[0].UserName)
}

func TestManagerDisconnectDuringCountdownHandsOnAndPlays(t *testing.T) {
	f := setupTestGame(t, []string{"alice", "bob"}, captureParams())
	f.g.StartFirstRound()

	f.g.HandleDisconnect(f.ss[0])

	got := f.rec.lastManager(t)
	assert.Equal(t, "bob", got.Manager)
	assert.Equal(t, "bob", f.g.Manager())

	// The countdown epoch is still live; play opens for the one left.
	f.sched.fireNext(t)
	assert.Equal(t, session.StateRunning, f.ss[1].State())
	wl := f.rec.lastWordsList(t)
	assert.Len(t, wl.Words, 3)
}

func TestRoundRecordReachesSinks(t *testing.T) {
	sink := chanSink{recs: make(chan RoundRecord, 1)}
	f := setupTestGame(t, []string{"alice", "bob"}, captureParams(), sink)
	f.startPlaying(t)
	f.clock.advance(20 * time.Second)
	f.g.ClaimWord(f.ss[0], "w1")
	f.g.ClaimWord(f.ss[0], "w2")
	f.g.ClaimWord(f.ss[0], "w3")

	select {
	case rec := <-sink.recs:
		assert.Equal(t, uint64(7), rec.GameID)
		assert.Equal(t, 1, rec.RoundID)
		assert.Equal(t, "capture", rec.Mode)
		assert.Equal(t, 3, rec.WordsCount)
		assert.Equal(t, int64(20000), rec.RoundDuration)
		assert.Equal(t, "alice", rec.Victor)
		require.Len(t, rec.Scores, 2)
		assert.Equal(t, "alice", rec.Scores[0].UserName)
	case <-time.After(time.Second):
		t.Fatal("round record never reached the sink")
	}
}

func TestCalculusRoundsUseCalcProvider(t *testing.T) {
	params := captureParams()
	params.Style = words.StyleCalculus
	params.WordsCount = 2
	f := setupTestGame(t, []string{"alice", "bob"}, params)
	f.startPlaying(t)

	wl := f.rec.lastWordsList(t)
	require.Len(t, wl.Words, 2)
	assert.Equal(t, "10", wl.Words[0].Label)
	assert.Equal(t, "5 + 5", wl.Words[0].Display)

	// The result is what gets typed.
	f.g.ClaimWord(f.ss[0], "10")
	wl = f.rec.lastWordsList(t)
	assert.Equal(t, "alice", wl.Words[0].ClaimedBy)
}
