// Package lobby tracks every game between creation and start, assigns game
// ids, and keeps sessions sitting in the lobby supplied with the current
// games list. Lock order is one way: a running game may call back into the
// lobby while holding its own lock, so the lobby never touches a game while
// holding the lobby lock.
package lobby

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/typerace/server/internal/game"
	"github.com/typerace/server/internal/metrics"
	"github.com/typerace/server/internal/protocol"
	"github.com/typerace/server/internal/session"
	"github.com/typerace/server/internal/words"
)

// PendingGame is a created game waiting in the lobby for players and a start.
// Members are in join order; the first one is the creator.
type PendingGame struct {
	ID      uint64
	Params  protocol.CreateParams
	Members []*session.Session
}

// summary renders the descriptor shown in the games list.
func (p *PendingGame) summary() protocol.GameSummary {
	players := make([]string, 0, len(p.Members))
	for _, s := range p.Members {
		players = append(players, s.Name())
	}
	return protocol.GameSummary{
		ID:         p.ID,
		Creator:    p.Members[0].Name(),
		Mode:       p.Params.Mode,
		Style:      string(p.Params.Style),
		Rounds:     p.Params.Rounds,
		WordsCount: p.Params.WordsCount,
		Language:   p.Params.Language,
		Difficulty: string(p.Params.Difficulty),
		Players:    players,
	}
}

func (p *PendingGame) remove(s *session.Session) {
	for i, member := range p.Members {
		if member == s {
			p.Members = append(p.Members[:i], p.Members[i+1:]...)
			return
		}
	}
}

// GameDeps are the collaborators handed to every game the lobby starts.
type GameDeps struct {
	Countdown time.Duration
	Clock     game.Clock
	Scheduler game.Scheduler
	Dict      words.DictionaryProvider
	Calc      words.CalculusProvider
	Sinks     []game.TopScoreSink
}

// Manager owns the pending and running game tables. Game ids are handed out
// from a monotonic counter starting at 1, so id 0 always means "no game".
type Manager struct {
	mu      sync.Mutex
	pending map[uint64]*PendingGame
	running map[uint64]*game.Game
	nextID  uint64

	registry *session.Registry
	send     session.SendFunc
	deps     GameDeps
}

func NewManager(registry *session.Registry, send session.SendFunc, deps GameDeps) *Manager {
	return &Manager{
		pending:  make(map[uint64]*PendingGame),
		running:  make(map[uint64]*game.Game),
		nextID:   1,
		registry: registry,
		send:     send,
		deps:     deps,
	}
}

// Connect hands a freshly identified session its first view of the lobby.
func (m *Manager) Connect(s *session.Session) {
	m.send([]*session.Session{s}, m.GamesList(), false)
}

// CreateGame opens a new pending game with s as its creator and future
// manager, and shows everyone in the lobby the updated list.
func (m *Manager) CreateGame(s *session.Session, params protocol.CreateParams) {
	m.mu.Lock()
	if s.GameID() != 0 {
		m.mu.Unlock()
		log.Printf("lobby: create-game from %q ignored, already in game %d", s.Name(), s.GameID())
		return
	}
	id := m.nextID
	m.nextID++
	m.pending[id] = &PendingGame{ID: id, Params: params, Members: []*session.Session{s}}
	s.SetGame(id)
	s.SetState(session.StateCreated)
	list := m.gamesListUnsafe()
	m.mu.Unlock()

	metrics.GamesCreated.Inc()
	m.send(m.lobbyTargets(), list, false)
	log.Printf("lobby: game %d created by %q (%s/%s)", id, s.Name(), params.Mode, params.Style)
}

// DeleteGame withdraws the pending game s created and returns any joined
// players to the lobby.
func (m *Manager) DeleteGame(s *session.Session) {
	m.mu.Lock()
	p, ok := m.pending[s.GameID()]
	if !ok || p.Members[0] != s {
		m.mu.Unlock()
		log.Printf("lobby: delete-game from %q ignored", s.Name())
		return
	}
	delete(m.pending, p.ID)
	for _, member := range p.Members {
		member.ClearGame()
		member.SetState(session.StateIdentified)
	}
	list := m.gamesListUnsafe()
	m.mu.Unlock()

	m.send(m.lobbyTargets(), list, false)
	log.Printf("lobby: game %d deleted by %q", p.ID, s.Name())
}

// JoinGame adds s to a pending game. A stale id gets the fresh list back so
// the client can re-render; on success everyone in the lobby sees the new
// player on the descriptor.
func (m *Manager) JoinGame(s *session.Session, id uint64) {
	m.mu.Lock()
	if s.GameID() != 0 {
		m.mu.Unlock()
		log.Printf("lobby: join-game from %q ignored, already in game %d", s.Name(), s.GameID())
		return
	}
	p, ok := m.pending[id]
	if !ok {
		list := m.gamesListUnsafe()
		m.mu.Unlock()
		m.send([]*session.Session{s}, list, false)
		log.Printf("lobby: join-game %d from %q refused, no such pending game", id, s.Name())
		return
	}
	p.Members = append(p.Members, s)
	players := len(p.Members)
	s.SetGame(id)
	s.SetState(session.StateJoined)
	list := m.gamesListUnsafe()
	m.mu.Unlock()

	m.send(m.lobbyTargets(), list, false)
	log.Printf("lobby: %q joined game %d (%d players)", s.Name(), id, players)
}

// LeaveGame takes a joined player back out of a pending game. The creator
// cannot leave their own game, they delete it instead.
func (m *Manager) LeaveGame(s *session.Session) {
	m.mu.Lock()
	p, ok := m.pending[s.GameID()]
	if !ok || p.Members[0] == s {
		m.mu.Unlock()
		log.Printf("lobby: leave-game from %q ignored", s.Name())
		return
	}
	p.remove(s)
	s.ClearGame()
	s.SetState(session.StateIdentified)
	list := m.gamesListUnsafe()
	m.mu.Unlock()

	m.send(m.lobbyTargets(), list, false)
	log.Printf("lobby: %q left game %d", s.Name(), p.ID)
}

// StartGame promotes the pending game s created into a running one. Members
// leave the lobby view right here under the lock; the first countdown starts
// only after the lock is released, because the running game is free to call
// back into the lobby from that point on.
func (m *Manager) StartGame(s *session.Session) {
	m.mu.Lock()
	p, ok := m.pending[s.GameID()]
	if !ok || p.Members[0] != s {
		m.mu.Unlock()
		log.Printf("lobby: start-game from %q ignored", s.Name())
		return
	}
	delete(m.pending, p.ID)
	g := game.New(game.Config{
		ID:        p.ID,
		Params:    p.Params,
		Members:   p.Members,
		Countdown: m.deps.Countdown,
		Clock:     m.deps.Clock,
		Scheduler: m.deps.Scheduler,
		Dict:      m.deps.Dict,
		Calc:      m.deps.Calc,
		Sinks:     m.deps.Sinks,
		Send:      m.send,
		Hooks:     m,
	})
	m.running[p.ID] = g
	players := len(p.Members)
	for _, member := range p.Members {
		member.SetState(session.StateStarted)
	}
	list := m.gamesListUnsafe()
	m.mu.Unlock()

	m.send(m.lobbyTargets(), list, false)
	log.Printf("lobby: game %d started with %d players", g.ID, players)
	g.StartFirstRound()
}

// Running resolves an id to its running game, for routing in-game verbs.
func (m *Manager) Running(id uint64) (*game.Game, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.running[id]
	return g, ok
}

// Pending reports whether id is still joinable, with its lobby descriptor.
func (m *Manager) Pending(id uint64) (protocol.GameSummary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pending[id]
	if !ok {
		return protocol.GameSummary{}, false
	}
	return p.summary(), true
}

// GamesList snapshots the pending-games view.
func (m *Manager) GamesList() protocol.GamesList {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamesListUnsafe()
}

// HandleDisconnect cleans up whatever s was part of when its transport died.
// The registry entry itself is the transport's to remove.
func (m *Manager) HandleDisconnect(s *session.Session) {
	id := s.GameID()
	if id == 0 {
		return
	}

	m.mu.Lock()
	if g, ok := m.running[id]; ok {
		m.mu.Unlock()
		g.HandleDisconnect(s)
		return
	}
	p, ok := m.pending[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	if p.Members[0] == s {
		delete(m.pending, p.ID)
		for _, member := range p.Members {
			member.ClearGame()
			if member != s {
				member.SetState(session.StateIdentified)
			}
		}
		log.Printf("lobby: game %d dissolved, creator %q disconnected", p.ID, s.Name())
	} else {
		p.remove(s)
		s.ClearGame()
	}
	list := m.gamesListUnsafe()
	m.mu.Unlock()

	m.send(m.lobbyTargets(), list, false)
}

// GameDestroyed implements game.LobbyHooks. Called with the game lock held,
// so only the lobby lock may be taken here, never another game's.
func (m *Manager) GameDestroyed(g *game.Game) {
	m.mu.Lock()
	delete(m.running, g.ID)
	list := m.gamesListUnsafe()
	m.mu.Unlock()
	m.send(m.lobbyTargets(), list, false)
	log.Printf("lobby: game %d removed from running table", g.ID)
}

// SessionReturned implements game.LobbyHooks: a player quit back into the
// lobby and needs the current view.
func (m *Manager) SessionReturned(s *session.Session) {
	m.send([]*session.Session{s}, m.GamesList(), false)
}

// gamesListUnsafe renders the pending games in id order. Assumes the lobby
// lock is held.
func (m *Manager) gamesListUnsafe() protocol.GamesList {
	ids := make([]uint64, 0, len(m.pending))
	for id := range m.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	games := make([]protocol.GameSummary, 0, len(ids))
	for _, id := range ids {
		games = append(games, m.pending[id].summary())
	}
	return protocol.NewGamesList(games)
}

// lobbyTargets snapshots every session currently watching the games list.
func (m *Manager) lobbyTargets() []*session.Session {
	var out []*session.Session
	for _, s := range m.registry.Sessions() {
		if s.State().InLobby() {
			out = append(out, s)
		}
	}
	return out
}
