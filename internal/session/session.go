// Package session tracks live connections: their protocol state, their
// display name, and the bounded outbound queue the transport drains.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// State is the server-side protocol position of one session. Client-side
// transient states (joining, leaving, and friends) are never tracked here.
type State int

const (
	StateUnidentified State = iota
	StateIdentified
	StateCreated
	StateJoined
	StateStarted
	StateRunning
	StateEndRound
	StateScores
)

var stateNames = map[State]string{
	StateUnidentified: "UNIDENTIFIED",
	StateIdentified:   "IDENTIFIED",
	StateCreated:      "CREATED",
	StateJoined:       "JOINED",
	StateStarted:      "STARTED",
	StateRunning:      "RUNNING",
	StateEndRound:     "END_ROUND",
	StateScores:       "SCORES",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// InLobby reports whether a session in this state watches the games list.
func (s State) InLobby() bool {
	return s == StateIdentified || s == StateCreated || s == StateJoined
}

// InGame reports whether a session in this state belongs to a running game.
func (s State) InGame() bool {
	return s == StateStarted || s == StateRunning || s == StateEndRound || s == StateScores
}

// SendFunc delivers one event to a set of sessions. Implementations marshal
// the event once and never block on a slow receiver; critical frames are
// worth a disconnect rather than a silent loss.
type SendFunc func(targets []*Session, ev any, critical bool)

// Session is one live connection. Game and lobby code mutate it through the
// accessors only; the transport owns the queue end and the abort hook.
type Session struct {
	ID uuid.UUID

	mu      sync.Mutex
	name    string
	state   State
	gameID  uint64
	abort   func()
	aborted bool

	out chan []byte
}

// New creates an unidentified session with a bounded outbound queue. abort is
// invoked at most once, when a critical frame cannot be queued; the transport
// wires it to tear the connection down.
func New(queueSize int, abort func()) *Session {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Session{
		ID:    uuid.New(),
		abort: abort,
		out:   make(chan []byte, queueSize),
	}
}

func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// bindName is called by the registry once the name passed validation.
func (s *Session) bindName(name string) {
	s.mu.Lock()
	s.name = name
	s.state = StateIdentified
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) SetState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// GameID is the pending or running game this session sits in; zero means
// none (game ids start at one).
func (s *Session) GameID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID
}

func (s *Session) SetGame(id uint64) {
	s.mu.Lock()
	s.gameID = id
	s.mu.Unlock()
}

func (s *Session) ClearGame() {
	s.mu.Lock()
	s.gameID = 0
	s.mu.Unlock()
}

// Out exposes the outbound queue to the transport's write pump.
func (s *Session) Out() <-chan []byte { return s.out }

// Enqueue offers one pre-marshaled frame without ever blocking. A full queue
// drops the frame; when the frame is critical the session is aborted instead,
// because a consumer that far behind can no longer follow the game.
func (s *Session) Enqueue(data []byte, critical bool) bool {
	select {
	case s.out <- data:
		return true
	default:
	}
	if critical {
		s.Abort()
	}
	return false
}

// Abort tears the transport down. Safe to call repeatedly; only the first
// call reaches the hook.
func (s *Session) Abort() {
	s.mu.Lock()
	hook := s.abort
	already := s.aborted
	s.aborted = true
	s.mu.Unlock()
	if !already && hook != nil {
		hook()
	}
}
