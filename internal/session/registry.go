package session

import (
	"errors"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultMaxNameLength caps display names at 16 runes.
const DefaultMaxNameLength = 16

// Name validation outcomes. The checks run in a fixed order: length before
// shape, shape before uniqueness, so a 20-rune name with a space in it is
// reported as too long.
var (
	ErrNameTooLong   = errors.New("display name too long")
	ErrNameIncorrect = errors.New("display name empty or contains whitespace")
	ErrNameUsed      = errors.New("display name already in use")
)

// Registry tracks every live session and owns display-name uniqueness.
// Names are compared case-sensitively and released only when the session is
// removed on disconnect.
type Registry struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*Session
	byName  map[string]*Session
	maxName int
}

func NewRegistry(maxNameLength int) *Registry {
	if maxNameLength <= 0 {
		maxNameLength = DefaultMaxNameLength
	}
	return &Registry{
		byID:    make(map[uuid.UUID]*Session),
		byName:  make(map[string]*Session),
		maxName: maxNameLength,
	}
}

// Add registers a freshly accepted, still unidentified session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.byID[s.ID] = s
	r.mu.Unlock()
}

// Remove drops the session and releases its name. The transport calls this
// exactly once per connection, on the way out.
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, s.ID)
	if name := s.Name(); name != "" && r.byName[name] == s {
		delete(r.byName, name)
	}
}

// Identify validates the requested display name and, on success, binds it to
// the session and moves it to IDENTIFIED.
func (r *Registry) Identify(s *Session, name string) error {
	if utf8.RuneCountInString(name) > r.maxName {
		return ErrNameTooLong
	}
	if name == "" || strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return ErrNameIncorrect
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; taken {
		return ErrNameUsed
	}
	r.byName[name] = s
	s.bindName(name)
	return nil
}

// Sessions snapshots every registered session.
func (r *Registry) Sessions() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
