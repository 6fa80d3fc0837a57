package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"estate-insights/internal/index"
	"estate-insights/internal/models"
)

// State tags the responder branch a session is in. The only transition is
// NoContext -> Grounded, taken when an index build succeeds.
type State int

const (
	StateNoContext State = iota
	StateGrounded
)

// Session holds one user's transcript and, once an upload batch has been
// indexed, the current index. Nothing survives the session.
type Session struct {
	ID uuid.UUID

	mu       sync.Mutex
	messages []models.Message
	idx      *index.Index
}

func newSession() *Session {
	return &Session{
		ID:       uuid.New(),
		messages: []models.Message{{Role: models.RoleAssistant, Content: models.Greeting}},
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx == nil {
		return StateNoContext
	}
	return StateGrounded
}

// Index returns the current index, nil before the first successful build.
func (s *Session) Index() *index.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx
}

// SetIndex replaces the session's index wholesale. The previous one, if any,
// is discarded; there is no merge.
func (s *Session) SetIndex(idx *index.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = idx
}

func (s *Session) Append(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of the transcript in order.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Manager is the session registry. Sessions expire after the configured TTL
// of inactivity and are never persisted.
type Manager struct {
	store *gocache.Cache
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{store: gocache.New(ttl, 10*time.Minute)}
}

func (m *Manager) Create() *Session {
	s := newSession()
	m.store.SetDefault(s.ID.String(), s)
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	v, ok := m.store.Get(id)
	if !ok {
		return nil, &models.LookupError{Kind: "session", Key: id}
	}
	// Sliding expiration: touching a session keeps it alive.
	m.store.SetDefault(id, v)
	return v.(*Session), nil
}
