package bot

import "sync"

// step is one stop in a wizard conversation. Each flow has its own struct
// carrying only the fields that flow needs; the zero session (nil step)
// means the chat is idle.
type step interface {
	isStep()
}

// loginStep walks username → password.
type loginStep struct {
	Username string
}

// createCityStep waits for a single name message.
type createCityStep struct{}

// createCategoryStep walks name → image URL.
type createCategoryStep struct {
	Name string
}

// createOfferStep walks the seven offer fields in order. Stage counts
// answered questions, Draft accumulates them.
type createOfferStep struct {
	Stage int
	Draft OfferDraft
}

// createAdminStep walks username → password for the superadmin-only
// admin signup.
type createAdminStep struct {
	Username string
}

func (loginStep) isStep()          {}
func (createCityStep) isStep()     {}
func (createCategoryStep) isStep() {}
func (createOfferStep) isStep()    {}
func (createAdminStep) isStep()    {}

// session is the per-chat conversation state. Token and Role persist
// across wizard runs; Step is whatever flow is currently in flight.
type session struct {
	Token string
	Role  string
	Step  step
}

// sessionStore owns all chat sessions behind a single mutex. One step is
// in flight per chat at a time; the handler goroutine reads, mutates and
// writes back under Update's lock.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*session)}
}

// Update runs fn against the chat's session, creating it on first contact.
func (s *sessionStore) Update(chatID int64, fn func(*session)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		sess = &session{}
		s.sessions[chatID] = sess
	}
	fn(sess)
}

// Snapshot returns a copy of the chat's session state.
func (s *sessionStore) Snapshot(chatID int64) session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[chatID]; ok {
		return *sess
	}
	return session{}
}
