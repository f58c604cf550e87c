package server

import (
	"net/http"
	"sync"
	"time"

	"interviewprep/internal/codepanel"
	"interviewprep/internal/errors"
	"interviewprep/internal/wizard"

	"github.com/google/uuid"
)

// SessionCookie names the cookie carrying the session id
const SessionCookie = "interviewprep_session"

// Session is one browser's wizard and code panel
type Session struct {
	ID     string
	Wizard *wizard.Controller
	Code   *codepanel.Panel

	mu     sync.Mutex
	notice string
}

// Flash stores a one-shot message shown on the next page render
func (s *Session) Flash(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = msg
}

// TakeFlash returns and clears the pending message
func (s *Session) TakeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.notice
	s.notice = ""
	return msg
}

// SessionStore keeps sessions until they have been idle for ttl
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	lastSeen map[string]time.Time
	ttl      time.Duration
	factory  func() *Session
	done     chan struct{}
	closed   bool
	hooks    SessionHooks
	logger   *errors.Logger
}

// SessionHooks are called when sessions are created and evicted
type SessionHooks struct {
	OnOpen  func()
	OnClose func()
}

// NewSessionStore creates a store and starts its eviction goroutine.
// A zero ttl means 30 minutes.
func NewSessionStore(ttl time.Duration, factory func() *Session, hooks SessionHooks, logger *errors.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	st := &SessionStore{
		sessions: make(map[string]*Session),
		lastSeen: make(map[string]time.Time),
		ttl:      ttl,
		factory:  factory,
		done:     make(chan struct{}),
		hooks:    hooks,
		logger:   logger,
	}

	interval := ttl / 2
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	go st.cleanupRoutine(interval)
	return st
}

// Get returns the session named by the request cookie, creating one and
// setting the cookie when it is missing or expired
func (st *SessionStore) Get(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if sess := st.lookup(c.Value); sess != nil {
			return sess
		}
	}

	sess := st.create()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(st.ttl.Seconds()),
	})
	return sess
}

func (st *SessionStore) lookup(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil
	}
	st.lastSeen[id] = time.Now()
	return sess
}

func (st *SessionStore) create() *Session {
	sess := st.factory()
	sess.ID = uuid.NewString()

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.lastSeen[sess.ID] = time.Now()
	st.mu.Unlock()

	if st.hooks.OnOpen != nil {
		st.hooks.OnOpen()
	}
	st.logger.Debug("Session created", "session_id", sess.ID)
	return sess
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *SessionStore) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			st.evict(time.Now())
		case <-st.done:
			return
		}
	}
}

// evict removes sessions idle for longer than ttl at now
func (st *SessionStore) evict(now time.Time) int {
	st.mu.Lock()
	var evicted int
	for id, seen := range st.lastSeen {
		if now.Sub(seen) > st.ttl {
			delete(st.sessions, id)
			delete(st.lastSeen, id)
			evicted++
		}
	}
	remaining := len(st.sessions)
	st.mu.Unlock()

	if st.hooks.OnClose != nil {
		for range evicted {
			st.hooks.OnClose()
		}
	}
	if evicted > 0 {
		st.logger.Debug("Session cleanup completed", "evicted", evicted, "remaining_sessions", remaining)
	}
	return evicted
}

// Close stops the eviction goroutine. It is safe to call more than once.
func (st *SessionStore) Close() {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.closed {
		st.closed = true
		close(st.done)
	}
}
