// Package quota tracks per-session download allowances and session revocation.
package quota

import (
	"sync"
	"time"
)

// Info describes a session's download allowance.
type Info struct {
	Used      int
	Limit     int
	Remaining int
}

type session struct {
	downloads      int
	justDownloaded bool
	revoked        bool
	lastSeen       time.Time
}

// Tracker is an in-memory per-session counter. It is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	limit    int
	ttl      time.Duration
	sessions map[string]*session
	now      func() time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewTracker allows limit downloads per session. Sessions idle for longer than ttl are forgotten;
// ttl should be at least the token lifetime so that revocations outlive the tokens they cover.
func NewTracker(limit int, ttl time.Duration) *Tracker {
	if limit < 1 {
		limit = 1
	}
	t := &Tracker{
		limit:    limit,
		ttl:      ttl,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
	if ttl > 0 {
		interval := ttl / 4
		if interval < time.Second {
			interval = time.Second
		}
		t.cleanupTicker = time.NewTicker(interval)
		t.cleanupStop = make(chan struct{})
		go t.cleanup()
	}
	return t
}

// Limit returns the per-session download allowance.
func (t *Tracker) Limit() int {
	return t.limit
}

// Allow reports whether the session may start another download without consuming one.
func (t *Tracker) Allow(sessionID string) (Info, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.get(sessionID)
	return t.info(s), s.downloads < t.limit
}

// Record consumes one download and sets the just-downloaded flag.
// It refuses, without consuming, when the allowance is already spent.
func (t *Tracker) Record(sessionID string) (Info, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.get(sessionID)
	if s.downloads >= t.limit {
		return t.info(s), false
	}
	s.downloads++
	s.justDownloaded = true
	return t.info(s), true
}

// JustDownloaded reports and clears the flag set by Record.
func (t *Tracker) JustDownloaded(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok || !s.justDownloaded {
		return false
	}
	s.justDownloaded = false
	s.lastSeen = t.now()
	return true
}

// Revoke marks the session as logged out.
func (t *Tracker) Revoke(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.get(sessionID)
	s.revoked = true
	s.justDownloaded = false
}

// IsRevoked reports whether Revoke was called for the session.
func (t *Tracker) IsRevoked(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	return ok && s.revoked
}

// Len reports the number of tracked sessions.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		if t.cleanupTicker != nil {
			t.cleanupTicker.Stop()
		}
		if t.cleanupStop != nil {
			close(t.cleanupStop)
		}
	})
}

// get must be called with mu held.
func (t *Tracker) get(sessionID string) *session {
	s, ok := t.sessions[sessionID]
	if !ok {
		s = &session{}
		t.sessions[sessionID] = s
	}
	s.lastSeen = t.now()
	return s
}

func (t *Tracker) info(s *session) Info {
	remaining := t.limit - s.downloads
	if remaining < 0 {
		remaining = 0
	}
	return Info{Used: s.downloads, Limit: t.limit, Remaining: remaining}
}

func (t *Tracker) cleanup() {
	for {
		select {
		case <-t.cleanupTicker.C:
			t.expire()
		case <-t.cleanupStop:
			return
		}
	}
}

// expire drops sessions idle for longer than ttl.
func (t *Tracker) expire() {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.ttl)
	for id, s := range t.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(t.sessions, id)
		}
	}
}
