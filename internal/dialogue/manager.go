package dialogue

import (
	"strings"
	"sync"
	"time"
)

// Manager owns the identity -> session map. The map is shared mutable state
// between whatever goroutines process inbound events, so every access goes
// through the mutex; a single identity's events arrive in order, which keeps
// per-session advancement race-free.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*session
	timeout  time.Duration
	now      func() time.Time
}

func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		sessions: make(map[int64]*session),
		timeout:  timeout,
		now:      time.Now,
	}
}

// Stage reports the current stage for an identity. A stale session counts
// as idle but is not dropped here; Advance and SweepExpired do that.
func (m *Manager) Stage(id int64) Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || m.expired(s, m.now()) {
		return StageIdle
	}
	return s.stage
}

// Advance applies one event for an identity and returns what happened.
// A session idle past the timeout is silently reset first, so a very late
// reply is evaluated as if the identity were idle.
func (m *Manager) Advance(id int64, ev Event) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var res Result
	s := m.sessions[id]
	if s != nil && m.expired(s, now) {
		delete(m.sessions, id)
		s = nil
		res.Expired = true
	}

	switch ev.Kind {
	case EventStart:
		// Any prior session is discarded, no carry-over.
		m.sessions[id] = &session{stage: StagePhoto, startedAt: now}
		res.Outcome = OutcomeStarted

	case EventCancel:
		if s == nil {
			res.Outcome = OutcomeNone
			return res
		}
		delete(m.sessions, id)
		res.Outcome = OutcomeCancelled

	case EventPhoto:
		if s == nil {
			res.Outcome = OutcomeNone
			return res
		}
		switch s.stage {
		case StagePhoto:
			s.draft.PhotoFileID = ev.FileID
			s.draft.PhotoURL = ev.URL
			s.stage = StageTitle
			res.Outcome = OutcomePhotoAccepted
		case StageTitle:
			res.Outcome = OutcomeRepromptTitle
		case StageDescription:
			res.Outcome = OutcomeRepromptDescription
		}

	case EventText:
		if s == nil {
			res.Outcome = OutcomeNone
			return res
		}
		text := strings.TrimSpace(ev.Text)
		switch s.stage {
		case StagePhoto:
			res.Outcome = OutcomeRepromptPhoto
		case StageTitle:
			if text == "" {
				res.Outcome = OutcomeRepromptTitle
				return res
			}
			s.draft.Title = text
			s.stage = StageDescription
			res.Outcome = OutcomeTitleAccepted
		case StageDescription:
			if text == "" {
				res.Outcome = OutcomeRepromptDescription
				return res
			}
			s.draft.Description = text
			res.Draft = s.draft
			delete(m.sessions, id)
			res.Outcome = OutcomeCompleted
		}
	}
	return res
}

// SweepExpired drops sessions idle past the timeout and returns how many.
func (m *Manager) SweepExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *Manager) expired(s *session, now time.Time) bool {
	return now.Sub(s.startedAt) > m.timeout
}
