package worker

import (
	"sync"
	"time"

	"artassist/internal/conversation"
	"artassist/internal/models"
)

// sessionState owns one conversation and the channels of its worker goroutine.
type sessionState struct {
	mu       sync.Mutex
	conv     *conversation.Conversation
	lastSeen time.Time

	taskCh   chan generationTask
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newSessionState(conv *conversation.Conversation, now time.Time) *sessionState {
	return &sessionState{
		conv:     conv,
		lastSeen: now,
		// one outstanding generation per session, so a single slot never blocks
		taskCh: make(chan generationTask, 1),
		stopCh: make(chan struct{}),
	}
}

func (s *sessionState) id() string {
	return s.conv.ID()
}

// apply runs an event through the conversation and returns the resulting snapshot.
func (s *sessionState) apply(ev conversation.Event) (conversation.Outcome, *models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.conv.Apply(ev)
	if err != nil {
		return out, nil, err
	}
	return out, s.conv.Snapshot(), nil
}

func (s *sessionState) snapshot() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Snapshot()
}

func (s *sessionState) generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.State() == conversation.StateAwaitingResponse
}

func (s *sessionState) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// idleSince reports when the session was last used, or false while a generation is pending.
func (s *sessionState) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conv.State() == conversation.StateAwaitingResponse {
		return time.Time{}, false
	}
	return s.lastSeen, true
}

func (s *sessionState) stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}
