package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"artassist/internal/config"
	"artassist/internal/conversation"
	"artassist/internal/models"
	"artassist/internal/redis"
	"artassist/internal/service/ai"
	"artassist/internal/service/assistant"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrQueueFull       = errors.New("generation queue full")
)

// Suggester produces the ideas for one submitted prompt.
type Suggester interface {
	Suggest(ctx context.Context, prompt string, cred *assistant.Credential) assistant.Result
}

type credentialForgetter interface {
	Forget(cred *assistant.Credential)
}

// Manager owns every live session and its worker goroutine.
type Manager struct {
	suggester Suggester
	cfg       *config.Config
	cache     *stateRedis
	slots     chan struct{}
	ttl       time.Duration
	origin    string
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionState
}

// NewManager creates a manager. cache may be nil for in-memory only operation.
func NewManager(suggester Suggester, cfg *config.Config, cache *redis.Client) *Manager {
	if cfg == nil {
		cfg = config.Default()
	}
	ttl := time.Duration(cfg.BasicConfig.SessionTTL) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	slots := cfg.BasicConfig.MaxGenerations
	if slots <= 0 {
		slots = 1
	}
	return &Manager{
		suggester: suggester,
		cfg:       cfg,
		cache:     newStateCache(cache, ttl),
		slots:     make(chan struct{}, slots),
		ttl:       ttl,
		origin:    uuid.NewString(),
		now:       time.Now,
		sessions:  make(map[string]*sessionState),
	}
}

// Listen subscribes to invalidations from other instances until ctx is done.
func (m *Manager) Listen(ctx context.Context) error {
	return m.cache.startListener(ctx, m.handleInvalidation)
}

func (m *Manager) handleInvalidation(msg invalidateMessage) {
	if msg.Origin == m.origin {
		return
	}
	m.mu.Lock()
	state, ok := m.sessions[msg.SessionID]
	if !ok {
		m.mu.Unlock()
		return
	}
	// a pending generation keeps the local copy authoritative
	if msg.Scope == scopeUpdate && state.generating() {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, msg.SessionID)
	m.mu.Unlock()
	state.stop()
	debugLog("session %s dropped after %s from %s", msg.SessionID, msg.Scope, msg.Origin)
}

// CreateSession starts a conversation with the greeting message.
func (m *Manager) CreateSession() *models.Session {
	state := newSessionState(conversation.New(""), m.now())
	m.mu.Lock()
	m.sessions[state.id()] = state
	m.mu.Unlock()
	go m.runWorker(state)

	snap := state.snapshot()
	m.persist(snap)
	return snap
}

// Snapshot returns the current view of a session.
func (m *Manager) Snapshot(id string) (*models.Session, error) {
	state, err := m.getState(id)
	if err != nil {
		return nil, err
	}
	return state.snapshot(), nil
}

func (m *Manager) SetInput(id, text string) (*models.Session, error) {
	return m.applyEvent(id, conversation.SetInput{Text: text})
}

func (m *Manager) QuickAction(id, key string) (*models.Session, error) {
	return m.applyEvent(id, conversation.QuickAction{Key: key})
}

// SetCredential resolves the provider against the configuration and stores the key in memory.
func (m *Manager) SetCredential(id, provider, model, apiKey string) (*models.Session, error) {
	name, pc, ok := m.cfg.Provider(provider)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ai.ErrUnknownProvider, provider)
	}
	if model == "" {
		model = pc.Model
	}
	state, err := m.getState(id)
	if err != nil {
		return nil, err
	}
	m.forgetCredential(state)
	return m.applyTo(state, conversation.SetCredential{Provider: name, Model: model, APIKey: apiKey})
}

func (m *Manager) ClearCredential(id string) (*models.Session, error) {
	state, err := m.getState(id)
	if err != nil {
		return nil, err
	}
	m.forgetCredential(state)
	return m.applyTo(state, conversation.ClearCredential{})
}

// Submit sends the current draft. It returns the appended user message and a channel
// that yields the assistant reply once the generation finished.
func (m *Manager) Submit(id string) (*models.Message, <-chan *models.Message, error) {
	state, err := m.getState(id)
	if err != nil {
		return nil, nil, err
	}
	out, snap, err := state.apply(conversation.Submit{})
	if err != nil {
		return nil, nil, err
	}
	m.persist(snap)

	task := generationTask{
		prompt:   out.Prompt,
		cred:     out.Credential,
		resultCh: make(chan *models.Message, 1),
	}
	select {
	case state.taskCh <- task:
	default:
		if _, snap, err := state.apply(conversation.Fail{}); err == nil {
			m.persist(snap)
		}
		return nil, nil, ErrQueueFull
	}
	debugLog("session %s queued generation", id)
	return out.Message, task.resultCh, nil
}

// EndSession drops a session here and on every other instance.
func (m *Manager) EndSession(id string) error {
	m.mu.Lock()
	state, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		if _, cached := m.cache.loadSession(id); !cached {
			return ErrSessionNotFound
		}
	} else {
		state.stop()
		m.forgetCredential(state)
	}
	m.cache.invalidateSession(id)
	m.cache.publishInvalidation(invalidateMessage{Origin: m.origin, SessionID: id, Scope: scopeEnd})
	return nil
}

// StartReaper drops sessions idle for longer than the session TTL until ctx is done.
func (m *Manager) StartReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.reap(); n > 0 {
					log.Printf("reaped %d idle sessions", n)
				}
			}
		}
	}()
}

func (m *Manager) reap() int {
	cutoff := m.now().Add(-m.ttl)
	var expired []*sessionState
	m.mu.Lock()
	for id, state := range m.sessions {
		if seen, idle := state.idleSince(); idle && seen.Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, state)
		}
	}
	m.mu.Unlock()
	for _, state := range expired {
		state.stop()
		m.forgetCredential(state)
	}
	return len(expired)
}

// Close stops every worker.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*sessionState)
	m.mu.Unlock()
	for _, state := range sessions {
		state.stop()
	}
}

func (m *Manager) applyEvent(id string, ev conversation.Event) (*models.Session, error) {
	state, err := m.getState(id)
	if err != nil {
		return nil, err
	}
	return m.applyTo(state, ev)
}

func (m *Manager) applyTo(state *sessionState, ev conversation.Event) (*models.Session, error) {
	_, snap, err := state.apply(ev)
	if err != nil {
		return nil, err
	}
	m.persist(snap)
	return snap, nil
}

// getState finds a live session, restoring it from the cache when another instance created it.
func (m *Manager) getState(id string) (*sessionState, error) {
	m.mu.Lock()
	state, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		state.touch(m.now())
		return state, nil
	}

	snap, ok := m.cache.loadSession(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	restored := newSessionState(conversation.Restore(snap), m.now())

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.sessions[id] = restored
	m.mu.Unlock()
	go m.runWorker(restored)
	debugLog("session %s restored from cache", id)
	return restored, nil
}

func (m *Manager) persist(snap *models.Session) {
	if m.cache == nil || snap == nil {
		return
	}
	m.cache.cacheSession(snap)
	m.cache.publishInvalidation(invalidateMessage{Origin: m.origin, SessionID: snap.ID, Scope: scopeUpdate})
}

func (m *Manager) forgetCredential(state *sessionState) {
	f, ok := m.suggester.(credentialForgetter)
	if !ok {
		return
	}
	state.mu.Lock()
	cred := state.conv.Credential()
	state.mu.Unlock()
	if cred != nil {
		f.Forget(cred)
	}
}

// handleGeneration runs the suggester for one task. The deferred step always leaves the
// conversation idle: a panic or a rejected Complete turns into the apology message.
func (m *Manager) handleGeneration(state *sessionState, task generationTask) {
	var reply *models.Message
	defer func() {
		if r := recover(); r != nil {
			log.Printf("generation for session %s panicked: %v", state.id(), r)
		}
		if reply == nil {
			out, snap, err := state.apply(conversation.Fail{})
			if err == nil {
				reply = out.Message
				m.persist(snap)
			}
		}
		task.resultCh <- reply
	}()

	m.slots <- struct{}{}
	defer func() { <-m.slots }()

	// detached from the request: a client disconnect does not cancel the call
	result := m.suggester.Suggest(context.Background(), task.prompt, task.cred)
	out, snap, err := state.apply(conversation.Complete{Result: result})
	if err != nil {
		log.Printf("complete generation for session %s failed: %v", state.id(), err)
		return
	}
	reply = out.Message
	m.persist(snap)
	debugLog("session %s generation done (%s, %d ideas)", state.id(), result.Source, len(result.Ideas))
}
