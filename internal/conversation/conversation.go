package conversation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"artassist/internal/catalog"
	"artassist/internal/models"
	"artassist/internal/service/assistant"
)

const (
	GreetingText      = "Привет! Я ваш персональный арт-ассистент 🎨 Опишите ваше настроение, идею или просто ключевое слово, и я предложу вам уникальные концепции для творчества!"
	CatalogPreface    = "Отличная идея! Вот несколько концепций, которые могут вас вдохновить:"
	GeneratedPreface  = "Вот идеи, сгенерированные ИИ специально для вас:"
	ApologyText       = "Извините, произошла ошибка при генерации идей. Попробуйте ещё раз."
	credentialMask    = "••••"
	credentialHintLen = 4
)

var (
	ErrEmptyInput         = errors.New("input is empty")
	ErrBusy               = errors.New("a response is already being generated")
	ErrNotAwaiting        = errors.New("no response is pending")
	ErrUnknownQuickAction = errors.New("unknown quick action")
	ErrEmptyCredential    = errors.New("api key is empty")
	ErrUnknownEvent       = errors.New("unknown event")
)

// State is the position of a conversation in its request cycle.
type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
)

func (s State) String() string {
	if s == StateAwaitingResponse {
		return "awaiting_response"
	}
	return "idle"
}

// Outcome reports what an event changed.
type Outcome struct {
	// Message is a copy of the message appended by the event, if any.
	Message *models.Message
	// Prompt and Credential are set by Submit for the generation step.
	Prompt     string
	Credential *assistant.Credential
}

// Conversation holds the messages, draft and credential of one session.
// It is not safe for concurrent use; the owner serializes calls.
type Conversation struct {
	id         string
	state      State
	messages   []*models.Message
	input      string
	credential *assistant.Credential
	createdAt  time.Time
	updatedAt  time.Time

	now   func() time.Time
	newID func() string
}

// New starts a conversation with the greeting message.
func New(id string) *Conversation {
	c := newConversation(id)
	c.createdAt = c.now()
	c.append(models.RoleAssistant, GreetingText, nil, "")
	return c
}

// Restore rebuilds an idle conversation from a snapshot. Credentials are never part of a snapshot.
func Restore(snap *models.Session) *Conversation {
	c := newConversation(snap.ID)
	c.input = snap.Input
	c.createdAt = snap.CreatedAt
	c.updatedAt = snap.UpdatedAt
	c.messages = make([]*models.Message, 0, len(snap.Messages))
	for _, msg := range snap.Messages {
		if msg != nil {
			c.messages = append(c.messages, msg.Clone())
		}
	}
	return c
}

func newConversation(id string) *Conversation {
	if id == "" {
		id = uuid.NewString()
	}
	return &Conversation{
		id:    id,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (c *Conversation) ID() string {
	return c.id
}

func (c *Conversation) State() State {
	return c.state
}

// Credential returns a copy of the stored credential, or nil.
func (c *Conversation) Credential() *assistant.Credential {
	if c.credential == nil {
		return nil
	}
	cred := *c.credential
	return &cred
}

func (c *Conversation) UpdatedAt() time.Time {
	return c.updatedAt
}

// Apply is the single transition function. A returned error means nothing changed.
func (c *Conversation) Apply(ev Event) (Outcome, error) {
	switch e := ev.(type) {
	case SetInput:
		c.input = e.Text
		c.touch()
		return Outcome{}, nil
	case QuickAction:
		action, ok := catalog.QuickActionByKey(e.Key)
		if !ok {
			return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownQuickAction, e.Key)
		}
		c.input = action.Prompt()
		c.touch()
		return Outcome{}, nil
	case Submit:
		return c.submit()
	case Complete:
		if c.state != StateAwaitingResponse {
			return Outcome{}, ErrNotAwaiting
		}
		ideas := e.Result.Ideas
		if len(ideas) > models.MaxIdeasPerMessage {
			ideas = ideas[:models.MaxIdeasPerMessage]
		}
		preface := CatalogPreface
		if e.Result.UsedCredential {
			preface = GeneratedPreface
		}
		msg := c.append(models.RoleAssistant, preface, models.CloneIdeas(ideas), e.Result.Source)
		c.state = StateIdle
		return Outcome{Message: msg.Clone()}, nil
	case Fail:
		if c.state != StateAwaitingResponse {
			return Outcome{}, ErrNotAwaiting
		}
		msg := c.append(models.RoleAssistant, ApologyText, nil, "")
		c.state = StateIdle
		return Outcome{Message: msg.Clone()}, nil
	case SetCredential:
		key := strings.TrimSpace(e.APIKey)
		if key == "" {
			return Outcome{}, ErrEmptyCredential
		}
		c.credential = &assistant.Credential{
			Provider: strings.ToLower(strings.TrimSpace(e.Provider)),
			Model:    strings.TrimSpace(e.Model),
			APIKey:   key,
		}
		c.touch()
		return Outcome{}, nil
	case ClearCredential:
		c.credential = nil
		c.touch()
		return Outcome{}, nil
	default:
		return Outcome{}, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
}

func (c *Conversation) submit() (Outcome, error) {
	if strings.TrimSpace(c.input) == "" {
		return Outcome{}, ErrEmptyInput
	}
	if c.state == StateAwaitingResponse {
		return Outcome{}, ErrBusy
	}
	prompt := c.input
	msg := c.append(models.RoleUser, prompt, nil, "")
	c.input = ""
	c.state = StateAwaitingResponse
	out := Outcome{Message: msg.Clone(), Prompt: prompt}
	if c.credential != nil {
		cred := *c.credential
		out.Credential = &cred
	}
	return out, nil
}

func (c *Conversation) append(role models.Role, content string, ideas []models.Idea, source models.IdeaSource) *models.Message {
	msg := &models.Message{
		ID:        c.newID(),
		Role:      role,
		Content:   content,
		CreatedAt: c.now(),
		Ideas:     ideas,
		Source:    source,
	}
	c.messages = append(c.messages, msg)
	c.updatedAt = msg.CreatedAt
	return msg
}

func (c *Conversation) touch() {
	c.updatedAt = c.now()
}

// Snapshot returns a deep copy of the visible state.
func (c *Conversation) Snapshot() *models.Session {
	snap := &models.Session{
		ID:         c.id,
		Messages:   make([]*models.Message, 0, len(c.messages)),
		Input:      c.input,
		Generating: c.state == StateAwaitingResponse,
		CreatedAt:  c.createdAt,
		UpdatedAt:  c.updatedAt,
	}
	for _, msg := range c.messages {
		snap.Messages = append(snap.Messages, msg.Clone())
	}
	if c.credential != nil {
		snap.CredentialConfigured = true
		snap.CredentialHint = maskKey(c.credential.APIKey)
		snap.Provider = c.credential.Provider
	}
	return snap
}

func maskKey(key string) string {
	r := []rune(key)
	if len(r) <= credentialHintLen*2 {
		return credentialMask
	}
	return credentialMask + string(r[len(r)-credentialHintLen:])
}
