package models

import "time"

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IdeaSource tells where the ideas of an assistant reply came from.
type IdeaSource string

const (
	SourceCatalog IdeaSource = "catalog"
	SourceAI      IdeaSource = "ai"
)

// MaxIdeasPerMessage bounds the ideas attached to one assistant reply.
const MaxIdeasPerMessage = 3

// Message is one entry of a conversation.
type Message struct {
	ID        string     `json:"id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Ideas     []Idea     `json:"ideas,omitempty"`
	Source    IdeaSource `json:"source,omitempty"`
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	c.Ideas = CloneIdeas(m.Ideas)
	return &c
}
