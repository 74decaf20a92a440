package models

import "time"

// Session is a point-in-time view of one conversation. It never carries the credential itself.
type Session struct {
	ID                   string     `json:"id"`
	Messages             []*Message `json:"messages"`
	Input                string     `json:"input"`
	Generating           bool       `json:"generating"`
	CredentialConfigured bool       `json:"credential_configured"`
	CredentialHint       string     `json:"credential_hint,omitempty"`
	Provider             string     `json:"provider,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
