package conversation

import "artassist/internal/service/assistant"

// Event is a request to change a conversation. Only Apply consumes events.
type Event interface {
	event()
}

// SetInput replaces the draft text.
type SetInput struct {
	Text string
}

// QuickAction prefills the draft with a quick action prompt.
type QuickAction struct {
	Key string
}

// Submit sends the current draft.
type Submit struct{}

// Complete delivers the suggestion for the outstanding submission.
type Complete struct {
	Result assistant.Result
}

// Fail ends the outstanding submission without suggestions.
type Fail struct{}

// SetCredential stores an API key for the model path.
type SetCredential struct {
	Provider string
	Model    string
	APIKey   string
}

// ClearCredential removes the stored API key.
type ClearCredential struct{}

func (SetInput) event()        {}
func (QuickAction) event()     {}
func (Submit) event()          {}
func (Complete) event()        {}
func (Fail) event()            {}
func (SetCredential) event()   {}
func (ClearCredential) event() {}
