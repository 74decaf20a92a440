package worker

import (
	"artassist/internal/models"
	"artassist/internal/service/assistant"
)

type generationTask struct {
	prompt   string
	cred     *assistant.Credential
	resultCh chan *models.Message
}

// runWorker serves generation tasks of one session in order until the session ends.
func (m *Manager) runWorker(state *sessionState) {
	debugLog("worker for session %s started", state.id())
	for {
		select {
		case <-state.stopCh:
			debugLog("worker for session %s stopped", state.id())
			return
		case task := <-state.taskCh:
			m.handleGeneration(state, task)
		}
	}
}
