package crm

import (
	"sync"

	"realtorcrm/internal/observability"
)

// Sessions holds one Workspace per signed-in user.
type Sessions struct {
	mu    sync.Mutex
	byUID map[string]*Workspace
}

func NewSessions() *Sessions {
	return &Sessions{byUID: make(map[string]*Workspace)}
}

// Get returns the workspace of id.ID, creating it on first use. Display
// attributes are refreshed from id on every call.
func (s *Sessions) Get(id Identity) *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ws, ok := s.byUID[id.ID]; ok {
		ws.setIdentity(id)
		return ws
	}

	ws := NewWorkspace(id)
	s.byUID[id.ID] = ws
	observability.SetActiveSessions(len(s.byUID))
	return ws
}

// Lookup returns the workspace of userID without creating one.
func (s *Sessions) Lookup(userID string) (*Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.byUID[userID]
	return ws, ok
}

// Drop forgets the workspace, as on sign-out.
func (s *Sessions) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUID, userID)
	observability.SetActiveSessions(len(s.byUID))
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUID)
}
