package execution

import "sync"

// Session holds the mutable state of an instance
type Session struct {
	ID    string
	State map[string]interface{}
	mu    sync.RWMutex
}

// Merge copies all values into the session, overwriting existing keys
func (s *Session) Merge(values map[string]interface{}) {
	if len(values) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.State[k] = v
	}
}

// GetAll returns a shallow copy of all parameters
func (s *Session) GetAll() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]interface{}, len(s.State))
	for k, v := range s.State {
		result[k] = v
	}
	return result
}

// NewSession creates a new session
func NewSession(id string, state map[string]interface{}) *Session {
	ret := &Session{ID: id, State: make(map[string]interface{}, len(state))}
	for k, v := range state {
		ret.State[k] = v
	}
	return ret
}
