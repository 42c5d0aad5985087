package projector

// Status summarizes the session for callers
type Status string

const (
	StatusAwaitingInput Status = "awaiting_input"
	StatusCompleted     Status = "completed"
	StatusFailed        Status = "failed"
	StatusHalted        Status = "halted"
)

// View is an immutable projection of a session
type View struct {
	SessionID string                 `json:"session_id"`
	TenantID  string                 `json:"tenant_id"`
	Fields    map[string]interface{} `json:"fields"`
	NextStep  string                 `json:"next_step"`
	Status    Status                 `json:"status"`
	Error     string                 `json:"error,omitempty"`
	Sequence  int                    `json:"sequence"`
}

// FieldSpec maps a state key to a view field
type FieldSpec struct {
	// Name is the view field name
	Name string `json:"name" yaml:"name"`
	// Key is the state key, defaults to Name
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
	// Default is projected when the key is absent
	Default interface{} `json:"default,omitempty" yaml:"default,omitempty"`
}

func (f *FieldSpec) key() string {
	if f.Key != "" {
		return f.Key
	}
	return f.Name
}
