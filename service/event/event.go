package event

import (
	"time"

	"github.com/viant/waypoint/internal/clock"
)

// Type identifies a session lifecycle event
type Type string

const (
	TypeCreated  Type = "created"
	TypeAdvanced Type = "advanced"
	TypeEvicted  Type = "evicted"
)

type Context struct {
	TenantID    string `json:"tenantID"`
	SessionID   string `json:"sessionID"`
	EventType   Type   `json:"eventType"`
	Action      string `json:"action,omitempty"`
	Outcome     string `json:"outcome,omitempty"`
	TimeTakenMs int    `json:"timeTakenMs,omitempty"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
