package session

import (
	"errors"
	"fmt"

	"github.com/viant/waypoint/service/dao"
)

// NewSessionID asks the store to allocate a fresh identity
const NewSessionID = "create_new"

// ErrNotFound is returned by ExistingOnly lookups of unknown sessions
var ErrNotFound = fmt.Errorf("session %w", dao.ErrNotFound)

// ErrInvalidKey is returned for keys without a tenant or session id
var ErrInvalidKey = errors.New("invalid session key")

// Key identifies a session
type Key struct {
	TenantID  string `json:"tenantId"`
	SessionID string `json:"sessionId"`
}

func (k Key) String() string {
	return k.TenantID + "/" + k.SessionID
}

// IsNew reports whether the key carries the allocation sentinel
func (k Key) IsNew() bool {
	return k.SessionID == NewSessionID
}

func (k Key) validate() error {
	if k.TenantID == "" || k.SessionID == "" {
		return fmt.Errorf("%w: %q", ErrInvalidKey, k.String())
	}
	return nil
}
