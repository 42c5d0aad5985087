package policy

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Execution modes recognised by the executor.
const (
	ModeAuto = "auto" // execute allowed actions (default)
	ModeDeny = "deny" // block every action
)

// ErrDenied is returned for actions rejected by a policy
var ErrDenied = errors.New("action denied by policy")

// Policy filters actions by their fully-qualified "service.method" name.
// Entries match case-insensitively; "service.*" matches every method of a
// service. A nil *Policy allows everything.
type Policy struct {
	Mode  string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	Allow []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	Block []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// Validate checks the mode
func (p *Policy) Validate() error {
	if p == nil {
		return nil
	}
	switch p.Mode {
	case "", ModeAuto, ModeDeny:
		return nil
	}
	return fmt.Errorf("invalid policy mode %q", p.Mode)
}

// IsAllowed evaluates Block and Allow lists; Block has priority and an empty
// Allow list admits everything not blocked.
func (p *Policy) IsAllowed(action string) bool {
	if p == nil {
		return true
	}
	if p.Mode == ModeDeny {
		return false
	}
	normalized := strings.ToLower(action)
	for _, candidate := range p.Block {
		if matches(candidate, normalized) {
			return false
		}
	}
	if len(p.Allow) == 0 {
		return true
	}
	for _, candidate := range p.Allow {
		if matches(candidate, normalized) {
			return true
		}
	}
	return false
}

// Check returns ErrDenied for actions the policy rejects
func (p *Policy) Check(action string) error {
	if p.IsAllowed(action) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDenied, action)
}

func matches(pattern, normalized string) bool {
	pattern = strings.ToLower(pattern)
	if service, ok := strings.CutSuffix(pattern, ".*"); ok {
		return strings.HasPrefix(normalized, service+".")
	}
	return pattern == normalized
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy embedded by WithPolicy, or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
