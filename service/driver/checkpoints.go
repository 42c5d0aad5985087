package driver

import (
	"errors"
	"fmt"
)

// Done is the next-step name reported once no checkpoint is pending
const Done = "done"

// Checkpoints defines where the driver halts
type Checkpoints struct {
	// PauseBefore lists actions the driver halts in front of
	PauseBefore []string `json:"pauseBefore,omitempty" yaml:"pauseBefore,omitempty"`
	// PauseAfter lists actions the driver halts behind
	PauseAfter []string `json:"pauseAfter,omitempty" yaml:"pauseAfter,omitempty"`
	// Input lists checkpoints that wait for human input; defaults to PauseBefore
	Input []string `json:"input,omitempty" yaml:"input,omitempty"`
}

// Init applies defaults
func (c *Checkpoints) Init() {
	if len(c.Input) == 0 && len(c.PauseBefore) > 0 {
		c.Input = append([]string{}, c.PauseBefore...)
	}
}

// Validate checks checkpoint names
func (c *Checkpoints) Validate() error {
	var errs []error
	for _, name := range append(append([]string{}, c.PauseBefore...), c.PauseAfter...) {
		switch name {
		case "":
			errs = append(errs, errors.New("checkpoint name was empty"))
		case Done:
			errs = append(errs, fmt.Errorf("checkpoint name %q is reserved", Done))
		}
	}
	for _, name := range c.Input {
		if !c.IsBefore(name) && !c.IsAfter(name) {
			errs = append(errs, fmt.Errorf("input checkpoint %q is neither pauseBefore nor pauseAfter", name))
		}
	}
	return errors.Join(errs...)
}

// IsBefore returns true if the driver halts before name
func (c *Checkpoints) IsBefore(name string) bool {
	return c != nil && contains(c.PauseBefore, name)
}

// IsAfter returns true if the driver halts after name
func (c *Checkpoints) IsAfter(name string) bool {
	return c != nil && contains(c.PauseAfter, name)
}

// IsInput returns true if name waits for human input
func (c *Checkpoints) IsInput(name string) bool {
	if c == nil {
		return false
	}
	if len(c.Input) == 0 {
		return contains(c.PauseBefore, name)
	}
	return contains(c.Input, name)
}

// Names returns every checkpoint name in declaration order without duplicates
func (c *Checkpoints) Names() []string {
	if c == nil {
		return nil
	}
	var result []string
	seen := map[string]bool{}
	for _, name := range append(append([]string{}, c.PauseBefore...), c.PauseAfter...) {
		if seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, name)
	}
	return result
}

func contains(names []string, name string) bool {
	for _, candidate := range names {
		if candidate == name {
			return true
		}
	}
	return false
}
