package model

import (
	"fmt"

	"github.com/viant/waypoint/model/graph"
)

// Workflow represents a workflow definition
type Workflow struct {

	// Source provides information about the origin of the workflow
	Source *Source `json:"source,omitempty" yaml:"source,omitempty"`
	// Name is the unique identifier for the workflow
	Name string `json:"name" yaml:"name"`

	// Description provides a human-readable description of the workflow
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Version specifies the workflow version
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Entrypoint is the first pending action of a fresh instance
	Entrypoint string `json:"entrypoint" yaml:"entrypoint"`

	// Actions defines the nodes of the workflow graph
	Actions []*graph.Action `json:"actions,omitempty" yaml:"actions,omitempty"`

	// Transitions are evaluated in declaration order; the first match wins
	Transitions []*graph.Transition `json:"transitions,omitempty" yaml:"transitions,omitempty"`
}

type Source struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Action returns an action by name or nil
func (w *Workflow) Action(name string) *graph.Action {
	for _, action := range w.Actions {
		if action.Name == name {
			return action
		}
	}
	return nil
}

// Next returns the action following from for the supplied state, or an empty
// string when no transition matches (terminal).
func (w *Workflow) Next(from string, state map[string]interface{}) string {
	for _, transition := range w.Transitions {
		if transition.From != from {
			continue
		}
		if transition.Match(state) {
			return transition.To
		}
	}
	return ""
}

// Validate performs a best-effort structural validation of the workflow.  The
// returned slice is empty when the workflow is sound; otherwise it contains
// human-readable error descriptions.
func (w *Workflow) Validate() []error {
	var issues []error
	if len(w.Actions) == 0 {
		issues = append(issues, fmt.Errorf("workflow %s has no actions", w.Name))
		return issues
	}

	seen := map[string]bool{}
	for _, action := range w.Actions {
		if action == nil || action.Name == "" {
			issues = append(issues, fmt.Errorf("workflow %s has unnamed action", w.Name))
			continue
		}
		if seen[action.Name] {
			issues = append(issues, fmt.Errorf("duplicate action %s", action.Name))
		}
		seen[action.Name] = true
		if action.Service == "" {
			issues = append(issues, fmt.Errorf("action %s has no service", action.Name))
		}
	}

	if w.Entrypoint == "" {
		issues = append(issues, fmt.Errorf("workflow %s has no entrypoint", w.Name))
	} else if !seen[w.Entrypoint] {
		issues = append(issues, fmt.Errorf("entrypoint refers to unknown action %s", w.Entrypoint))
	}

	for _, transition := range w.Transitions {
		if !seen[transition.From] {
			issues = append(issues, fmt.Errorf("transition from unknown action %s", transition.From))
		}
		if !seen[transition.To] {
			issues = append(issues, fmt.Errorf("transition %s refers to unknown action %s", transition.From, transition.To))
		}
		if transition.When != nil && transition.When.Key == "" {
			issues = append(issues, fmt.Errorf("transition %s -> %s has condition without key", transition.From, transition.To))
		}
	}

	// Unreachable actions = actions never visited from the entrypoint
	if w.Entrypoint != "" && seen[w.Entrypoint] {
		reached := map[string]bool{}
		var visit func(string)
		visit = func(name string) {
			if reached[name] {
				return
			}
			reached[name] = true
			for _, transition := range w.Transitions {
				if transition.From == name {
					visit(transition.To)
				}
			}
		}
		visit(w.Entrypoint)
		for _, action := range w.Actions {
			if action != nil && action.Name != "" && !reached[action.Name] {
				issues = append(issues, fmt.Errorf("action %s is unreachable from %s", action.Name, w.Entrypoint))
			}
		}
	}
	return issues
}

// NewWorkflow creates a new workflow with the given name
func NewWorkflow(name string) *Workflow {
	return &Workflow{Name: name}
}

// WithDescription sets the description of the workflow
func (w *Workflow) WithDescription(description string) *Workflow {
	w.Description = description
	return w
}

// WithVersion sets the version of the workflow
func (w *Workflow) WithVersion(version string) *Workflow {
	w.Version = version
	return w
}

// WithEntrypoint sets the first action
func (w *Workflow) WithEntrypoint(name string) *Workflow {
	w.Entrypoint = name
	return w
}

// NewAction creates a new action and adds it to the workflow. The first
// action added becomes the entrypoint unless one is already set.
func (w *Workflow) NewAction(name, service, method string) *graph.Action {
	action := &graph.Action{Name: name, Service: service, Method: method}
	w.Actions = append(w.Actions, action)
	if w.Entrypoint == "" {
		w.Entrypoint = name
	}
	return action
}

// AddTransition appends a transition; when may be nil
func (w *Workflow) AddTransition(from, to string, when *graph.Condition) *Workflow {
	w.Transitions = append(w.Transitions, &graph.Transition{From: from, To: to, When: when})
	return w
}
