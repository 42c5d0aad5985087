package projector

import "github.com/viant/waypoint/service/driver"

type stepKind int

const (
	stepUnknown stepKind = iota
	stepPendingInput
	stepTerminal
)

// NextStep tells the caller what the session waits for
type NextStep struct {
	kind stepKind
	name string
}

// PendingInput waits for input at a checkpoint
func PendingInput(name string) NextStep {
	return NextStep{kind: stepPendingInput, name: name}
}

// Terminal reports a finished workflow
func Terminal() NextStep {
	return NextStep{kind: stepTerminal}
}

// Unknown reports a halt outside of the recognized input checkpoints
func Unknown() NextStep {
	return NextStep{}
}

// IsPendingInput returns true if the session waits for input
func (n NextStep) IsPendingInput() bool { return n.kind == stepPendingInput }

// IsTerminal returns true if the workflow finished
func (n NextStep) IsTerminal() bool { return n.kind == stepTerminal }

// Name returns the checkpoint name, or driver.Done
func (n NextStep) Name() string {
	if n.kind == stepPendingInput {
		return n.name
	}
	return driver.Done
}

func (n NextStep) String() string {
	return n.Name()
}

// Classify maps a driver result to the next step. Only input checkpoints are
// reported by name.
func Classify(result *driver.Result, checkpoints *driver.Checkpoints) NextStep {
	if result == nil {
		return Unknown()
	}
	switch result.Kind {
	case driver.KindTerminal:
		return Terminal()
	case driver.KindBefore, driver.KindAfter:
		if checkpoints.IsInput(result.Action) {
			return PendingInput(result.Action)
		}
	}
	return Unknown()
}
