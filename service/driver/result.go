package driver

// Kind describes why the driver halted
type Kind int

const (
	// KindBefore halted in front of a pause-before action
	KindBefore Kind = iota
	// KindAfter halted behind a pause-after action
	KindAfter
	// KindTerminal halted because no action is pending
	KindTerminal
	// KindFailed halted because an action failed
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindBefore:
		return "before"
	case KindAfter:
		return "after"
	case KindTerminal:
		return "terminal"
	case KindFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the outcome of an advance
type Result struct {
	Kind Kind
	// Action is the checkpoint the driver halted at, or the failed action
	Action string
	Err    error
}

// Before creates a pause-before result
func Before(action string) *Result {
	return &Result{Kind: KindBefore, Action: action}
}

// After creates a pause-after result
func After(action string) *Result {
	return &Result{Kind: KindAfter, Action: action}
}

// Terminal creates a terminal result
func Terminal() *Result {
	return &Result{Kind: KindTerminal}
}

// Failed creates a failure result
func Failed(action string, err error) *Result {
	return &Result{Kind: KindFailed, Action: action, Err: err}
}
