package session

// Access selects the entry lock taken by Acquire
type Access int

const (
	// Exclusive serializes with every other holder of the key
	Exclusive Access = iota
	// Shared runs alongside other shared holders
	Shared
)

// Lookup selects what Acquire does for unknown keys
type Lookup int

const (
	// ExistingOnly fails with ErrNotFound
	ExistingOnly Lookup = iota
	// CreateIfMissing instantiates the session through the factory
	CreateIfMissing
)

// Mode combines access and lookup behaviour
type Mode struct {
	Access Access
	Lookup Lookup
}

var (
	// ModeStart creates or resumes a session for an advance
	ModeStart = Mode{Access: Exclusive, Lookup: CreateIfMissing}
	// ModeAdvance resumes an existing session for an advance
	ModeAdvance = Mode{Access: Exclusive, Lookup: ExistingOnly}
	// ModeInspect reads an existing session
	ModeInspect = Mode{Access: Shared, Lookup: ExistingOnly}
)
