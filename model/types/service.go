package types

// Service is an action service a workflow can dispatch to by name.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}
