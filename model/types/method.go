package types

import (
	"context"
	"reflect"
)

type Signatures []Signature

func (s Signatures) Lookup(name string) *Signature {
	for i := range s {
		sig := &s[i]
		if sig.Name == name {
			return sig
		}
	}
	return nil
}

// Signature	method signature. A nil Input (or Output) means the method works
// with a plain map[string]interface{} instead of a typed struct.
type Signature struct {
	Name        string
	Description string
	Input       reflect.Type
	Output      reflect.Type
}

// Executable is a function that can be executed
type Executable func(context context.Context, input, output interface{}) error
