// Package executor runs a single workflow action: it validates caller inputs
// against the action schema, expands static parameters, converts them to the
// method's input type and turns the method output into state updates.
package executor
