// Package extension holds the run-time registry of action services that a
// workflow can reference by name.
package extension
