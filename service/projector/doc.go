// Package projector builds the read-only view of a session returned to callers.
package projector
