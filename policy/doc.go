// Package policy provides optional declarative rules restricting which action
// services a workflow may execute. A policy can be configured on the executor
// or attached to a single call through the context.
package policy
