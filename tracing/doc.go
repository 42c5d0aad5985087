// Package tracing wraps OpenTelemetry so that session advances can be traced
// without callers importing the SDK.
package tracing
