// Package idgen allocates session and step identifiers. Tests replace NewFunc
// to get deterministic ids; callers treat the result as an opaque string.
package idgen
