// Package session holds live workflow instances keyed by tenant and session
// id in a bounded least-recently-used store.
//
// Every lookup pins its entry so that capacity pressure never evicts an
// instance that is being advanced or inspected, and takes the entry's
// read/write lock so that advances on one key are serialized while
// inspections may share access. The store mutex guards only the index.
package session
