// Package model contains the in-memory representation of workflow
// definitions used by the waypoint engine.
//
// A workflow is a flat set of named actions connected by ordered
// transitions. It is typically loaded from a YAML document into the
// structures defined in the `graph` sub-package.
package model
