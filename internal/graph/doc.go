// Package graph defines the read-only traversal surface the render cache
// consumes. The node editor owns the actual graph; everything here is an
// interface boundary plus the small value types shared across it.
package graph
