// Package render coordinates individual render requests against the
// frame cache. Each request is hashed, checked against the persisted
// catalog, claimed so no other worker renders the same content, rendered
// through an injected Renderer, and persisted. Every request ends in
// exactly one terminal outcome: Completed, AlreadyCached, or
// AlreadyBeingCached. Retry policy belongs to the caller.
package render
