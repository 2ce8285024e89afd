// Package catalog persists the cache-entry index: which fingerprints have a
// stored artifact, in which pixel format, and where. Entries are written once
// on render completion and removed only by explicit cleanup.
package catalog
