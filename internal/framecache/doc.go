// Package framecache stores rendered frames on disk keyed by content
// fingerprint and pixel format. Artifact names are a deterministic function
// of both, so external tools can locate cached frames without asking us.
package framecache
