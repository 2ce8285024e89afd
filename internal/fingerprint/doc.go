// Package fingerprint derives content digests for render requests. Two
// requests with equal fingerprints are guaranteed to produce bit-identical
// frames, so the cache treats them as interchangeable.
package fingerprint
