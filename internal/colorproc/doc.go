// Package colorproc memoizes color-pipeline processors keyed by their
// transform descriptor, and carries the small color conversion helpers the
// render path shares. Entries live for the owning render context's lifetime;
// there is no eviction policy.
package colorproc
