// Package invalidation tracks which portions of a timeline hold stale
// renders. Each tracker owns one disjoint set of invalid ranges plus the
// timeline length, and keeps that answer correct under edits that grow,
// shrink, or ripple the timeline.
package invalidation
