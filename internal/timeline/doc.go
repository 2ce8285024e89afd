// Package timeline provides exact rational timecodes and the half-open
// time-range primitives the render cache tracks validity with.
package timeline
