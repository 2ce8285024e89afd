package graph

import (
	"time"

	"spool/internal/timeline"
)

// NodeKind enumerates the node variants the cache core distinguishes. The
// set is closed on purpose: hashing dispatches on it explicitly, and a new
// kind must declare its hashing behavior rather than inherit one.
type NodeKind uint8

const (
	// KindOrdinary is any effect or generator node without special hashing
	// rules.
	KindOrdinary NodeKind = iota
	// KindTrack is a time-ordered sequence of blocks, at most one active at
	// any instant.
	KindTrack
	// KindTransition blends between two blocks and derives progress scalars
	// from the evaluation time.
	KindTransition
)

// DataType describes the value carried by an input.
type DataType uint8

const (
	DataValue DataType = iota
	// DataFootage references external media resolved through a Stream.
	DataFootage
)

// Node is a single vertex of the dependency graph.
type Node interface {
	// ID returns the node's stable identity. It must survive process
	// restarts and never derive from in-memory addresses.
	ID() string

	// Kind reports which hashing variant applies.
	Kind() NodeKind

	// Inputs returns the node's input parameters in declaration order.
	Inputs() []Input

	// InputTime maps a node-local evaluation range to the range the given
	// input should be evaluated at, applying any local retiming or speed
	// adjustment.
	InputTime(in Input, r timeline.TimeRange) timeline.TimeRange
}

// Track is a Node of KindTrack.
type Track interface {
	Node

	// BlockAt resolves the concrete element active at t, or nil when the
	// track has a gap there.
	BlockAt(t timeline.Rational) Node
}

// Transition is a Node of KindTransition.
type Transition interface {
	Node

	// Progress returns the overall, in-curve, and out-curve progress at t.
	// These affect rendered output without being ordinary parameters.
	Progress(t timeline.Rational) (all, in, out float64)
}

// Input is one parameter slot on a node.
type Input interface {
	// Name identifies the input within its node.
	Name() string

	// DataType reports the kind of value the input carries.
	DataType() DataType

	// AffectsOutput reports whether the input participates in content
	// hashing. Bookkeeping inputs (trim, speed, length) declare false and
	// are skipped, since they change scheduling but not per-frame pixels.
	AffectsOutput() bool

	// Connected returns the upstream node feeding this input, or nil when
	// the input holds a static value.
	Connected() Node

	// ValueAt returns the raw bytes of the static value at t. Only
	// meaningful when Connected returns nil.
	ValueAt(t timeline.Rational) []byte

	// Footage resolves the input to its stream descriptor. Only meaningful
	// for DataFootage inputs; returns an error when the media is currently
	// unavailable.
	Footage() (Stream, error)
}

// StreamType describes the media type of a footage stream.
type StreamType uint8

const (
	StreamVideo StreamType = iota
	StreamImage
	StreamAudio
)

// Stream describes one stream of an external media file. Footage content can
// change on disk without the graph changing, so everything here feeds the
// content hash.
type Stream interface {
	// FilePath is the source file location.
	FilePath() string

	// ModTime is the source file's last-modified timestamp.
	ModTime() time.Time

	// Index is the stream's position within the file.
	Index() int

	// Type reports the media type.
	Type() StreamType

	// ColorSpace is the stream's declared color space.
	ColorSpace() string

	// PremultipliedAlpha reports the stream's alpha convention. Only
	// meaningful for image and video streams.
	PremultipliedAlpha() bool

	// StartTime is the stream's start offset in its own timebase units.
	// Only meaningful for video streams.
	StartTime() int64
}

// Dependency identifies one render request: a node evaluated over a range
// (or an instant, when the range is zero-length). Immutable value produced
// by the render scheduler.
type Dependency struct {
	Node  Node
	Range timeline.TimeRange
}

// At builds a single-instant dependency.
func At(n Node, t timeline.Rational) Dependency {
	return Dependency{Node: n, Range: timeline.RangeAt(t)}
}

// Time returns the evaluation instant, the start of the range.
func (d Dependency) Time() timeline.Rational {
	return d.Range.In()
}
