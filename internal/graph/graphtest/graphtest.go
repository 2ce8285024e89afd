// Package graphtest provides in-memory graph fixtures for exercising the
// hash engine and render coordinator without a node editor.
package graphtest

import (
	"time"

	"spool/internal/graph"
	"spool/internal/timeline"
)

// Node is a configurable in-memory graph node. The zero value is an ordinary
// node with no inputs.
type Node struct {
	NodeID     string
	NodeKind   graph.NodeKind
	NodeInputs []*Input

	// BlockFn resolves the active block for track nodes.
	BlockFn func(t timeline.Rational) graph.Node

	// ProgressFn supplies transition progress scalars.
	ProgressFn func(t timeline.Rational) (all, in, out float64)

	// RemapFn overrides input time adjustment; identity when nil.
	RemapFn func(in graph.Input, r timeline.TimeRange) timeline.TimeRange
}

func (n *Node) ID() string           { return n.NodeID }
func (n *Node) Kind() graph.NodeKind { return n.NodeKind }

func (n *Node) Inputs() []graph.Input {
	out := make([]graph.Input, len(n.NodeInputs))
	for i, in := range n.NodeInputs {
		out[i] = in
	}
	return out
}

func (n *Node) InputTime(in graph.Input, r timeline.TimeRange) timeline.TimeRange {
	if n.RemapFn != nil {
		return n.RemapFn(in, r)
	}
	return r
}

func (n *Node) BlockAt(t timeline.Rational) graph.Node {
	if n.BlockFn == nil {
		return nil
	}
	return n.BlockFn(t)
}

func (n *Node) Progress(t timeline.Rational) (all, in, out float64) {
	if n.ProgressFn == nil {
		return 0, 0, 0
	}
	return n.ProgressFn(t)
}

// Input is a configurable in-memory input parameter. Hashed defaults to
// false, so fixtures opt in explicitly.
type Input struct {
	InputName string
	Type      graph.DataType
	Hashed    bool

	// Upstream, when set, marks the input connected.
	Upstream graph.Node

	// Static is the raw value returned by ValueAt when ValueFn is nil.
	Static  []byte
	ValueFn func(t timeline.Rational) []byte

	// Media backs Footage; MediaErr simulates unavailable footage.
	Media    graph.Stream
	MediaErr error
}

func (i *Input) Name() string             { return i.InputName }
func (i *Input) DataType() graph.DataType { return i.Type }
func (i *Input) AffectsOutput() bool      { return i.Hashed }
func (i *Input) Connected() graph.Node    { return i.Upstream }

func (i *Input) ValueAt(t timeline.Rational) []byte {
	if i.ValueFn != nil {
		return i.ValueFn(t)
	}
	return i.Static
}

func (i *Input) Footage() (graph.Stream, error) {
	if i.MediaErr != nil {
		return nil, i.MediaErr
	}
	return i.Media, nil
}

// Stream is a static in-memory stream descriptor.
type Stream struct {
	Path          string
	Modified      time.Time
	StreamIndex   int
	Kind          graph.StreamType
	Space         string
	Premultiplied bool
	Start         int64
}

func (s *Stream) FilePath() string         { return s.Path }
func (s *Stream) ModTime() time.Time       { return s.Modified }
func (s *Stream) Index() int               { return s.StreamIndex }
func (s *Stream) Type() graph.StreamType   { return s.Kind }
func (s *Stream) ColorSpace() string       { return s.Space }
func (s *Stream) PremultipliedAlpha() bool { return s.Premultiplied }
func (s *Stream) StartTime() int64         { return s.Start }

// ValueInput builds a hashed static-value input.
func ValueInput(name string, value []byte) *Input {
	return &Input{InputName: name, Type: graph.DataValue, Hashed: true, Static: value}
}

// ConnectedInput builds a hashed input fed by an upstream node.
func ConnectedInput(name string, upstream graph.Node) *Input {
	return &Input{InputName: name, Type: graph.DataValue, Hashed: true, Upstream: upstream}
}

// FootageInput builds a hashed footage input backed by the given stream.
func FootageInput(name string, stream graph.Stream) *Input {
	return &Input{InputName: name, Type: graph.DataFootage, Hashed: true, Media: stream}
}
