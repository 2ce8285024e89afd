package fingerprint

import (
	"encoding/binary"
	"errors"
	"hash"
	"math"
	"strconv"

	"github.com/opencontainers/go-digest"

	"spool/internal/graph"
	"spool/internal/timeline"
	"spool/internal/video"
)

// Fingerprint is the fixed-length content digest of one render request.
type Fingerprint = digest.Digest

// UnavailableReport describes footage that could not be resolved while
// hashing. Missing footage is never fatal; the branch is skipped and the
// caller decides whether to retry once the source returns.
type UnavailableReport struct {
	InputName string
	Stream    graph.Stream // nil when resolution failed before a descriptor existed
	Reason    error
	Range     timeline.TimeRange
	Time      timeline.Rational
}

// Options configure hashing context beyond the graph itself.
type Options struct {
	// ColorConfigID identifies the active color-management configuration.
	// It is mixed into every image/video footage branch, since a config
	// swap changes pixels without touching the graph.
	ColorConfigID string

	// TimeBase is the frame duration, used to widen unavailable-footage
	// reports from an instant to the affected frame range.
	TimeBase timeline.Rational

	// OnFootageUnavailable receives one report per unresolvable footage
	// branch. Optional.
	OnFootageUnavailable func(UnavailableReport)
}

// Hasher computes fingerprints for one set of output parameters. Safe for
// concurrent use; each computation carries its own digest state.
type Hasher struct {
	params video.Params
	opts   Options
}

// NewHasher builds a hasher for the given output parameters.
func NewHasher(params video.Params, opts Options) *Hasher {
	return &Hasher{params: params, opts: opts}
}

// Params returns the output parameters the hasher mixes into every digest.
func (h *Hasher) Params() video.Params {
	return h.params
}

// Fingerprint computes the content digest for dep. The digest covers the
// full upstream graph at the requested time plus the output parameters, so
// requests differing only in resolution or pixel format never collide.
func (h *Hasher) Fingerprint(dep graph.Dependency) (Fingerprint, error) {
	if dep.Node == nil {
		return "", errors.New("fingerprint: nil node in dependency")
	}

	digester := digest.SHA256.Digester()
	w := digester.Hash()

	// Output parameters are mixed exactly once, at the top level. Fixed
	// little-endian widths keep the digest stable across platforms.
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(h.params.Width))
	w.Write(buf[:])
	binary.LittleEndian.PutUint32(buf[:], uint32(h.params.Height))
	w.Write(buf[:])
	w.Write([]byte{byte(h.params.Format), byte(h.params.Mode)})

	h.hashNode(w, dep.Node, dep.Time(), dep)

	return digester.Digest(), nil
}

// hashNode mixes one node and everything upstream of it at time t.
func (h *Hasher) hashNode(w hash.Hash, n graph.Node, t timeline.Rational, dep graph.Dependency) {
	// Tracks resolve to the block active at t. A gap contributes nothing:
	// an empty segment must hash identically regardless of what surrounds
	// it on the timeline.
	if n.Kind() == graph.KindTrack {
		track, ok := n.(graph.Track)
		if !ok {
			return
		}
		n = track.BlockAt(t)
		if n == nil {
			return
		}
	}

	w.Write([]byte(n.ID()))

	if n.Kind() == graph.KindTransition {
		if transition, ok := n.(graph.Transition); ok {
			all, in, out := transition.Progress(t)
			writeFloat(w, all)
			writeFloat(w, in)
			writeFloat(w, out)
		}
	}

	for _, input := range n.Inputs() {
		if !input.AffectsOutput() {
			continue
		}

		// For a single frame only the in point of the adjusted range
		// matters.
		inputTime := n.InputTime(input, timeline.RangeAt(t)).In()

		if upstream := input.Connected(); upstream != nil {
			h.hashNode(w, upstream, inputTime, dep)
		} else {
			w.Write(input.ValueAt(inputTime))
		}

		// Footage resolves to decoded frames inside the renderer, so the
		// graph value alone is not enough to identify content.
		if input.DataType() == graph.DataFootage {
			h.hashFootage(w, input, inputTime, dep)
		}
	}
}

func (h *Hasher) hashFootage(w hash.Hash, input graph.Input, inputTime timeline.Rational, dep graph.Dependency) {
	stream, err := input.Footage()
	if err != nil || stream == nil {
		if err == nil {
			err = errors.New("stream unresolved")
		}
		h.reportUnavailable(input, stream, err, dep, inputTime)
		return
	}

	w.Write([]byte(stream.FilePath()))
	w.Write([]byte(strconv.FormatInt(stream.ModTime().UnixNano(), 10)))
	w.Write([]byte(strconv.Itoa(stream.Index())))

	switch stream.Type() {
	case graph.StreamImage, graph.StreamVideo:
		w.Write([]byte(h.opts.ColorConfigID))
		w.Write([]byte(stream.ColorSpace()))
		if stream.PremultipliedAlpha() {
			w.Write([]byte("1"))
		} else {
			w.Write([]byte("0"))
		}
	}

	if stream.Type() == graph.StreamVideo {
		w.Write([]byte(inputTime.String()))
		w.Write([]byte(strconv.FormatInt(stream.StartTime(), 10)))
		// Per-frame decoder timestamps are deliberately not mixed in. A
		// video rewritten in place with an unchanged mtime can therefore
		// under-invalidate; matching the established behavior until a
		// stronger guarantee is required.
	}
}

func (h *Hasher) reportUnavailable(input graph.Input, stream graph.Stream, reason error, dep graph.Dependency, streamTime timeline.Rational) {
	if h.opts.OnFootageUnavailable == nil {
		return
	}
	affected, err := timeline.NewRange(dep.Time(), dep.Time().Add(h.opts.TimeBase))
	if err != nil {
		affected = timeline.RangeAt(dep.Time())
	}
	h.opts.OnFootageUnavailable(UnavailableReport{
		InputName: input.Name(),
		Stream:    stream,
		Reason:    reason,
		Range:     affected,
		Time:      streamTime,
	})
}

func writeFloat(w hash.Hash, v float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	w.Write(buf[:])
}
