package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"spool/internal/fingerprint"
	"spool/internal/graph"
	"spool/internal/logging"
	"spool/internal/video"
)

// Mode is a bitmask selecting which phases a coordinator performs.
type Mode uint8

const (
	// ModeHash computes fingerprints and consults the catalog.
	ModeHash Mode = 1 << iota
	// ModeRender evaluates the graph to produce pixel content.
	ModeRender
	// ModeDownload persists rendered content to cache storage.
	ModeDownload
)

// ModeDefault runs the full hash, render, persist pipeline.
const ModeDefault = ModeHash | ModeRender | ModeDownload

// Outcome is the terminal state of one request.
type Outcome int

const (
	// OutcomeCompleted means this request ran the render phase (or was
	// asked not to); Success on the Result tells whether content was
	// produced.
	OutcomeCompleted Outcome = iota
	// OutcomeAlreadyCached means a persisted artifact already existed
	// for the fingerprint at the requested format. No render happened.
	OutcomeAlreadyCached
	// OutcomeAlreadyBeingCached means another in-flight request holds
	// the claim for this fingerprint. No render happened.
	OutcomeAlreadyBeingCached
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeAlreadyCached:
		return "already_cached"
	case OutcomeAlreadyBeingCached:
		return "already_being_cached"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Request identifies one frame to render.
type Request struct {
	ID  string
	Dep graph.Dependency
}

// NewRequest assigns a fresh request ID for dep.
func NewRequest(dep graph.Dependency) Request {
	return Request{ID: uuid.NewString(), Dep: dep}
}

// Result is the terminal report for one request. Exactly one Result is
// produced per request, and the listener sees it only after all side
// effects (persistence, claim release) are done.
type Result struct {
	RequestID   string
	Outcome     Outcome
	Fingerprint fingerprint.Fingerprint
	HashSkipped bool
	Rendered    bool
	Success     bool
	Err         error
	// WriteErr reports a cache persistence failure. It is non-fatal:
	// the content was produced (Success true) but not stored, so a
	// later request will render it again.
	WriteErr error
	Elapsed  time.Duration
}

// Renderer evaluates the graph at a dependency's time and returns raw
// pixel content in the coordinator's output parameters.
type Renderer interface {
	Render(ctx context.Context, dep graph.Dependency, params video.Params) ([]byte, error)
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(ctx context.Context, dep graph.Dependency, params video.Params) ([]byte, error)

func (f RenderFunc) Render(ctx context.Context, dep graph.Dependency, params video.Params) ([]byte, error) {
	return f(ctx, dep, params)
}

// Storage is the cache backend the coordinator persists to. The frame
// cache manager satisfies it.
type Storage interface {
	Exists(ctx context.Context, fp fingerprint.Fingerprint, format video.PixelFormat) (bool, error)
	Write(ctx context.Context, fp fingerprint.Fingerprint, format video.PixelFormat, data []byte) error
	Remove(ctx context.Context, fp fingerprint.Fingerprint, format video.PixelFormat) error
}

// Listener receives each request's terminal result, after side effects.
type Listener func(ctx context.Context, res Result)

// Coordinator runs the per-request state machine. It is safe for
// concurrent use; the claim set is the only cross-request state.
type Coordinator struct {
	hasher   *fingerprint.Hasher
	renderer Renderer
	store    Storage
	claims   *ClaimSet
	mode     Mode
	listener Listener
	logger   *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMode selects which phases run. Zero-valued modes fall back to
// ModeDefault.
func WithMode(mode Mode) Option {
	return func(c *Coordinator) {
		if mode != 0 {
			c.mode = mode
		}
	}
}

// WithListener registers the terminal-result callback.
func WithListener(l Listener) Option {
	return func(c *Coordinator) { c.listener = l }
}

// WithClaims shares a claim set between coordinators.
func WithClaims(claims *ClaimSet) Option {
	return func(c *Coordinator) {
		if claims != nil {
			c.claims = claims
		}
	}
}

// WithLogger attaches a logger; a no-op logger is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logging.NewComponentLogger(logger, "render")
	}
}

func NewCoordinator(hasher *fingerprint.Hasher, renderer Renderer, store Storage, opts ...Option) *Coordinator {
	c := &Coordinator{
		hasher:   hasher,
		renderer: renderer,
		store:    store,
		claims:   NewClaimSet(),
		mode:     ModeDefault,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Claims exposes the coordinator's claim set, mainly for sharing and
// inspection.
func (c *Coordinator) Claims() *ClaimSet {
	return c.claims
}

// Process runs one request to its terminal state and returns the
// result. The listener, when set, is invoked exactly once with the same
// result, after persistence and claim release have finished.
func (c *Coordinator) Process(ctx context.Context, req Request) Result {
	start := time.Now()
	res := c.process(ctx, req)
	res.Elapsed = time.Since(start)

	c.logger.InfoContext(ctx, "request finished",
		logging.String(logging.FieldRequestID, req.ID),
		logging.String("outcome", res.Outcome.String()),
		logging.Bool("success", res.Success),
		logging.Duration("elapsed", res.Elapsed),
	)
	if c.listener != nil {
		c.listener(ctx, res)
	}
	return res
}

func (c *Coordinator) process(ctx context.Context, req Request) Result {
	res := Result{RequestID: req.ID, Outcome: OutcomeCompleted}

	if c.mode&ModeHash == 0 {
		// No fingerprint means no cache identity: render
		// unconditionally and do not persist.
		res.HashSkipped = true
		if c.mode&ModeRender == 0 {
			res.Success = true
			return res
		}
		_, err := c.renderer.Render(ctx, req.Dep, c.hasher.Params())
		res.Rendered = true
		res.Success = err == nil
		res.Err = err
		return res
	}

	fp, err := c.hasher.Fingerprint(req.Dep)
	if err != nil {
		res.Err = fmt.Errorf("fingerprint: %w", err)
		return res
	}
	res.Fingerprint = fp
	format := c.hasher.Params().Format

	exists, err := c.store.Exists(ctx, fp, format)
	if err != nil {
		res.Err = fmt.Errorf("cache lookup: %w", err)
		return res
	}
	if exists {
		res.Outcome = OutcomeAlreadyCached
		res.Success = true
		return res
	}

	if c.mode&ModeRender == 0 {
		// Hash-only mode answers "would this be a cache hit" without
		// producing content.
		res.Success = true
		return res
	}

	if !c.claims.TryClaim(fp) {
		res.Outcome = OutcomeAlreadyBeingCached
		return res
	}
	defer c.claims.Release(fp)

	data, err := c.renderer.Render(ctx, req.Dep, c.hasher.Params())
	res.Rendered = true
	if err != nil {
		res.Err = err
		return res
	}
	res.Success = true

	if c.mode&ModeDownload != 0 {
		if err := c.store.Write(ctx, fp, format, data); err != nil {
			res.WriteErr = err
			c.logger.WarnContext(ctx, "cache write failed",
				logging.String(logging.FieldRequestID, req.ID),
				logging.String(logging.FieldFingerprint, fp.String()),
				logging.Error(err),
			)
		}
	}
	return res
}

// Evict removes the persisted artifact for a fingerprint, if any. This
// is the removal hook cache cleanup uses when upstream content changes.
func (c *Coordinator) Evict(ctx context.Context, fp fingerprint.Fingerprint) error {
	return c.store.Remove(ctx, fp, c.hasher.Params().Format)
}
