package testsupport

import (
	"path/filepath"
	"testing"

	"spool/internal/config"
	"spool/internal/video"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.FrameCache.Enabled = true
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithFrameCacheMax sets the frame cache size budget in GiB.
func WithFrameCacheMax(gib int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.FrameCache.MaxGiB = gib
	}
}

// WithFrameCacheDisabled turns the frame cache off.
func WithFrameCacheDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.FrameCache.Enabled = false
	}
}

// WithOutput overrides the output parameters on the test config.
func WithOutput(params video.Params) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Width = params.Width
		b.cfg.Output.Height = params.Height
		b.cfg.Output.PixelFormat = params.Format.String()
		b.cfg.Output.RenderMode = params.Mode.String()
	}
}

// WithWorkers sets the render worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Render.Workers = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CacheDir)
}
