package config

const (
	defaultCacheDir       = "~/.local/share/spool/cache"
	defaultLogDir         = "~/.local/share/spool/logs"
	defaultWidth          = 1920
	defaultHeight         = 1080
	defaultPixelFormat    = "rgba16f"
	defaultRenderMode     = "offline"
	defaultFrameRate      = 30
	defaultCacheMaxGiB    = 20
	defaultNtfyTimeout    = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultHashingEnabled = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
		},
		Output: Output{
			Width:       defaultWidth,
			Height:      defaultHeight,
			PixelFormat: defaultPixelFormat,
			RenderMode:  defaultRenderMode,
			FrameRate:   defaultFrameRate,
		},
		FrameCache: FrameCache{
			Enabled: true,
			MaxGiB:  defaultCacheMaxGiB,
		},
		Render: Render{
			Workers: 0,
			Hashing: defaultHashingEnabled,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
