package config

import (
	"fmt"

	"spool/internal/video"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateFrameCache(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateOutput() error {
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return fmt.Errorf("output: invalid geometry %dx%d", c.Output.Width, c.Output.Height)
	}
	if _, err := video.ParsePixelFormat(c.Output.PixelFormat); err != nil {
		return fmt.Errorf("output.pixel_format: %w", err)
	}
	if _, err := video.ParseRenderMode(c.Output.RenderMode); err != nil {
		return fmt.Errorf("output.render_mode: %w", err)
	}
	return nil
}

func (c *Config) validateFrameCache() error {
	if !c.FrameCache.Enabled {
		return nil
	}
	if c.Paths.CacheDir == "" {
		return fmt.Errorf("frame_cache: paths.cache_dir is required when the cache is enabled")
	}
	if c.FrameCache.MaxGiB <= 0 {
		return fmt.Errorf("frame_cache.max_gib: must be positive, got %d", c.FrameCache.MaxGiB)
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.Workers < 0 {
		return fmt.Errorf("render.workers: must not be negative, got %d", c.Render.Workers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// OutputParams resolves the output section to typed render parameters. Call
// only after Validate.
func (c *Config) OutputParams() (video.Params, error) {
	format, err := video.ParsePixelFormat(c.Output.PixelFormat)
	if err != nil {
		return video.Params{}, err
	}
	mode, err := video.ParseRenderMode(c.Output.RenderMode)
	if err != nil {
		return video.Params{}, err
	}
	return video.Params{
		Width:  c.Output.Width,
		Height: c.Output.Height,
		Format: format,
		Mode:   mode,
	}, nil
}
