package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	c.Output.PixelFormat = strings.ToLower(strings.TrimSpace(c.Output.PixelFormat))
	if c.Output.PixelFormat == "" {
		c.Output.PixelFormat = defaultPixelFormat
	}
	c.Output.RenderMode = strings.ToLower(strings.TrimSpace(c.Output.RenderMode))
	if c.Output.RenderMode == "" {
		c.Output.RenderMode = defaultRenderMode
	}
	if c.Output.FrameRate <= 0 {
		c.Output.FrameRate = defaultFrameRate
	}

	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
