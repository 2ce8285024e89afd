package video

import (
	"fmt"
	"strings"
)

// PixelFormat enumerates the RGB(A) layouts a frame can be rendered in.
type PixelFormat uint8

const (
	FormatInvalid PixelFormat = iota
	FormatRGB8
	FormatRGBA8
	FormatRGB16U
	FormatRGBA16U
	FormatRGB16F
	FormatRGBA16F
	FormatRGB32F
	FormatRGBA32F
)

var formatNames = map[PixelFormat]string{
	FormatRGB8:    "rgb8",
	FormatRGBA8:   "rgba8",
	FormatRGB16U:  "rgb16u",
	FormatRGBA16U: "rgba16u",
	FormatRGB16F:  "rgb16f",
	FormatRGBA16F: "rgba16f",
	FormatRGB32F:  "rgb32f",
	FormatRGBA32F: "rgba32f",
}

// String returns the canonical lowercase name, or "invalid".
func (f PixelFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "invalid"
}

// ParsePixelFormat resolves a config-supplied format name.
func ParsePixelFormat(value string) (PixelFormat, error) {
	needle := strings.ToLower(strings.TrimSpace(value))
	for format, name := range formatNames {
		if name == needle {
			return format, nil
		}
	}
	return FormatInvalid, fmt.Errorf("video: unknown pixel format %q", value)
}

// IsValid reports whether the format is one of the renderable layouts.
func (f PixelFormat) IsValid() bool {
	_, ok := formatNames[f]
	return ok
}

// HasAlpha reports whether the layout carries an alpha channel.
func (f PixelFormat) HasAlpha() bool {
	switch f {
	case FormatRGBA8, FormatRGBA16U, FormatRGBA16F, FormatRGBA32F:
		return true
	default:
		return false
	}
}

// IsFloat reports whether channels are floating point.
func (f PixelFormat) IsFloat() bool {
	switch f {
	case FormatRGB16F, FormatRGBA16F, FormatRGB32F, FormatRGBA32F:
		return true
	default:
		return false
	}
}

// ChannelCount returns 3 or 4 depending on alpha.
func (f PixelFormat) ChannelCount() int {
	if f.HasAlpha() {
		return 4
	}
	return 3
}

// BytesPerChannel returns the storage width of one channel.
func (f PixelFormat) BytesPerChannel() int {
	switch f {
	case FormatRGB8, FormatRGBA8:
		return 1
	case FormatRGB16U, FormatRGBA16U, FormatRGB16F, FormatRGBA16F:
		return 2
	case FormatRGB32F, FormatRGBA32F:
		return 4
	default:
		return 0
	}
}

// BufferSize returns the byte size of one frame at the given geometry.
func (f PixelFormat) BufferSize(width, height int) int {
	return width * height * f.ChannelCount() * f.BytesPerChannel()
}

// Extension returns the cache artifact extension for the format. Integer
// layouts are stored in JPEG containers, floating-point layouts in EXR.
func (f PixelFormat) Extension() string {
	if !f.IsValid() {
		return ""
	}
	if f.IsFloat() {
		return ".exr"
	}
	return ".jpg"
}

// RenderMode distinguishes draft playback renders from final-quality export
// renders. The two must never share cache entries.
type RenderMode uint8

const (
	ModeOffline RenderMode = iota
	ModeOnline
)

// String returns "offline" or "online".
func (m RenderMode) String() string {
	if m == ModeOnline {
		return "online"
	}
	return "offline"
}

// ParseRenderMode resolves a config-supplied mode name.
func ParseRenderMode(value string) (RenderMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "offline", "":
		return ModeOffline, nil
	case "online":
		return ModeOnline, nil
	default:
		return ModeOffline, fmt.Errorf("video: unknown render mode %q", value)
	}
}

// Params are the global output parameters of one render request. Two
// requests differing in any field must never share a fingerprint.
type Params struct {
	Width  int
	Height int
	Format PixelFormat
	Mode   RenderMode
}

// IsValid reports whether the parameters describe a renderable frame.
func (p Params) IsValid() bool {
	return p.Width > 0 && p.Height > 0 && p.Format.IsValid()
}
