package colorproc

import "math"

// Color is a linear RGBA value with float components.
type Color struct {
	R float64
	G float64
	B float64
	A float64
}

// FromHSV builds an opaque color from hue (degrees), saturation, and value.
func FromHSV(h, s, v float64) Color {
	c := s * v
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h >= 0 && h < 60:
		r, g, b = c, x, 0
	case h >= 60 && h < 120:
		r, g, b = x, c, 0
	case h >= 120 && h < 180:
		r, g, b = 0, c, x
	case h >= 180 && h < 240:
		r, g, b = 0, x, c
	case h >= 240 && h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return Color{R: r + m, G: g + m, B: b + m, A: 1}
}

// ToHSV returns hue (degrees), saturation, and value.
func (c Color) ToHSV() (h, s, v float64) {
	max := math.Max(c.R, math.Max(c.G, c.B))
	min := math.Min(c.R, math.Min(c.G, c.B))
	delta := max - min

	if delta > 0 {
		switch max {
		case c.R:
			h = 60 * math.Mod((c.G-c.B)/delta, 6)
		case c.G:
			h = 60 * ((c.B-c.R)/delta + 2)
		case c.B:
			h = 60 * ((c.R-c.G)/delta + 4)
		}
		if max > 0 {
			s = delta / max
		}
	}
	if h < 0 {
		h += 360
	}
	return h, s, max
}

// ToHSL returns hue (degrees), saturation, and lightness.
func (c Color) ToHSL() (h, s, l float64) {
	max := math.Max(c.R, math.Max(c.G, c.B))
	min := math.Min(c.R, math.Min(c.G, c.B))

	l = (max + min) / 2
	if max == min {
		return 0, 0, l
	}

	if l < 0.5 {
		s = (max - min) / (max + min)
	} else {
		s = (max - min) / (2 - max - min)
	}

	switch max {
	case c.R:
		h = 60 * (c.G - c.B) / (max - min)
	case c.G:
		h = 60*(c.B-c.R)/(max-min) + 120
	case c.B:
		h = 60*(c.R-c.G)/(max-min) + 240
	}
	if h < 0 {
		h += 360
	}
	return h, s, l
}
