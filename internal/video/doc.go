// Package video holds the output parameter types a render is requested
// with: frame geometry, pixel format, and render mode. Pixel formats also
// decide the on-disk container a cached frame is stored in.
package video
