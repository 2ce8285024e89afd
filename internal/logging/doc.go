// Package logging builds the slog loggers shared by the cache core and the
// CLI, with a compact console format for interactive use and JSON for log
// shipping.
package logging
