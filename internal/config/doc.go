// Package config loads and validates the TOML configuration shared by the
// spool CLI and library consumers.
package config
