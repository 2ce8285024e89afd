// Package main hosts the Spool CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces frame cache inspection and
// maintenance, configuration scaffolding, and notification testing. It
// centralizes configuration resolution and logging setup so subcommands
// can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the
// internal packages first, then surface it through dedicated commands
// or flags here.
package main
