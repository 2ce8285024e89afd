// Package notifications delivers render cache events via ntfy.
//
// The default implementation publishes to the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set,
// so render code can notify unconditionally. All callers depend only on
// the Service interface; swap in another transport by implementing it.
package notifications
