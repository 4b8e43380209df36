// Package config handles configuration management for the patcher
// integration. Values are layered with koanf: embedded TOML defaults, the
// user's TOML file, HARMONY_PATCHER_* environment variables (optionally
// seeded from a .env file) and explicit overrides, in that order.
package config
