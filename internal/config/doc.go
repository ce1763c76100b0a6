// Package config loads and validates application settings from the
// environment and optional config files, giving the rest of the
// system type-safe access to server, database, LLM, and session
// tuning values.
package config
