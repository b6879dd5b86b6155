// Package config provides environment-based configuration.
//
// Loads from environment variables with sensible defaults and validates
// required fields. AGENT_URL is optional: without it the assistant path is
// disabled and analysis falls back to default labels.
package config
