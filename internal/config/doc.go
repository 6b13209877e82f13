// Package config loads, normalizes, and validates pitchctl configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PITCHCTL_BASE_URL and PITCHCTL_API_TOKEN. The Config type centralizes every
// knob the CLI needs: where the backend lives, where session state and logs
// are kept, and how often `--wait` polls pipeline status.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a trimmed base URL, and clear validation errors.
package config
