// Package config loads, normalizes, and validates llmmatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LLMMATCH_API_KEY and OPENAI_API_KEY, optionally sourced from a dotenv file.
//
// Always obtain settings through this package so downstream code receives
// sanitized values, canonical log formats, and clear validation errors.
package config
