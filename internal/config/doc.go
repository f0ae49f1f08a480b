// Package config loads runtime settings for mtgtop8-sync.
//
// Values come from, in increasing priority: built-in defaults, an optional YAML
// file, a .env file in the working directory and MTGSYNC_* environment variables.
// Command-line flags are applied on top by the cli package.
package config
