// Package config loads, normalizes, and validates audiovert configuration.
//
// Settings come from an optional TOML file: the path given with --config,
// else ~/.config/audiovert/config.toml, else ./audiovert.toml. A missing
// file is not an error; defaults apply. Paths accept a leading tilde.
// Command-line flags are applied on top of the loaded Config by the CLI.
package config
