// Package main hosts the audiovert CLI.
//
// The root command plans and executes one batch conversion over the given
// paths; flags override the optional TOML configuration file. The config
// subcommands scaffold and check that file.
package main
