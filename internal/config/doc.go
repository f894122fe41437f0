// Package config loads the dokd host configuration.
//
// Configuration is layered, later layers winning:
//
//  1. built-in defaults
//  2. the TOML file ($XDG_CONFIG_HOME/dokd/config.toml unless given)
//  3. DOKD_* environment variables
//
// A TOML file may pull in other files with an "@include" key. Environment
// variables map to keys by section: DOKD_TERMINAL_STARTUP_SCRIPT sets
// terminal.startupScript.
package config
