// Package config loads the rundown configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/rundown/config.toml
// (~/.config/rundown/config.toml when XDG_CONFIG_HOME is unset). A missing
// file is not an error: every field has a default.
//
//	log_level = "info"
//
//	[store]
//	backend = "sqlite"
//	path = "/var/lib/rundown/rundown.db"
//	key = "evening-news"
//
//	[server]
//	addr = ":8080"
//
// Command-line flags override file values; see internal/cli.
package config
