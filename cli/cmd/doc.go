// Package cmd implements the tmplkit subcommands.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// to the configuration file.
	ConfigIdentifier = "config"

	// TargetsIdentifier is the kong variable identifier containing the
	// comma-separated names of the registered backends.
	TargetsIdentifier = "targets"
)
