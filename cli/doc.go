// Package cli contains the command line interface for tmplkit.
//
// # Commands
//
//	tmplkit fmt ejs 'user.name' 'price * qty'   # compile expressions
//	tmplkit fmt record 'a.b + 1' --as json      # dump the record DAG
//	tmplkit eval 'items[0].name' -d data.yaml   # replay against data
//	tmplkit render page.yaml -t gotmpl          # compile a document
//	tmplkit render page.yaml -d data.yaml       # render a document
//	tmplkit repl -d data.yaml                   # interactive translator
//	tmplkit init                                # write the config file
//
// Relative input files are looked up in the working directory, then in each
// --path directory, then in the directories listed in $TMPLKIT_PATH.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory. Keys of its "config" section are flag names; see [resolve].
// "tmplkit init" writes the current flag values there.
//
// Flags may also be set from the environment as TMPLKIT_<FLAG>, with dashes
// replaced by underscores, for example TMPLKIT_LOG_LEVEL=debug.
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: log output format (text, json)
//   - --log-time-layout: timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: include caller information
//   - --log-pretty: colorized output
//
// --version prints the module version.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag; see
// package profile.
//
//   - --pprof-mode: enable profiling in the given mode
//   - --pprof-dir: profile output directory
package cli
