// Package log provides a concurrency-safe leveled logger based on
// [log/slog].
//
// Loggers are configured at creation time with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// Attributes are typed [slog.Attr] values:
//
//	logger.Warn("operator degraded", slog.String("backend", "gotmpl"))
//
// A package-level logger backs the functions [Debug], [Info], [Warn],
// [Error] and their Context variants. [Config] reconfigures it and
// [Default] returns it for injection into components that accept a
// [Logger].
//
// [LevelTrace] sits below [LevelDebug] and is used for per-keystroke and
// per-node diagnostics.
//
// With pretty printing enabled (the default), text output is colorized
// key=value pairs and JSON output is indented and colorized for terminals.
// Disable it with [WithPretty] to get the standard slog handlers.
package log
