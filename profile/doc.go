// Package profile provides optional runtime profiling over
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	tmplkit --pprof-mode cpu render page.yaml -d data.yaml
//
// Without the tag, [Config.Start] always returns a no-op and [Modes] is
// empty. With it, [Modes] lists allocs, block, clock, cpu, goroutine, heap,
// mem, mutex, thread and trace, and profiles are written as <mode>.pprof to
// the configured directory, by default the pprof directory under the user
// cache directory. The pprof build also registers the net/http/pprof
// handlers.
//
// Analyze a profile with:
//
//	go tool pprof -http=: ~/.cache/tmplkit/pprof/cpu.pprof
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
