package format

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/ardnew/tmplkit/log"
)

// Config holds the options shared by all formatters.
type Config struct {
	Logger log.Logger
}

// Option configures a formatter.
type Option func(Config) Config

// WithLogger sets the logger that receives warnings, such as operators
// emitted without native syntax.
func WithLogger(logger log.Logger) Option {
	return func(c Config) Config {
		c.Logger = logger

		return c
	}
}

// MakeConfig applies opts over the default configuration, which logs to
// [log.Default].
func MakeConfig(opts ...Option) Config {
	c := Config{Logger: log.Default()}

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

// Constructor creates a formatter.
type Constructor func(opts ...Option) Formatter

var registry = struct {
	sync.RWMutex
	backends map[string]Constructor
}{backends: make(map[string]Constructor)}

// Register makes a backend available by name. Registering a name twice
// replaces the earlier constructor.
func Register(name string, c Constructor) {
	registry.Lock()
	defer registry.Unlock()

	registry.backends[name] = c
}

// Lookup creates the formatter registered as name.
func Lookup(name string, opts ...Option) (Formatter, error) {
	registry.RLock()
	c, ok := registry.backends[name]
	registry.RUnlock()

	if !ok {
		return nil, ErrUnknownBackend.With(slog.String("name", name))
	}

	return c(opts...), nil
}

// Names returns the sorted names of all registered backends.
func Names() []string {
	registry.RLock()
	defer registry.RUnlock()

	return slices.Sorted(maps.Keys(registry.backends))
}
