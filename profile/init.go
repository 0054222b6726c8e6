package profile

// Config selects what to profile and where profiles are written.
type Config struct {
	Mode  string
	Path  string
	Quiet bool
}

// Option modifies a Config.
type Option func(Config) Config

// New returns the Config with every option applied, in order.
func New(opts ...Option) Config {
	var c Config
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// WithMode sets the profiling mode, one of [Modes].
func WithMode(mode string) Option {
	return func(c Config) Config {
		c.Mode = mode

		return c
	}
}

// WithPath sets the directory profiles are written to.
func WithPath(path string) Option {
	return func(c Config) Config {
		c.Path = path

		return c
	}
}

// WithQuiet suppresses the profiler's own log output.
func WithQuiet(quiet bool) Option {
	return func(c Config) Config {
		c.Quiet = quiet

		return c
	}
}

// Start starts the profiler and returns a handle for stopping it.
//
// Without the pprof build tag, or with an empty or unknown mode, Start
// returns a no-op. Both Start and Stop are always safely callable.
func (c Config) Start() interface{ Stop() } {
	if c.Mode == "" {
		return ignore{}
	}

	return start(c.Mode, c.Path, c.Quiet)
}

type ignore struct{}

func (ignore) Stop() {}
