package cli

import (
	"context"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tmplkit/cli/cmd"
	"github.com/ardnew/tmplkit/format"
	"github.com/ardnew/tmplkit/pkg"
)

// CLI is the top-level command-line interface for tmplkit.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Path    []string         `env:"-" help:"Directories searched for relative input files, before those in $${pathEnv}." placeholder:"DIR" short:"P" type:"path"`
	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Init   cmd.Init   `cmd:"" help:"Write the configuration file"`
	Fmt    cmd.Fmt    `cmd:"" help:"Compile expressions to template source"`
	Eval   cmd.Eval   `cmd:"" help:"Evaluate an expression against data"`
	Render cmd.Render `cmd:"" help:"Render a template document"`
	Repl   cmd.Repl   `cmd:"" help:"Translate expressions interactively"`
}

// vars are the interpolation variables of the help text and flag defaults.
func (c *CLI) vars(configFile string) kong.Vars {
	return kong.Vars{
		cmd.ConfigIdentifier:  configFile,
		cmd.CacheIdentifier:   pkg.CacheDir(),
		cmd.TargetsIdentifier: strings.Join(format.Names(), ","),
		"pathEnv":             pathEnv,
		"version":             pkg.Name + " " + pkg.Version,
	}.
		CloneWith(c.Log.vars()).
		CloneWith(c.Pprof.vars())
}

// Run executes the tmplkit CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
//
// Every flag may also be set with an environment variable named after it,
// such as TMPLKIT_LOG_LEVEL for --log-level. --path is the exception: its
// environment counterpart is the search path list described in the package
// documentation.
func Run(ctx context.Context, exit func(code int), args ...string) error {
	if err := mkdirAllRequired(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var cli CLI

	configFile := configPath(baseConfig + configExt)

	// Apply logger flags before kong parses, regardless of their position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{cli.Log.group(), cli.Pprof.group()}),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.DefaultEnvars(strings.TrimSuffix(pkg.EnvPrefix, "_")),
		kong.Configuration(resolve(baseConfig), configFile),
		cli.vars(configFile),
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Commands read these back from the context bound above.
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSearchPath(ctx, searchPath(cli.Path))

	cli.Log.start(ctx)

	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
