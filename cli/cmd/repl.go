package cmd

import (
	"context"

	"github.com/ardnew/tmplkit/cli/cmd/repl"
	"github.com/ardnew/tmplkit/log"
)

// Repl starts an interactive session that compiles expressions as they are
// typed.
type Repl struct {
	Target string `help:"Initial backend: ${enum}." default:"ejs" enum:"${targets}" short:"t"`
	Data   string `help:"Also replay expressions against this YAML or JSON data file." placeholder:"FILE" short:"d"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	in := repl.Input{Target: r.Target, Replay: r.Data != ""}

	if in.Replay {
		if in.Data, err = loadData(ctx, r.Data); err != nil {
			return err
		}
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, in, cacheDir, log.Default())
}
