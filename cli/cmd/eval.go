package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/tmplkit/lang"
	"github.com/ardnew/tmplkit/pkg"
	"github.com/ardnew/tmplkit/trace"
)

// Eval replays an expression against data.
type Eval struct {
	Expr string `arg:"" help:"Expression to evaluate" name:"expr"`
	Data string `       help:"YAML or JSON data file, or '-' for stdin" placeholder:"FILE" short:"d"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	x, err := lang.Parse(e.Expr)
	if err != nil {
		return pkg.WrapError(err).With(slog.String("command", "eval"))
	}

	rec, root, err := trace.RecordWithRoot(x.Trace(nil))
	if err != nil {
		return pkg.WrapError(err).With(slog.String("command", "eval"))
	}

	data, err := loadData(ctx, e.Data)
	if err != nil {
		return err
	}

	v, err := trace.Evaluate(rec, trace.Bind(root, data))
	if err != nil {
		return pkg.WrapError(err).With(
			slog.String("command", "eval"),
			slog.String("expr", e.Expr),
		)
	}

	_, err = fmt.Fprintln(stdout(ctx), v)

	return err
}

// loadData reads the data file named name. An empty name yields nil data.
func loadData(ctx context.Context, name string) (any, error) {
	if name == "" {
		return nil, nil
	}

	r, err := open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := lang.LoadData(r)
	if err != nil {
		return nil, pkg.WrapError(err).With(slog.String("data", name))
	}

	return data, nil
}
