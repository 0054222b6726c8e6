package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ardnew/tmplkit/format"
	"github.com/ardnew/tmplkit/lang"
	"github.com/ardnew/tmplkit/log"
	"github.com/ardnew/tmplkit/pkg"
	"github.com/ardnew/tmplkit/trace"

	_ "github.com/ardnew/tmplkit/format/ejs"      // register backend
	_ "github.com/ardnew/tmplkit/format/exprlang" // register backend
	_ "github.com/ardnew/tmplkit/format/gotmpl"   // register backend
)

// Fmt compiles expressions to template source.
type Fmt struct {
	Target Target `cmd:"" default:"withargs" help:"Compile expressions for a backend (default)."`
	Record Record `cmd:""                    help:"Dump the record DAG of an expression."`
}

// Target compiles each expression with the named backend, one per line.
type Target struct {
	Name string   `arg:"" enum:"${targets}" help:"Backend: ${enum}." name:"target"`
	Expr []string `arg:""                   help:"Expressions to compile." name:"expr"`
}

// Run executes the fmt command.
func (t *Target) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	f, err := format.Lookup(t.Name, format.WithLogger(log.Default()))
	if err != nil {
		return err
	}

	w := stdout(ctx)

	var errs []error

	for _, src := range t.Expr {
		out, err := compile(f, src)
		if err != nil {
			log.WarnContext(ctx, "expression skipped",
				slog.String("expr", src),
				slog.Any("error", err),
			)

			errs = append(errs, err)

			continue
		}

		if _, err := fmt.Fprintln(w, out); err != nil {
			return err
		}
	}

	return errors.Join(errs...)
}

func compile(f format.Formatter, src string) (string, error) {
	x, err := lang.Parse(src)
	if err != nil {
		return "", err
	}

	rec, err := trace.Record(x.Trace(nil))
	if err != nil {
		return "", err
	}

	return f.Interpolate(rec)
}

// Record writes the record DAG of an expression as YAML or JSON.
type Record struct {
	Expr   string `arg:"" help:"Expression to record." name:"expr"`
	As     string `       help:"Output encoding."      default:"yaml" enum:"yaml,json"`
	Indent int    `       help:"Indent width; 0 writes a single line." default:"2" short:"i"`
}

// Run executes the record command.
func (r *Record) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	enc, err := lang.ParseEncoding(r.As)
	if err != nil {
		return err
	}

	x, err := lang.Parse(r.Expr)
	if err != nil {
		return err
	}

	rec, err := trace.Record(x.Trace(nil))
	if err != nil {
		return pkg.WrapError(err).With(slog.String("expr", r.Expr))
	}

	return lang.WriteRecord(ctx, stdout(ctx), rec, enc, r.Indent)
}
