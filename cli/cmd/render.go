package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/tmplkit/format"
	"github.com/ardnew/tmplkit/lang"
	"github.com/ardnew/tmplkit/log"
	"github.com/ardnew/tmplkit/pkg"
	"github.com/ardnew/tmplkit/statement"
)

// Render renders a template document. Without data the document is compiled
// to template source for the target backend; with data it is replayed.
type Render struct {
	Doc    string `arg:"" help:"Template document (YAML), or '-' for stdin." name:"doc"`
	Target string `       help:"Backend: ${enum}."                            default:"ejs" enum:"${targets}" short:"t"`
	Data   string `       help:"Replay against this YAML or JSON data file."  placeholder:"FILE" short:"d"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	in, err := open(ctx, r.Doc)
	if err != nil {
		return err
	}
	defer in.Close()

	node, err := lang.LoadDocument(in)
	if err != nil {
		return pkg.WrapError(err).With(slog.String("doc", r.Doc))
	}

	opts := []statement.Option{statement.WithLogger(log.Default())}

	if r.Data != "" {
		data, err := loadData(ctx, r.Data)
		if err != nil {
			return err
		}

		opts = append(opts, statement.WithValue(data))
	} else {
		f, err := format.Lookup(r.Target, format.WithLogger(log.Default()))
		if err != nil {
			return err
		}

		opts = append(opts, statement.WithFormatter(f))
	}

	return statement.Render(ctx, stdout(ctx), node, opts...)
}
