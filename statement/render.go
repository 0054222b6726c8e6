package statement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/ardnew/tmplkit/format"
	"github.com/ardnew/tmplkit/log"
	"github.com/ardnew/tmplkit/operator"
	"github.com/ardnew/tmplkit/pkg"
	"github.com/ardnew/tmplkit/trace"
)

var (
	ErrNoFormatter = pkg.NewError("no formatter and no value to render")
	ErrNotIterable = pkg.NewError("loop source is not a slice or array")
	ErrNilExpr     = pkg.NewError("nil expression")
)

type config struct {
	formatter format.Formatter
	value     any
	replay    bool
	bindings  trace.Bindings
	logger    log.Logger
}

// Option configures [Render].
type Option func(config) config

// WithFormatter renders template source text with f. It is used unless a
// value is given with [WithValue].
func WithFormatter(f format.Formatter) Option {
	return func(c config) config {
		c.formatter = f

		return c
	}
}

// WithValue renders by replaying every expression against v.
func WithValue(v any) Option {
	return func(c config) config {
		c.value, c.replay = v, true

		return c
	}
}

// WithBindings supplies values for placeholders created outside of the
// rendered expressions, such as roots shared by several expressions.
func WithBindings(b trace.Bindings) Option {
	return func(c config) config {
		c.bindings = b

		return c
	}
}

// WithLogger sets the logger for per-expression failures.
func WithLogger(logger log.Logger) Option {
	return func(c config) config {
		c.logger = logger

		return c
	}
}

// Render writes node to w.
//
// With [WithValue], expressions are replayed against the value. Otherwise
// they are compiled to template source by the formatter given with
// [WithFormatter].
//
// An expression that fails to record, evaluate or format outputs nothing;
// rendering continues with the rest of the tree and the failures are
// returned together. Write errors and context cancellation stop rendering.
func Render(ctx context.Context, w io.Writer, node Node, opts ...Option) error {
	cfg := config{logger: log.Default()}

	for _, opt := range opts {
		if opt != nil {
			cfg = opt(cfg)
		}
	}

	if !cfg.replay && cfg.formatter == nil {
		return ErrNoFormatter
	}

	s := &scope{ctx: ctx, w: w, cfg: &cfg, bindings: cfg.bindings, errs: new([]error)}

	if node != nil {
		if err := node.render(s); err != nil {
			return err
		}
	}

	return errors.Join(*s.errs...)
}

type scope struct {
	ctx      context.Context
	w        io.Writer
	cfg      *config
	bindings trace.Bindings
	level    int
	errs     *[]error
}

func (s *scope) nested(bindings trace.Bindings) *scope {
	c := *s
	c.bindings = bindings
	c.level++

	return &c
}

// fail records the failure of one expression.
func (s *scope) fail(err error) {
	s.cfg.logger.DebugContext(s.ctx, "expression failed", slog.Any("error", err))
	*s.errs = append(*s.errs, err)
}

func (s *scope) write(str string) error {
	_, err := io.WriteString(s.w, str)

	return err
}

// eval replays e with its root bound to the render value.
func (s *scope) eval(e *expression) (any, error) {
	rec, root, err := e.record()
	if err != nil {
		return nil, err
	}

	return trace.Evaluate(rec, s.bindings.With(root, s.cfg.value))
}

// emit writes formatter output. Node fragments render in the scope of the
// fragment.
func (s *scope) emit(frags []format.Fragment) error {
	for _, f := range frags {
		var err error

		switch f := f.(type) {
		case nil:
		case string:
			err = s.write(f)
		case *fragment:
			err = f.node.render(f.scope)
		case Node:
			err = f.render(s)
		default:
			_, err = fmt.Fprint(s.w, f)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// fragment is a node handed to a formatter that renders in its own scope.
type fragment struct {
	node  Node
	scope *scope
}

func (t text) render(s *scope) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	return s.write(string(t))
}

func (g group) render(s *scope) error {
	for _, n := range g {
		if n == nil {
			continue
		}

		if err := n.render(s); err != nil {
			return err
		}
	}

	return nil
}

func (n *interpolate) render(s *scope) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	if s.cfg.replay {
		v, err := s.eval(n.expr)
		if err != nil {
			s.fail(err)

			return nil
		}

		if v == nil {
			return nil
		}

		_, err = fmt.Fprint(s.w, v)

		return err
	}

	rec, _, err := n.expr.record()
	if err == nil {
		var out string
		if out, err = s.cfg.formatter.Interpolate(rec); err == nil {
			return s.write(out)
		}
	}

	s.fail(err)

	return nil
}

func (n *condition) render(s *scope) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	if s.cfg.replay {
		v, err := s.eval(n.cond)
		if err != nil {
			s.fail(err)

			return nil
		}

		branch := n.otherwise
		if operator.Truthy(v) {
			branch = n.then
		}

		if branch == nil {
			return nil
		}

		return branch.render(s)
	}

	rec, _, err := n.cond.record()
	if err != nil {
		s.fail(err)

		return nil
	}

	frags, err := s.cfg.formatter.Condition(rec, fragmentOf(n.then), fragmentOf(n.otherwise))
	if err != nil {
		s.fail(err)

		return nil
	}

	return s.emit(frags)
}

// fragmentOf keeps a nil node nil as a fragment.
func fragmentOf(n Node) format.Fragment {
	if n == nil {
		return nil
	}

	return n
}

func (n *loop) render(s *scope) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	if s.cfg.replay {
		return n.replay(s)
	}

	rec, _, err := n.source.record()
	if err != nil {
		s.fail(err)

		return nil
	}

	body := n.bodyFor(s.cfg.formatter.LoopVars(s.level))
	if body.err != nil {
		s.fail(body.err)

		return nil
	}

	var inner format.Fragment
	if body.node != nil {
		inner = &fragment{node: body.node, scope: s.nested(s.bindings)}
	}

	frags, err := s.cfg.formatter.Loop(rec, inner, s.level)
	if err != nil {
		s.fail(err)

		return nil
	}

	return s.emit(frags)
}

func (n *loop) replay(s *scope) error {
	src, err := s.eval(n.source)
	if err != nil {
		s.fail(err)

		return nil
	}

	if src == nil {
		return nil
	}

	items := reflect.ValueOf(src)
	if k := items.Kind(); k != reflect.Slice && k != reflect.Array {
		s.fail(ErrNotIterable.With(slog.String("type", items.Type().String())))

		return nil
	}

	vars := format.DefaultLoopVars(s.level)

	body := n.bodyFor(vars)
	if body.err != nil {
		s.fail(body.err)

		return nil
	}

	if body.node == nil {
		return nil
	}

	for i := range items.Len() {
		if err := s.ctx.Err(); err != nil {
			return err
		}

		scope := s.nested(s.bindings.With(body.root, map[string]any{
			vars.Item:   items.Index(i).Interface(),
			vars.Index:  i,
			vars.Source: src,
		}))

		if err := body.node.render(scope); err != nil {
			return err
		}
	}

	return nil
}
