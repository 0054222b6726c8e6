package format

import (
	"log/slog"

	"github.com/ardnew/tmplkit/log"
	"github.com/ardnew/tmplkit/operator"
	"github.com/ardnew/tmplkit/trace"
)

// Renderer renders the nodes of a record DAG in one target syntax. The
// [Walker] handles recursion, operator recognition and capability checks.
type Renderer interface {
	Name() string
	Table() Table

	Root(r *trace.Root) (Term, error)
	// Get renders the property chain names read from base, which is the
	// rendering of node.
	Get(base Term, node trace.Node, names []string) (Term, error)
	// Call renders a generic call of fn with args.
	Call(fn Term, args []Term, call *trace.Call) (Term, error)
	Value(v any) (Term, error)
	// Builtin renders an operator without native syntax as a call of the
	// function name.
	Builtin(name string, args []Term) (Term, error)
}

// Walker renders record DAGs with a Renderer. Shared nodes are rendered
// once per Walker.
type Walker struct {
	r    Renderer
	caps Capabilities
	log  log.Logger
	memo map[trace.Node]Term
}

// NewWalker returns a Walker for r.
func NewWalker(r Renderer, caps Capabilities, logger log.Logger) *Walker {
	return &Walker{
		r:    r,
		caps: caps,
		log:  logger,
		memo: make(map[trace.Node]Term),
	}
}

// Walk renders n.
func (w *Walker) Walk(n trace.Node) (Term, error) {
	if t, ok := w.memo[n]; ok {
		return t, nil
	}

	var (
		t   Term
		err error
	)

	switch n := n.(type) {
	case *trace.Root:
		t, err = w.r.Root(n)

	case *trace.Get:
		var base Term
		if base, err = w.Walk(n.Root()); err == nil {
			t, err = w.r.Get(base, n.Root(), n.Names())
		}

	case *trace.Call:
		t, err = w.call(n)

	case *trace.Value:
		t, err = w.r.Value(n.Value())

	default:
		err = ErrUnknownNode.With(slog.String("node", n.String()))
	}

	if err != nil {
		return Term{}, err
	}

	w.memo[n] = t

	return t, nil
}

func (w *Walker) call(n *trace.Call) (Term, error) {
	args := make([]Term, n.NumArgs())

	for i := range args {
		t, err := w.Walk(n.Arg(i))
		if err != nil {
			return Term{}, err
		}

		args[i] = t
	}

	if op, ok := operator.Recognize(n); ok {
		rule, native := w.r.Table()[op]
		if native && op.Accepts(len(args)) {
			return rule.Apply(args), nil
		}

		w.log.Warn("operator has no native syntax",
			slog.String("backend", w.r.Name()),
			slog.String("operator", op.String()),
			slog.Int("operands", len(args)),
		)

		return w.r.Builtin(op.String(), args)
	}

	if err := CheckNesting(w.caps, n); err != nil {
		return Term{}, err
	}

	fn, err := w.Walk(n.Func())
	if err != nil {
		return Term{}, err
	}

	return w.r.Call(fn, args, n)
}

// CheckNesting reports whether caps can express call. Under [NestLast], an
// argument other than the last that is itself a call (including an operator
// call) is inexpressible.
func CheckNesting(caps Capabilities, call *trace.Call) error {
	if caps.NestedCalls != NestLast {
		return nil
	}

	for i := range call.NumArgs() - 1 {
		if call.Arg(i).Kind() == trace.KindCall {
			return ErrInexpressible.With(
				slog.String("call", call.String()),
				slog.String("arg", call.Arg(i).String()),
				slog.Int("position", i),
			)
		}
	}

	return nil
}

// IsIdent reports whether name is a plain identifier: a letter or
// underscore followed by letters, digits or underscores.
func IsIdent(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}
