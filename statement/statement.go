package statement

import (
	"sync"

	"github.com/ardnew/tmplkit/format"
	"github.com/ardnew/tmplkit/trace"
)

// Node is a piece of template output. Nodes are immutable and may be
// rendered any number of times, concurrently.
type Node interface {
	render(s *scope) error
}

// LoopBody builds the body of a loop from placeholders for the current
// element, its index and the loop source.
type LoopBody func(item, index, source *trace.Placeholder) Node

type text string

// Text returns a node that outputs s verbatim.
func Text(s string) Node { return text(s) }

type group []Node

// Group returns a node that outputs each of nodes in order. nil nodes are
// skipped.
func Group(nodes ...Node) Node { return group(nodes) }

type interpolate struct{ expr *expression }

// Interpolate returns a node that outputs the value of expr.
func Interpolate(expr trace.Expr) Node {
	return &interpolate{expr: newExpression(expr)}
}

type condition struct {
	cond            *expression
	then, otherwise Node
}

// If returns a node that outputs then if cond is truthy and otherwise (which
// may be nil) if it is not.
func If(cond trace.Expr, then, otherwise Node) Node {
	return &condition{cond: newExpression(cond), then: then, otherwise: otherwise}
}

type loop struct {
	source *expression
	body   LoopBody

	mu     sync.Mutex
	bodies map[format.LoopVars]*loopBody
}

type loopBody struct {
	root *trace.Placeholder
	node Node
	err  error
}

// ForEach returns a node that outputs the node built by body once per
// element of source.
//
// body is called once per distinct set of loop variable names, not once per
// element; the placeholders it receives are bound to each element in turn.
func ForEach(source trace.Expr, body LoopBody) Node {
	return &loop{source: newExpression(source), body: body}
}

// bodyFor returns the body built against placeholders named by vars.
func (l *loop) bodyFor(vars format.LoopVars) *loopBody {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.bodies[vars]; ok {
		return b
	}

	b := &loopBody{root: trace.NewRoot()}
	b.err = trace.Guard(func() {
		b.node = l.body(b.root.Get(vars.Item), b.root.Get(vars.Index), b.root.Get(vars.Source))
	})

	if l.bodies == nil {
		l.bodies = make(map[format.LoopVars]*loopBody)
	}

	l.bodies[vars] = b

	return b
}

// expression records a traced expression the first time it is needed.
type expression struct {
	fn trace.Expr

	once sync.Once
	rec  trace.Node
	root *trace.Placeholder
	err  error
}

func newExpression(fn trace.Expr) *expression {
	return &expression{fn: fn}
}

func (e *expression) record() (trace.Node, *trace.Placeholder, error) {
	e.once.Do(func() {
		if e.fn == nil {
			e.err = ErrNilExpr

			return
		}

		e.rec, e.root, e.err = trace.RecordWithRoot(e.fn)
	})

	return e.rec, e.root, e.err
}
