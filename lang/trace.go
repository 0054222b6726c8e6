package lang

import (
	"log/slog"

	"github.com/expr-lang/expr/ast"

	"github.com/ardnew/tmplkit/operator"
	"github.com/ardnew/tmplkit/trace"
)

// Trace returns an expression that rebuilds e against a root placeholder.
// Identifiers bound in scope resolve to their placeholders; all others are
// members of the root.
func (e *Expr) Trace(scope Scope) trace.Expr {
	return func(root *trace.Placeholder) any {
		return tracer{root: root, scope: scope}.value(e.node)
	}
}

type tracer struct {
	root  *trace.Placeholder
	scope Scope
}

func (t tracer) ident(name string) *trace.Placeholder {
	if p, ok := t.scope[name]; ok {
		return p
	}

	return t.root.Get(name)
}

func (t tracer) values(nodes []ast.Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = t.value(n)
	}

	return out
}

func (t tracer) value(node ast.Node) any {
	switch n := node.(type) {
	case *ast.NilNode:
		return nil
	case *ast.IntegerNode:
		return n.Value
	case *ast.FloatNode:
		return n.Value
	case *ast.BoolNode:
		return n.Value
	case *ast.StringNode:
		return n.Value
	case *ast.ConstantNode:
		return n.Value

	case *ast.IdentifierNode:
		return t.ident(n.Value)

	case *ast.ChainNode:
		return t.value(n.Node)

	case *ast.MemberNode:
		return t.member(n)

	case *ast.CallNode:
		fn, ok := t.value(n.Callee).(*trace.Placeholder)
		if !ok {
			trace.Fail(trace.ErrNotCallable.With(slog.String("callee", n.Callee.String())))
		}

		return fn.Call(t.values(n.Arguments)...)

	case *ast.BuiltinNode:
		return t.ident(n.Name).Call(t.values(n.Arguments)...)

	case *ast.SliceNode:
		var from any = 0
		if n.From != nil {
			from = t.value(n.From)
		}

		if n.To == nil {
			return operator.Substr(t.value(n.Node), from)
		}

		return operator.Substr(t.value(n.Node), from, t.value(n.To))

	case *ast.UnaryNode:
		return t.unary(n)

	case *ast.BinaryNode:
		return binary[n.Operator](t.value(n.Left), t.value(n.Right))

	case *ast.ArrayNode:
		return t.values(n.Nodes)

	case *ast.MapNode:
		m := make(map[string]any, len(n.Pairs))
		for _, p := range n.Pairs {
			pair := p.(*ast.PairNode)
			m[pair.Key.(*ast.StringNode).Value] = t.value(pair.Value)
		}

		return m
	}

	trace.Fail(unsupported(node, "no record equivalent"))

	return nil
}

// member traces a.b and a[k]. Constant keys extend the access chain;
// computed keys and non-placeholder bases go through the Get operator.
func (t tracer) member(n *ast.MemberNode) any {
	base := t.value(n.Node)

	p, ok := base.(*trace.Placeholder)
	if ok {
		switch prop := n.Property.(type) {
		case *ast.StringNode:
			return p.Get(prop.Value)
		case *ast.IntegerNode:
			return p.Index(prop.Value)
		}
	}

	return operator.Get(base, t.value(n.Property))
}

func (t tracer) unary(n *ast.UnaryNode) any {
	v := t.value(n.Node)

	switch n.Operator {
	case "!", "not":
		return operator.Not(v)
	case "+":
		return v
	}

	switch x := v.(type) {
	case int:
		return -x
	case float64:
		return -x
	}

	return operator.Sub(0, v)
}
