package lang

import (
	"log/slog"
	"maps"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/ardnew/tmplkit/operator"
	"github.com/ardnew/tmplkit/trace"
)

// Expr is a parsed expression that can be traced into a record.
type Expr struct {
	source string
	node   ast.Node
}

// Scope names placeholders that identifiers resolve to before falling back
// to members of the root, such as loop variables.
type Scope map[string]*trace.Placeholder

// With returns a copy of s with name bound to p.
func (s Scope) With(name string, p *trace.Placeholder) Scope {
	c := maps.Clone(s)
	if c == nil {
		c = make(Scope, 1)
	}

	c[name] = p

	return c
}

var binary = map[string]func(l, r any) *trace.Placeholder{
	"==":  operator.Eq,
	"!=":  operator.Ne,
	">":   operator.Gt,
	">=":  operator.Ge,
	"<":   operator.Lt,
	"<=":  operator.Le,
	"&&":  func(l, r any) *trace.Placeholder { return operator.And(l, r) },
	"and": func(l, r any) *trace.Placeholder { return operator.And(l, r) },
	"||":  func(l, r any) *trace.Placeholder { return operator.Or(l, r) },
	"or":  func(l, r any) *trace.Placeholder { return operator.Or(l, r) },
	"+":   func(l, r any) *trace.Placeholder { return operator.Add(l, r) },
	"-":   func(l, r any) *trace.Placeholder { return operator.Sub(l, r) },
	"*":   func(l, r any) *trace.Placeholder { return operator.Mul(l, r) },
	"/":   operator.Div,
	"%":   operator.Mod,
}

// Parse parses src with the expr-lang parser.
//
// Only the subset of expr-lang with a record equivalent is accepted:
// identifiers, member and index access, calls, slices, literals and the
// comparison, logical and arithmetic operators. Anything else fails with
// [ErrUnsupported].
func Parse(src string) (*Expr, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrParse.With(slog.String("source", src))
	}

	tree, err := parser.Parse(src)
	if err != nil {
		return nil, ErrParse.Wrap(err).With(slog.String("source", src))
	}

	if err := check(tree.Node); err != nil {
		return nil, err
	}

	return &Expr{source: src, node: tree.Node}, nil
}

// MustParse is like [Parse] but panics on error.
func MustParse(src string) *Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}

	return e
}

// String returns the source text of e.
func (e *Expr) String() string { return e.source }

func unsupported(node ast.Node, why string) error {
	return ErrUnsupported.With(
		slog.String("node", node.String()),
		slog.String("reason", why),
	)
}

// check reports the first node of the tree rooted at node that has no
// record equivalent.
func check(node ast.Node) error {
	switch n := node.(type) {
	case *ast.NilNode, *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode,
		*ast.StringNode, *ast.ConstantNode, *ast.IdentifierNode:
		return nil

	case *ast.MemberNode:
		if n.Optional {
			return unsupported(n, "optional chaining")
		}

		return checkAll(n.Node, n.Property)

	case *ast.CallNode:
		if err := check(n.Callee); err != nil {
			return err
		}

		return checkAll(n.Arguments...)

	case *ast.BuiltinNode:
		if n.Map != nil {
			return unsupported(n, "predicate")
		}

		return checkAll(n.Arguments...)

	case *ast.SliceNode:
		return checkAll(n.Node, n.From, n.To)

	case *ast.UnaryNode:
		switch n.Operator {
		case "!", "not", "-", "+":
			return check(n.Node)
		}

		return unsupported(n, "operator "+n.Operator)

	case *ast.BinaryNode:
		if _, ok := binary[n.Operator]; !ok {
			return unsupported(n, "operator "+n.Operator)
		}

		return checkAll(n.Left, n.Right)

	case *ast.ArrayNode:
		for _, e := range n.Nodes {
			if !isLiteral(e) {
				return unsupported(n, "array elements must be literals")
			}
		}

		return nil

	case *ast.MapNode:
		for _, p := range n.Pairs {
			pair, ok := p.(*ast.PairNode)
			if !ok || !isLiteral(pair.Value) {
				return unsupported(n, "map values must be literals")
			}

			if _, ok := pair.Key.(*ast.StringNode); !ok {
				return unsupported(n, "map keys must be strings")
			}
		}

		return nil

	case *ast.ChainNode:
		return check(n.Node)

	default:
		return unsupported(node, "no record equivalent")
	}
}

func checkAll(nodes ...ast.Node) error {
	for _, n := range nodes {
		if n == nil {
			continue
		}

		if err := check(n); err != nil {
			return err
		}
	}

	return nil
}

func isLiteral(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.NilNode, *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode,
		*ast.StringNode, *ast.ConstantNode:
		return true
	case *ast.UnaryNode:
		return n.Operator == "-" && isLiteral(n.Node)
	case *ast.ArrayNode:
		for _, e := range n.Nodes {
			if !isLiteral(e) {
				return false
			}
		}

		return true
	case *ast.MapNode:
		return check(n) == nil
	}

	return false
}
