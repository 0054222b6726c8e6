package trace

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies the type of a [Node].
type Kind uint8

const (
	KindRoot Kind = iota + 1
	KindGet
	KindCall
	KindValue
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindGet:
		return "get"
	case KindCall:
		return "call"
	case KindValue:
		return "value"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Node is an immutable node of a record DAG. The concrete types are [*Root],
// [*Get], [*Call] and [*Value].
//
// Nodes never refer back to placeholders, so a DAG can be evaluated or
// formatted any number of times after the trace that produced it is gone.
type Node interface {
	Kind() Kind
	String() string

	node()
}

// Root is a trace root.
type Root struct {
	id          ID
	attached    any
	hasAttached bool
}

// ID returns the identity of the placeholder this root was built from.
func (r *Root) ID() ID { return r.id }

// Attached returns the attached value the root carried when it was built.
func (r *Root) Attached() (any, bool) { return r.attached, r.hasAttached }

func (*Root) Kind() Kind       { return KindRoot }
func (r *Root) String() string { return r.id.String() }
func (*Root) node()            {}

// Get is a chain of one or more property reads from a base node.
type Get struct {
	root  Node
	names []string
}

// Root returns the node the property chain starts from. It is a [*Root] or a
// [*Call].
func (g *Get) Root() Node { return g.root }

// Names returns a copy of the property names, outermost first.
func (g *Get) Names() []string { return slices.Clone(g.names) }

// Len returns the number of names in the chain.
func (g *Get) Len() int { return len(g.names) }

// Name returns the i'th property name.
func (g *Get) Name(i int) string { return g.names[i] }

func (*Get) Kind() Kind { return KindGet }
func (g *Get) String() string {
	return g.root.String() + "." + strings.Join(g.names, ".")
}
func (*Get) node() {}

// Call is an invocation of the value of Func with Args.
type Call struct {
	fn   Node
	args []Node
}

// Func returns the callee.
func (c *Call) Func() Node { return c.fn }

// Args returns a copy of the arguments.
func (c *Call) Args() []Node { return slices.Clone(c.args) }

// NumArgs returns the number of arguments.
func (c *Call) NumArgs() int { return len(c.args) }

// Arg returns the i'th argument.
func (c *Call) Arg(i int) Node { return c.args[i] }

func (*Call) Kind() Kind { return KindCall }
func (c *Call) String() string {
	args := make([]string, len(c.args))
	for i, a := range c.args {
		args[i] = a.String()
	}

	return c.fn.String() + "(" + strings.Join(args, ", ") + ")"
}
func (*Call) node() {}

// Value is a literal captured at trace time.
type Value struct{ v any }

// Value returns the captured literal.
func (v *Value) Value() any { return v.v }

func (*Value) Kind() Kind { return KindValue }
func (v *Value) String() string {
	if v.v == nil {
		return "nil"
	}

	return fmt.Sprintf("%#v", v.v)
}
func (*Value) node() {}

// Dump returns n as a tree of maps and slices suitable for encoding as YAML
// or JSON. Shared sub-nodes appear once per reference.
func Dump(n Node) map[string]any {
	out := map[string]any{"kind": n.Kind().String()}

	switch n := n.(type) {
	case *Root:
		out["id"] = uint64(n.id)
	case *Get:
		out["root"] = Dump(n.root)
		out["names"] = n.Names()
	case *Call:
		out["func"] = Dump(n.fn)

		args := make([]any, len(n.args))
		for i, a := range n.args {
			args[i] = Dump(a)
		}

		out["args"] = args
	case *Value:
		out["value"] = n.v
	}

	return out
}
