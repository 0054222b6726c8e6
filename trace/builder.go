package trace

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
)

// Expr is a traced expression. It receives a root placeholder and returns the
// terminal placeholder of the expression, or a literal.
type Expr func(v *Placeholder) any

// Cache memoizes the nodes built from placeholders. Building the same
// placeholder twice with one Cache yields the identical node.
type Cache struct {
	nodes map[ID]Node
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{nodes: make(map[ID]Node)}
}

// Build converts terminal into a record DAG. A terminal that is not a
// placeholder is wrapped as a [*Value]. A nil cache builds with a fresh one.
func Build(terminal any, cache *Cache) (Node, error) {
	if cache == nil {
		cache = NewCache()
	}

	p, ok := terminal.(*Placeholder)
	if !ok {
		if containsPlaceholder(reflect.ValueOf(terminal), 0) {
			return nil, ErrNestedPlaceholder.With(
				slog.String("type", fmt.Sprintf("%T", terminal)))
		}

		return &Value{v: terminal}, nil
	}

	if p == nil {
		return nil, ErrNilPlaceholder
	}

	return cache.build(p)
}

func (c *Cache) build(p *Placeholder) (Node, error) {
	if err := p.coercion(); err != nil {
		return nil, err
	}

	if n, ok := c.nodes[p.id]; ok {
		return n, nil
	}

	var n Node

	switch {
	case p.bridge == nil:
		attached, has := p.Attached()
		n = &Root{id: p.id, attached: attached, hasAttached: has}

	case p.bridge.kind == bridgeGet:
		var names []string

		base := p
		for base.bridge != nil && base.bridge.kind == bridgeGet {
			names = append(names, base.bridge.name)
			base = base.bridge.from
		}

		slices.Reverse(names)

		for q := p; q != base; q = q.bridge.from {
			if err := q.coercion(); err != nil {
				return nil, err
			}
		}

		root, err := c.build(base)
		if err != nil {
			return nil, err
		}

		n = &Get{root: root, names: names}

	default:
		args := make([]Node, len(p.bridge.args))

		for i, arg := range p.bridge.args {
			a, ok := arg.(*Placeholder)
			if !ok {
				args[i] = &Value{v: arg}

				continue
			}

			node, err := c.build(a)
			if err != nil {
				return nil, err
			}

			args[i] = node
		}

		fn, err := c.build(p.bridge.from)
		if err != nil {
			return nil, err
		}

		n = &Call{fn: fn, args: args}
	}

	c.nodes[p.id] = n

	return n, nil
}

// Record traces fn against a fresh root placeholder and returns the record
// DAG of its result. Invalid trace usage inside fn aborts the trace and is
// returned as the error; no partial DAG is returned.
func Record(fn Expr) (Node, error) {
	n, _, err := RecordWithRoot(fn)

	return n, err
}

// RecordWithRoot is like [Record] but also returns the root placeholder, so
// the caller can bind it for evaluation.
func RecordWithRoot(fn Expr) (Node, *Placeholder, error) {
	s := &session{}
	root := newRoot(s)

	activate(s)
	defer deactivate(s)

	out, err := run(fn, root)
	if err == nil {
		err = s.err()
	}

	if err != nil {
		return nil, nil, err
	}

	n, err := Build(out, nil)
	if err != nil {
		return nil, nil, err
	}

	return n, root, nil
}

func run(fn Expr, root *Placeholder) (out any, err error) {
	defer catch(&err)

	return fn(root), nil
}
