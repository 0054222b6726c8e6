package trace

import (
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"strconv"

	"github.com/expr-lang/expr/vm/runtime"
)

// Bindings maps trace roots to the values they stand for.
type Bindings map[ID]any

// Bind returns Bindings with p bound to v.
func Bind(p *Placeholder, v any) Bindings {
	return Bindings{p.ID(): v}
}

// Set binds p to v in b.
func (b Bindings) Set(p *Placeholder, v any) { b[p.ID()] = v }

// With returns a copy of b with p bound to v.
func (b Bindings) With(p *Placeholder, v any) Bindings {
	return b.WithID(p.ID(), v)
}

// WithID returns a copy of b with id bound to v.
func (b Bindings) WithID(id ID, v any) Bindings {
	out := make(Bindings, len(b)+1)
	maps.Copy(out, b)
	out[id] = v

	return out
}

type result struct {
	v   any
	err error
}

type evaluator struct {
	roots Bindings
	memo  map[Node]result
}

// Evaluate replays n against roots. Each node shared within the DAG is
// evaluated once.
//
// A [*Root] without a binding evaluates to its attached value, or fails with
// [ErrUnboundRoot] if it has none.
func Evaluate(n Node, roots Bindings) (any, error) {
	e := evaluator{roots: roots, memo: make(map[Node]result)}

	return e.eval(n)
}

func (e *evaluator) eval(n Node) (any, error) {
	if r, ok := e.memo[n]; ok {
		return r.v, r.err
	}

	var r result

	switch n := n.(type) {
	case *Root:
		r = e.root(n)
	case *Get:
		r = e.get(n)
	case *Call:
		r = e.call(n)
	case *Value:
		r = result{v: n.v}
	default:
		r = result{err: fmt.Errorf("unknown node type %T", n)}
	}

	e.memo[n] = r

	return r.v, r.err
}

func (e *evaluator) root(n *Root) result {
	if v, ok := e.roots[n.id]; ok {
		return result{v: v}
	}

	if n.hasAttached {
		return result{v: n.attached}
	}

	return result{err: ErrUnboundRoot.With(slog.String("root", n.id.String()))}
}

func (e *evaluator) get(n *Get) result {
	v, err := e.eval(n.root)
	if err != nil {
		return result{err: err}
	}

	for _, name := range n.names {
		if v, err = Lookup(v, name); err != nil {
			return result{err: err}
		}
	}

	return result{v: v}
}

func (e *evaluator) call(n *Call) result {
	fn, err := e.eval(n.fn)
	if err != nil {
		return result{err: err}
	}

	args := make([]any, len(n.args))

	for i, a := range n.args {
		if args[i], err = e.eval(a); err != nil {
			return result{err: err}
		}
	}

	v, err := Invoke(fn, args...)
	if err != nil {
		return result{err: err}
	}

	return result{v: v}
}

// Lookup reads property name from v. Maps are indexed by key, structs by
// exported field (or expr tag), any value by method name, and slices, arrays
// and strings by decimal index. A negative index counts from the end. A
// missing map key reads as the zero value of the map's element type.
func Lookup(v any, name string) (out any, err error) {
	if v == nil {
		return nil, ErrLookup.With(
			slog.String("name", name),
			slog.String("type", "nil"),
		)
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, ErrLookup.With(
				slog.String("name", name),
				slog.String("type", fmt.Sprintf("%T", v)),
				slog.Any("reason", r),
			)
		}
	}()

	return runtime.Fetch(v, lookupKey(v, name)), nil
}

// lookupKey converts name to the key type expected by the container v.
func lookupKey(v any, name string) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return name
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.String:
		if i, err := strconv.Atoi(name); err == nil {
			return i
		}

	case reflect.Map:
		kt := rv.Type().Key()

		switch kt.Kind() {
		case reflect.String:
			return reflect.ValueOf(name).Convert(kt).Interface()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if i, err := strconv.ParseInt(name, 10, 64); err == nil {
				return reflect.ValueOf(i).Convert(kt).Interface()
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if u, err := strconv.ParseUint(name, 10, 64); err == nil {
				return reflect.ValueOf(u).Convert(kt).Interface()
			}
		}
	}

	return name
}
