package operator

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ardnew/tmplkit/pkg"
	"github.com/ardnew/tmplkit/trace"
)

var (
	ErrUnknown = pkg.NewError("unknown operator")
	ErrArity   = pkg.NewError("wrong number of operands")
)

// Root returns the operator root. Its attached value is [Std], so calls
// traced through it evaluate to the real implementations.
var Root = sync.OnceValue(func() *trace.Placeholder {
	return trace.NewRoot(trace.Persistent(), trace.WithAttached(Std))
})

// RootID returns the identity of [Root].
func RootID() trace.ID { return Root().ID() }

// Traced returns the placeholder for applying op to args.
func Traced(op Op, args ...any) *trace.Placeholder {
	return Root().Get(op.String()).Call(args...)
}

// Eq traces l == r.
func Eq(l, r any) *trace.Placeholder { return Traced(OpEq, l, r) }

// Ne traces l != r.
func Ne(l, r any) *trace.Placeholder { return Traced(OpNe, l, r) }

// Gt traces l > r.
func Gt(l, r any) *trace.Placeholder { return Traced(OpGt, l, r) }

// Ge traces l >= r.
func Ge(l, r any) *trace.Placeholder { return Traced(OpGe, l, r) }

// Lt traces l < r.
func Lt(l, r any) *trace.Placeholder { return Traced(OpLt, l, r) }

// Le traces l <= r.
func Le(l, r any) *trace.Placeholder { return Traced(OpLe, l, r) }

// And traces the conjunction of v.
func And(v ...any) *trace.Placeholder { return Traced(OpAnd, v...) }

// Or traces the disjunction of v.
func Or(v ...any) *trace.Placeholder { return Traced(OpOr, v...) }

// Not traces the negation of v.
func Not(v any) *trace.Placeholder { return Traced(OpNot, v) }

// Add traces the sum of its operands.
func Add(v any, vs ...any) *trace.Placeholder {
	return Traced(OpAdd, append([]any{v}, vs...)...)
}

// Sub traces the difference of its operands.
func Sub(v any, vs ...any) *trace.Placeholder {
	return Traced(OpSub, append([]any{v}, vs...)...)
}

// Mul traces the product of its operands.
func Mul(v any, vs ...any) *trace.Placeholder {
	return Traced(OpMul, append([]any{v}, vs...)...)
}

func Div(num, den any) *trace.Placeholder { return Traced(OpDiv, num, den) }
func Mod(num, den any) *trace.Placeholder { return Traced(OpMod, num, den) }
func Inc(v any) *trace.Placeholder        { return Traced(OpInc, v) }
func Dec(v any) *trace.Placeholder        { return Traced(OpDec, v) }

// Concat traces the concatenation of v.
func Concat(v ...any) *trace.Placeholder { return Traced(OpConcat, v...) }

// Substr traces a substring of s. end is optional.
func Substr(s, start any, end ...any) *trace.Placeholder {
	return Traced(OpSubstr, append([]any{s, start}, end...)...)
}

// Get traces container[key].
func Get(container, key any) *trace.Placeholder {
	return Traced(OpGet, container, key)
}

// Recognize reports which operation call applies, if its callee is a single
// property read of the operator root. Recognition is by root identity, so a
// user function that happens to be named like an operation is not an
// operation.
func Recognize(call *trace.Call) (Op, bool) {
	g, ok := call.Func().(*trace.Get)
	if !ok || g.Len() != 1 {
		return 0, false
	}

	r, ok := g.Root().(*trace.Root)
	if !ok || r.ID() != RootID() {
		return 0, false
	}

	return Lookup(g.Name(0))
}

// Apply runs op on args with the [Std] implementation.
func Apply(op Op, args ...any) (any, error) {
	if !op.Valid() {
		return nil, ErrUnknown.With(slog.String("op", op.String()))
	}

	if !op.Accepts(len(args)) {
		return nil, ErrArity.With(
			slog.String("op", op.String()),
			slog.Int("operands", len(args)),
		)
	}

	fn, err := trace.Lookup(Std, op.String())
	if err != nil {
		return nil, err
	}

	return trace.Invoke(fn, args...)
}

func attr(key string, v any) slog.Attr {
	return slog.String(key, fmt.Sprint(v))
}
