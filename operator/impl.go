package operator

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/expr-lang/expr/vm/runtime"

	"github.com/ardnew/tmplkit/trace"
)

// Impl holds the real implementations of the operations. Numeric and
// comparison semantics are those of expr-lang; operands of incompatible types
// panic as they do there.
type Impl struct{}

// Std is the implementation attached to the operator root.
var Std Impl

// Truthy reports whether v is true in a boolean context. As in text/template,
// zero values, nil and empty containers are false.
func Truthy(v any) bool {
	truth, _ := template.IsTrue(v)

	return truth
}

func (Impl) Eq(l, r any) bool { return runtime.Equal(l, r) }
func (Impl) Ne(l, r any) bool { return !runtime.Equal(l, r) }
func (Impl) Gt(l, r any) bool { return runtime.More(l, r) }
func (Impl) Ge(l, r any) bool { return runtime.MoreOrEqual(l, r) }
func (Impl) Lt(l, r any) bool { return runtime.Less(l, r) }
func (Impl) Le(l, r any) bool { return runtime.LessOrEqual(l, r) }

// And returns the first operand that is not truthy, or the last operand.
func (Impl) And(v ...any) any {
	var x any

	for _, x = range v {
		if !Truthy(x) {
			break
		}
	}

	return x
}

// Or returns the first truthy operand, or the last operand.
func (Impl) Or(v ...any) any {
	var x any

	for _, x = range v {
		if Truthy(x) {
			break
		}
	}

	return x
}

func (Impl) Not(v any) bool { return !Truthy(v) }

func fold(f func(a, b any) any, v any, vs []any) any {
	for _, x := range vs {
		v = f(v, x)
	}

	return v
}

// Add sums its operands left to right. Strings concatenate.
func (Impl) Add(v any, vs ...any) any { return fold(runtime.Add, v, vs) }

// Sub subtracts each later operand from the first.
func (Impl) Sub(v any, vs ...any) any { return fold(runtime.Subtract, v, vs) }

// Mul multiplies its operands.
func (Impl) Mul(v any, vs ...any) any { return fold(runtime.Multiply, v, vs) }

// Div divides num by den as floating point.
func (Impl) Div(num, den any) any { return runtime.Divide(num, den) }

// Mod returns the integer remainder of num divided by den.
func (Impl) Mod(num, den any) any { return runtime.Modulo(num, den) }

func (Impl) Inc(v any) any { return runtime.Add(v, 1) }
func (Impl) Dec(v any) any { return runtime.Subtract(v, 1) }

// Concat joins the text of its operands. nil contributes nothing.
func (Impl) Concat(v ...any) string {
	var sb strings.Builder

	for _, x := range v {
		sb.WriteString(text(x))
	}

	return sb.String()
}

// Substr returns the runes of s from start up to, but excluding, end. A
// missing or nil end means the end of s. Both bounds are clamped to s, and
// swapped if start is greater than end.
func (Impl) Substr(s, start any, end ...any) string {
	r := []rune(text(s))
	lo := clamp(runtime.ToInt(start), len(r))
	hi := len(r)

	if len(end) > 0 && end[0] != nil {
		hi = clamp(runtime.ToInt(end[0]), len(r))
	}

	if lo > hi {
		lo, hi = hi, lo
	}

	return string(r[lo:hi])
}

// Get indexes container by key. String keys are resolved like traced
// property reads; other keys are passed to expr-lang's fetch.
func (Impl) Get(container, key any) (v any, err error) {
	if name, ok := key.(string); ok {
		return trace.Lookup(container, name)
	}

	defer func() {
		if r := recover(); r != nil {
			v, err = nil, trace.ErrLookup.With(
				attr("key", key), attr("type", fmt.Sprintf("%T", container)))
		}
	}()

	return runtime.Fetch(container, key), nil
}

func text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func clamp(i, n int) int {
	return max(0, min(i, n))
}
