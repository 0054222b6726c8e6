package trace

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

type user struct {
	Name  string
	Email string `expr:"mail"`
	Tags  []string
}

func (u user) Greet(greeting string) string { return greeting + ", " + u.Name }

func TestEvaluate(t *testing.T) {
	data := map[string]any{
		"a":     map[string]any{"b": map[string]any{"c": 3}},
		"list":  []any{"x", "y", "z"},
		"user":  user{Name: "Ada", Email: "ada@example.com", Tags: []string{"admin"}},
		"ptr":   &user{Name: "Bob"},
		"plus":  func(a, b int) int { return a + b },
		"join":  func(sep string, parts ...string) string { return strings.Join(parts, sep) },
		"split": func(s string) ([]string, error) { return strings.Split(s, ","), nil },
		"curry": func(a int) func(int) int { return func(b int) int { return a * b } },
		"count": map[int]string{1: "one"},
		"any":   Func(func(args ...any) (any, error) { return len(args), nil }),
	}

	tests := []struct {
		name string
		fn   Expr
		want any
	}{
		{"chain", func(v *Placeholder) any { return v.Get("a").Get("b").Get("c") }, 3},
		{"index", func(v *Placeholder) any { return v.Get("list").Index(1) }, "y"},
		{"negative_index", func(v *Placeholder) any { return v.Get("list").Get("-1") }, "z"},
		{"struct_field", func(v *Placeholder) any { return v.Get("user").Get("Name") }, "Ada"},
		{"expr_tag", func(v *Placeholder) any { return v.Get("user").Get("mail") }, "ada@example.com"},
		{"pointer_field", func(v *Placeholder) any { return v.Get("ptr").Get("Name") }, "Bob"},
		{"method", func(v *Placeholder) any { return v.Get("user").Get("Greet").Call("Hi") }, "Hi, Ada"},
		{"missing_key", func(v *Placeholder) any { return v.Get("a").Get("nope") }, nil},
		{"int_key", func(v *Placeholder) any { return v.Get("count").Index(1) }, "one"},
		{"call", func(v *Placeholder) any { return v.Get("plus").Call(v.Get("a").Get("b").Get("c"), 4) }, 7},
		{"convert_arg", func(v *Placeholder) any { return v.Get("plus").Call(int64(1), 2.0) }, 3},
		{"variadic", func(v *Placeholder) any { return v.Get("join").Call("-", "a", "b") }, "a-b"},
		{"result_error", func(v *Placeholder) any { return v.Get("split").Call("a,b").Index(1) }, "b"},
		{"curry", func(v *Placeholder) any { return v.Get("curry").Call(3).Call(5) }, 15},
		{"func", func(v *Placeholder) any { return v.Get("any").Call(1, 2, 3) }, 3},
		{"literal", func(*Placeholder) any { return "lit" }, "lit"},
		{"root", func(v *Placeholder) any { return v.Get("a").Get("b") }, map[string]any{"c": 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, root := mustRecord(t, tt.fn)

			got, err := Evaluate(n, Bind(root, data))
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}

			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}

			again, _ := Evaluate(n, Bind(root, data))
			if fmt.Sprint(again) != fmt.Sprint(got) {
				t.Errorf("second evaluation = %v, first = %v", again, got)
			}
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	data := map[string]any{
		"a":     map[string]any{},
		"n":     5,
		"list":  []int{1},
		"fail":  func() error { return errors.New("nope") },
		"boom":  func() int { panic("boom") },
		"plus":  func(a, b int) int { return a + b },
		"multi": func() (int, int) { return 1, 2 },
	}

	tests := []struct {
		name string
		fn   Expr
		want error
	}{
		{"nil_intermediate", func(v *Placeholder) any { return v.Get("a").Get("x").Get("y") }, ErrLookup},
		{"scalar_property", func(v *Placeholder) any { return v.Get("n").Get("x") }, ErrLookup},
		{"out_of_range", func(v *Placeholder) any { return v.Get("list").Index(4) }, ErrLookup},
		{"not_callable", func(v *Placeholder) any { return v.Get("n").Call() }, ErrNotCallable},
		{"arity", func(v *Placeholder) any { return v.Get("plus").Call(1) }, ErrArgument},
		{"arg_type", func(v *Placeholder) any { return v.Get("plus").Call("a", 1) }, ErrArgument},
		{"error_result", func(v *Placeholder) any { return v.Get("fail").Call() }, ErrCallFailed},
		{"panic", func(v *Placeholder) any { return v.Get("boom").Call() }, ErrCallPanic},
		{"bad_results", func(v *Placeholder) any { return v.Get("multi").Call() }, ErrNotCallable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, root := mustRecord(t, tt.fn)

			if _, err := Evaluate(n, Bind(root, data)); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEvaluate_UnboundRoot(t *testing.T) {
	n, _ := mustRecord(t, func(v *Placeholder) any { return v.Get("a") })

	if _, err := Evaluate(n, nil); !errors.Is(err, ErrUnboundRoot) {
		t.Errorf("err = %v, want ErrUnboundRoot", err)
	}
}

func TestEvaluate_AttachedFallback(t *testing.T) {
	lib := NewRoot(WithAttached(map[string]any{
		"double": func(x int) int { return 2 * x },
	}))

	n, root := mustRecord(t, func(v *Placeholder) any {
		return lib.Get("double").Call(v.Get("n"))
	})

	got, err := Evaluate(n, Bind(root, map[string]any{"n": 21}))
	if err != nil || got != 42 {
		t.Errorf("got %v, %v; want 42", got, err)
	}
}

func TestBindings_With(t *testing.T) {
	a, b := NewRoot(), NewRoot()
	base := Bind(a, 1)
	ext := base.With(b, 2)

	if _, ok := base[b.ID()]; ok {
		t.Error("With modified the receiver")
	}

	if ext[a.ID()] != 1 || ext[b.ID()] != 2 {
		t.Errorf("ext = %v", ext)
	}

	ext.Set(a, 3)

	if base[a.ID()] != 1 || ext[a.ID()] != 3 {
		t.Error("Set leaked into the original bindings")
	}
}

func TestInvoke(t *testing.T) {
	tests := []struct {
		name string
		fn   any
		args []any
		want any
		err  error
	}{
		{"no_results", func() {}, nil, nil, nil},
		{"nil_pointer_arg", func(p *int) bool { return p == nil }, []any{nil}, true, nil},
		{"nil_int_arg", func(int) {}, []any{nil}, nil, ErrArgument},
		{"interface_mismatch", func(s fmt.Stringer) string { return s.String() }, []any{ErrLookup.With()}, nil, ErrArgument},
		{"any_variadic", func(v ...any) any { return len(v) }, []any{1, "a"}, 2, nil},
		{"nil_func", nil, nil, nil, ErrNotCallable},
		{"too_many", func(int) {}, []any{1, 2}, nil, ErrArgument},
		{"int_to_float", func(a, b float64) float64 { return a + b }, []any{1, 2}, 3.0, nil},
		{"whole_float_to_int", func(a, b int) int { return a + b }, []any{1.0, 2}, 3, nil},
		{"fractional_float_to_int", func(a, b int) int { return a + b }, []any{1.5, 2}, nil, ErrArgument},
		{"negative_float_to_uint", func(u uint) uint { return u }, []any{-1.0}, nil, ErrArgument},
		{"nan_to_int", func(i int) int { return i }, []any{math.NaN()}, nil, ErrArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Invoke(tt.fn, tt.args...)
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}

			if err == nil && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
