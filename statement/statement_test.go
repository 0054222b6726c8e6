package statement_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ardnew/tmplkit/format"
	"github.com/ardnew/tmplkit/format/ejs"
	"github.com/ardnew/tmplkit/format/gotmpl"
	"github.com/ardnew/tmplkit/log"
	"github.com/ardnew/tmplkit/operator"
	. "github.com/ardnew/tmplkit/statement"
	"github.com/ardnew/tmplkit/trace"
)

func field(names ...string) trace.Expr {
	return func(v *trace.Placeholder) any {
		for _, name := range names {
			v = v.Get(name)
		}

		return v
	}
}

func just(p *trace.Placeholder) trace.Expr {
	return func(*trace.Placeholder) any { return p }
}

func render(t *testing.T, node Node, opts ...Option) (string, error) {
	t.Helper()

	var sb strings.Builder

	err := Render(t.Context(), &sb, node, append(opts, WithLogger(log.Discard()))...)

	return sb.String(), err
}

func mustRender(t *testing.T, node Node, opts ...Option) string {
	t.Helper()

	out, err := render(t, node, opts...)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	return out
}

// basic loops over names, calling foo on each and printing the index.
var basic = Group(
	Text("<div>"),
	ForEach(field("names"), func(name, index, _ *trace.Placeholder) Node {
		return Group(
			Text("<span>"),
			Interpolate(func(v *trace.Placeholder) any { return v.Get("foo").Call(name) }),
			Interpolate(just(index)),
			Text("</span>"),
		)
	}),
	Text("</div>"),
)

// nested loops over a list of lists.
var nested = Group(
	Text("<div>"),
	ForEach(field("names"), func(name, _, _ *trace.Placeholder) Node {
		return ForEach(just(name), func(char, _, _ *trace.Placeholder) Node {
			return Interpolate(just(char))
		})
	}),
	Text("</div>"),
)

func TestReplay_Interpolate(t *testing.T) {
	got := mustRender(t, Interpolate(field("a")), WithValue(map[string]any{"a": 1}))
	if got != "1" {
		t.Errorf("got %q, want 1", got)
	}

	got = mustRender(t, Interpolate(field("missing")), WithValue(map[string]any{}))
	if got != "" {
		t.Errorf("nil result rendered as %q", got)
	}
}

func TestReplay_MultipleRoots(t *testing.T) {
	v1, v2 := trace.NewRoot(), trace.NewRoot()

	node := Group(
		Interpolate(field("type")),
		Text("/"),
		Interpolate(func(*trace.Placeholder) any { return v1.Get("type") }),
		Text("/"),
		Interpolate(func(*trace.Placeholder) any { return v2.Get("type") }),
	)

	bindings := trace.Bind(v1, map[string]any{"type": "v1"}).With(v2, map[string]any{"type": "v2"})

	got := mustRender(t, node,
		WithValue(map[string]any{"type": "root"}),
		WithBindings(bindings))
	if got != "root/v1/v2" {
		t.Errorf("got %q", got)
	}
}

func TestReplay_If(t *testing.T) {
	count := Interpolate(field("count"))

	tests := []struct {
		name string
		node Node
		data map[string]any
		want string
	}{
		{"then", If(func(v *trace.Placeholder) any { return operator.Gt(v.Get("count"), 9) }, count, nil),
			map[string]any{"count": 10}, "10"},
		{"else", If(func(v *trace.Placeholder) any { return operator.Le(v.Get("count"), 9) }, nil, count),
			map[string]any{"count": 10}, "10"},
		{"eq_then", If(func(v *trace.Placeholder) any { return operator.Eq(v.Get("count"), 10) },
			Text("then"), Text("else")), map[string]any{"count": 10}, "then"},
		{"eq_else", If(func(v *trace.Placeholder) any { return operator.Eq(v.Get("count"), 10) },
			Text("then"), Text("else")), map[string]any{"count": 1}, "else"},
		{"truthy", If(field("items"), Text("some"), Text("none")),
			map[string]any{"items": []int{}}, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustRender(t, tt.node, WithValue(tt.data)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplay_ForEach(t *testing.T) {
	objects := ForEach(field("dataSource"), func(v, _, _ *trace.Placeholder) Node {
		return Group(Text("<div>"), Interpolate(just(v.Get("foo"))), Text("</div>"))
	})

	indexed := ForEach(field("dataSource"), func(v, i, src *trace.Placeholder) Node {
		return Group(
			Interpolate(just(i)),
			Text("="),
			Interpolate(func(*trace.Placeholder) any { return operator.Get(src, i) }),
			Text(";"),
		)
	})

	tests := []struct {
		name string
		node Node
		data map[string]any
		want string
	}{
		{"objects", objects, map[string]any{"dataSource": []any{
			map[string]any{"foo": "1"}, map[string]any{"foo": "2"}, map[string]any{"foo": "3"},
		}}, "<div>1</div><div>2</div><div>3</div>"},
		{"index_source", indexed, map[string]any{"dataSource": []string{"a", "b"}}, "0=a;1=b;"},
		{"nil_source", objects, map[string]any{}, ""},
		{"basic", basic, map[string]any{
			"names": []string{"x", "y"},
			"foo":   strings.ToUpper,
		}, "<div><span>X0</span><span>Y1</span></div>"},
		{"nested", nested, map[string]any{
			"names": [][]string{{"a", "b"}, {"c"}},
		}, "<div>abc</div>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustRender(t, tt.node, WithValue(tt.data)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	quiet := format.WithLogger(log.Discard())

	tests := []struct {
		name string
		f    format.Formatter
		node Node
		want string
	}{
		{"ejs_basic", ejs.New(quiet), basic,
			"<div><% names.forEach(function(item0, index0, source0) { %>" +
				"<span><%= foo(item0) %><%= index0 %></span><% }) %></div>"},
		{"ejs_nested", ejs.New(quiet), nested,
			"<div><% names.forEach(function(item0, index0, source0) { %>" +
				"<% item0.forEach(function(item1, index1, source1) { %><%= item1 %><% }) %>" +
				"<% }) %></div>"},
		{"gotmpl_basic", gotmpl.New(quiet), basic,
			"<div>{{$source0 := .names}}{{range $index0, $value0 := $source0}}" +
				"<span>{{call .foo $value0}}{{$index0}}</span>{{end}}</div>"},
		{"gotmpl_nested", gotmpl.New(quiet), nested,
			"<div>{{$source0 := .names}}{{range $index0, $value0 := $source0}}" +
				"{{$source1 := $value0}}{{range $index1, $value1 := $source1}}{{$value1}}{{end}}" +
				"{{end}}</div>"},
		{"ejs_if", ejs.New(quiet),
			If(func(v *trace.Placeholder) any { return operator.Gt(v.Get("count"), 9) },
				Interpolate(field("count")), Text("few")),
			"<% if (count > 9) { %><%= count %><% } else { %>few<% } %>"},
		{"gotmpl_if", gotmpl.New(quiet),
			If(field("ok"), Text("yes"), nil),
			"{{if .ok}}yes{{end}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustRender(t, tt.node, WithFormatter(tt.f)); got != tt.want {
				t.Errorf("got\n  %q\nwant\n  %q", got, tt.want)
			}
		})
	}
}

func TestFormat_ErrorIsolation(t *testing.T) {
	bad := Interpolate(func(v *trace.Placeholder) any {
		return v.Get("f").Call(v.Get("g").Call(), v.Get("h").Call(), 1)
	})

	node := Group(Interpolate(field("a")), Text("|"), bad, Text("|"), Interpolate(field("b")))

	got, err := render(t, node, WithFormatter(gotmpl.New()))
	if !errors.Is(err, format.ErrInexpressible) {
		t.Fatalf("err = %v, want ErrInexpressible", err)
	}

	if got != "{{.a}}||{{.b}}" {
		t.Errorf("got %q", got)
	}
}

func TestRender_Errors(t *testing.T) {
	if _, err := render(t, Text("x")); !errors.Is(err, ErrNoFormatter) {
		t.Errorf("no mode: err = %v", err)
	}

	_, err := render(t, ForEach(field("n"), func(_, _, _ *trace.Placeholder) Node { return Text("x") }),
		WithValue(map[string]any{"n": 5}))
	if !errors.Is(err, ErrNotIterable) {
		t.Errorf("scalar source: err = %v", err)
	}

	got, err := render(t, Group(Text("a"), Interpolate(field("x", "y")), Text("b")),
		WithValue(map[string]any{}))
	if !errors.Is(err, trace.ErrLookup) || got != "ab" {
		t.Errorf("failed lookup: got %q, err = %v", got, err)
	}

	if _, err := render(t, Interpolate(nil), WithValue(1)); !errors.Is(err, ErrNilExpr) {
		t.Errorf("nil expression: err = %v", err)
	}

	_, err = render(t, ForEach(field("n"), func(item, _, _ *trace.Placeholder) Node {
		item.Get("")

		return nil
	}), WithValue(map[string]any{"n": []int{1}}))
	if !errors.Is(err, trace.ErrInvalidName) {
		t.Errorf("bad loop body: err = %v", err)
	}
}

func TestRender_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var sb strings.Builder

	err := Render(ctx, &sb, Text("x"), WithValue(nil))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRecordOnce(t *testing.T) {
	var traced atomic.Int32

	node := ForEach(field("items"), func(item, _, _ *trace.Placeholder) Node {
		return Interpolate(func(*trace.Placeholder) any {
			traced.Add(1)

			return item
		})
	})

	data := map[string]any{"items": []int{1, 2, 3}}

	for range 2 {
		if got := mustRender(t, node, WithValue(data)); got != "123" {
			t.Fatalf("got %q", got)
		}
	}

	if n := traced.Load(); n != 1 {
		t.Errorf("expression traced %d times, want 1", n)
	}
}
