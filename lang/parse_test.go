package lang_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ardnew/tmplkit/format"
	"github.com/ardnew/tmplkit/format/ejs"
	"github.com/ardnew/tmplkit/format/gotmpl"
	"github.com/ardnew/tmplkit/lang"
	"github.com/ardnew/tmplkit/log"
	"github.com/ardnew/tmplkit/operator"
	"github.com/ardnew/tmplkit/trace"
)

func replay(t *testing.T, src string, data any) any {
	t.Helper()

	rec, root, err := trace.RecordWithRoot(lang.MustParse(src).Trace(nil))
	if err != nil {
		t.Fatalf("record %q: %v", src, err)
	}

	v, err := trace.Evaluate(rec, trace.Bind(root, data))
	if err != nil {
		t.Fatalf("evaluate %q: %v", src, err)
	}

	return v
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src  string
		want error
	}{
		{"", lang.ErrParse},
		{"   ", lang.ErrParse},
		{"a +", lang.ErrParse},
		{"a ? b : c", lang.ErrUnsupported},
		{"a in b", lang.ErrUnsupported},
		{"a ?? b", lang.ErrUnsupported},
		{"a?.b", lang.ErrUnsupported},
		{"[a, 1]", lang.ErrUnsupported},
		{`{"k": a}`, lang.ErrUnsupported},
		{"filter(xs, # > 1)", lang.ErrUnsupported},
		{"let x = 1; x", lang.ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := lang.Parse(tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParse_String(t *testing.T) {
	if got := lang.MustParse("  a.b  ").String(); got != "a.b" {
		t.Errorf("String() = %q", got)
	}
}

func TestTrace_Replay(t *testing.T) {
	data := map[string]any{
		"a":      map[string]any{"b": 2},
		"items":  []int{10, 20},
		"i":      0,
		"name":   "bob",
		"title":  "abcdef",
		"count":  10,
		"hidden": false,
		"n":      3,
		"greet":  func(a, b string) string { return a + b },
		"upper":  strings.ToUpper,
		"obj":    map[string]any{"f": func() int { return 7 }},
	}

	tests := []struct {
		src  string
		want any
	}{
		{"a.b + 1", 3},
		{`a["b"]`, 2},
		{"items[1]", 20},
		{"items[-1]", 20},
		{"items[i]", 10},
		{`greet(name, "!")`, "bob!"},
		{"upper(name)", "BOB"},
		{"obj.f()", 7},
		{"title[0:3]", "abc"},
		{"title[2:]", "cdef"},
		{"title[:2]", "ab"},
		{"count > 9 && !hidden", true},
		{"count < 9 or not hidden", true},
		{"count == 10 and hidden", false},
		{"-n", -3},
		{"-2", -2},
		{"n * 2 - 1", 5},
		{"count / 4", 2.5},
		{"count % 4", 2},
		{`"x" + name`, "xbob"},
		{"[1, 2][0]", 1},
		{`{"k": 1}.k`, 1},
		{"nil", nil},
		{"1.5", 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := replay(t, tt.src, data)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("got %v (%T), want %v", got, got, tt.want)
			}
		})
	}
}

func TestTrace_Operators(t *testing.T) {
	rec, err := trace.Record(lang.MustParse("a.b + 1").Trace(nil))
	if err != nil {
		t.Fatal(err)
	}

	call, ok := rec.(*trace.Call)
	if !ok {
		t.Fatalf("record is %s, want call", rec.Kind())
	}

	if op, ok := operator.Recognize(call); !ok || op != operator.OpAdd {
		t.Errorf("Recognize = %v, %v; want Add", op, ok)
	}

	if got := call.Arg(0).String(); !strings.HasSuffix(got, ".a.b") {
		t.Errorf("first operand = %s, want a.b chain", got)
	}
}

func TestTrace_Scope(t *testing.T) {
	item := trace.NewRoot()

	rec, root, err := trace.RecordWithRoot(
		lang.MustParse("it.name + suffix").Trace(lang.Scope{"it": item}))
	if err != nil {
		t.Fatal(err)
	}

	bindings := trace.Bind(root, map[string]any{"suffix": "!"}).
		With(item, map[string]any{"name": "x"})

	got, err := trace.Evaluate(rec, bindings)
	if err != nil {
		t.Fatal(err)
	}

	if got != "x!" {
		t.Errorf("got %v", got)
	}
}

func TestTrace_Format(t *testing.T) {
	quiet := format.WithLogger(log.Discard())

	tests := []struct {
		src    string
		ejs    string
		gotmpl string
	}{
		{"a.b", "<%= a.b %>", "{{.a.b}}"},
		{"a.b + 1", "<%= a.b + 1 %>", "{{Add .a.b 1}}"},
		{"a > 1 && !c", "<%= (a > 1) && (!c) %>", "{{and (gt .a 1) (not .c)}}"},
		{"f(x, g(y))", "<%= f(x, g(y)) %>", "{{call .g .y | call .f .x}}"},
		{"items[0]", "<%= items[0] %>", `{{index . "items" 0}}`},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			rec, err := trace.Record(lang.MustParse(tt.src).Trace(nil))
			if err != nil {
				t.Fatal(err)
			}

			got, err := ejs.New(quiet).Interpolate(rec)
			if err != nil || got != tt.ejs {
				t.Errorf("ejs: got %q, %v; want %q", got, err, tt.ejs)
			}

			got, err = gotmpl.New(quiet).Interpolate(rec)
			if err != nil || got != tt.gotmpl {
				t.Errorf("gotmpl: got %q, %v; want %q", got, err, tt.gotmpl)
			}
		})
	}
}
