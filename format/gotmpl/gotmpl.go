// Package gotmpl formats record DAGs as Go text/template source.
//
// Property chains render as field paths from the current value ("{{.a.b}}").
// Function values are not callable directly in templates, so generic calls
// render with the call builtin ("{{call .f .x}}"). Templates can pass a
// nested call only as the last argument of another, where it is emitted as
// a pipeline ("{{call .g .y | call .f .x}}"); a nested call in any other
// position is an error.
//
// Operators with a template builtin (eq, and, not, index, ...) use it. The
// others render as calls of functions named like the operator, which
// [FuncMap] supplies. Substr is one of them: the slice builtin indexes bytes
// and rejects out-of-range bounds.
//
// The comparison builtins reject operands of different numeric kinds
// ({{eq .a 1.0}} fails when a is an int), where replay compares them by
// value. Integers of either signedness mix freely.
package gotmpl

import (
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/ardnew/tmplkit/format"
	"github.com/ardnew/tmplkit/operator"
	"github.com/ardnew/tmplkit/trace"
)

// Name is the registered name of the backend.
const Name = "gotmpl"

func init() {
	format.Register(Name, func(opts ...format.Option) format.Formatter {
		return New(opts...)
	})
}

var table = format.Table{
	operator.OpEq:     {Kind: format.Command, Symbol: "eq"},
	operator.OpNe:     {Kind: format.Command, Symbol: "ne"},
	operator.OpGt:     {Kind: format.Command, Symbol: "gt"},
	operator.OpGe:     {Kind: format.Command, Symbol: "ge"},
	operator.OpLt:     {Kind: format.Command, Symbol: "lt"},
	operator.OpLe:     {Kind: format.Command, Symbol: "le"},
	operator.OpAnd:    {Kind: format.Command, Symbol: "and"},
	operator.OpOr:     {Kind: format.Command, Symbol: "or"},
	operator.OpNot:    {Kind: format.Command, Symbol: "not"},
	operator.OpGet:    {Kind: format.Command, Symbol: "index"},
}

// FuncMap returns the functions referenced by operators that have no
// template builtin, bound to the operator library.
func FuncMap() template.FuncMap {
	fm := template.FuncMap{}

	for op := range operator.All() {
		if _, ok := table[op]; ok {
			continue
		}

		fn, err := trace.Lookup(operator.Std, op.String())
		if err == nil {
			fm[op.String()] = fn
		}
	}

	return fm
}

// Formatter is the Go template backend.
type Formatter struct {
	cfg format.Config
}

// New returns a Go template formatter.
func New(opts ...format.Option) *Formatter {
	return &Formatter{cfg: format.MakeConfig(opts...)}
}

func (*Formatter) Name() string { return Name }

func (*Formatter) Capabilities() format.Capabilities {
	return format.Capabilities{NestedCalls: format.NestLast}
}

func (f *Formatter) expr(n trace.Node) (format.Term, error) {
	return format.NewWalker(renderer{}, f.Capabilities(), f.cfg.Logger).Walk(n)
}

// Interpolate returns "{{expr}}".
func (f *Formatter) Interpolate(n trace.Node) (string, error) {
	t, err := f.expr(n)
	if err != nil {
		return "", err
	}

	return "{{" + t.Text + "}}", nil
}

// Condition wraps then and otherwise in an if/else action.
func (f *Formatter) Condition(
	n trace.Node,
	then, otherwise format.Fragment,
) ([]format.Fragment, error) {
	t, err := f.expr(n)
	if err != nil {
		return nil, err
	}

	out := []format.Fragment{"{{if " + t.Text + "}}", then}

	if otherwise != nil {
		out = append(out, "{{else}}", otherwise)
	}

	return append(out, "{{end}}"), nil
}

// Loop binds the source to a variable and ranges over it, so the body can
// refer to the source as well as the element and index.
func (f *Formatter) Loop(n trace.Node, body format.Fragment, level int) ([]format.Fragment, error) {
	if level < 0 {
		return nil, format.ErrLoopLevel.With(slog.Int("level", level))
	}

	t, err := f.expr(n)
	if err != nil {
		return nil, err
	}

	v := f.LoopVars(level)
	head := fmt.Sprintf("{{%s := %s}}{{range %s, %s := %s}}",
		v.Source, t.Text, v.Index, v.Item, v.Source)

	return []format.Fragment{head, body, "{{end}}"}, nil
}

// LoopVars returns $value{level}, $index{level} and $source{level}.
func (*Formatter) LoopVars(level int) format.LoopVars {
	n := strconv.Itoa(level)

	return format.LoopVars{Item: "$value" + n, Index: "$index" + n, Source: "$source" + n}
}

type renderer struct{}

func (renderer) Name() string        { return Name }
func (renderer) Table() format.Table { return table }

func (renderer) Root(*trace.Root) (format.Term, error) {
	return format.Term{Text: ".", Simple: true}, nil
}

func (renderer) Get(base format.Term, node trace.Node, names []string) (format.Term, error) {
	// An empty prefix is the current value.
	var prefix string

	if _, ok := node.(*trace.Root); ok {
		// Loop variables are bound by an enclosing range.
		if strings.HasPrefix(names[0], "$") {
			prefix, names = names[0], names[1:]
		}
	} else {
		prefix = base.Group()
	}

	if slices.ContainsFunc(names, func(name string) bool { return !format.IsIdent(name) }) {
		return index(prefix, names), nil
	}

	if len(names) == 0 {
		return format.Term{Text: prefix, Simple: true}, nil
	}

	return format.Term{Text: prefix + "." + strings.Join(names, "."), Simple: true}, nil
}

// index renders names read from base with the index builtin.
func index(base string, names []string) format.Term {
	if base == "" {
		base = "."
	}

	parts := []string{"index", base}

	for _, name := range names {
		if _, err := strconv.Atoi(name); err == nil {
			parts = append(parts, name)
		} else {
			parts = append(parts, strconv.Quote(name))
		}
	}

	return format.Term{Text: strings.Join(parts, " ")}
}

func (renderer) Call(fn format.Term, args []format.Term, call *trace.Call) (format.Term, error) {
	head := []string{"call", fn.Group()}

	if n := len(args); n > 0 && call.Arg(n-1).Kind() == trace.KindCall {
		return format.Term{
			Text: args[n-1].Text + " | " + command(head, args[:n-1]),
		}, nil
	}

	return format.Term{Text: command(head, args)}, nil
}

func (renderer) Value(v any) (format.Term, error) {
	var text string

	switch v := v.(type) {
	case nil:
		text = "nil"
	case string:
		text = strconv.Quote(v)
	case bool:
		text = strconv.FormatBool(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		text = fmt.Sprint(v)
	case float32, float64:
		f := reflect.ValueOf(v).Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return format.Term{}, format.ErrLiteral.With(
				slog.String("backend", Name),
				slog.Float64("value", f),
			)
		}

		text = float(f)
	default:
		return format.Term{}, format.ErrLiteral.With(
			slog.String("backend", Name),
			slog.String("type", fmt.Sprintf("%T", v)),
		)
	}

	return format.Term{Text: text, Simple: true}, nil
}

func (renderer) Builtin(name string, args []format.Term) (format.Term, error) {
	return format.Term{Text: command([]string{name}, args), Simple: len(args) == 0}, nil
}

func command(head []string, args []format.Term) string {
	for _, a := range args {
		head = append(head, a.Group())
	}

	return strings.Join(head, " ")
}

// float renders f so that the template parser reads it back as a float.
func float(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}

	return s
}
