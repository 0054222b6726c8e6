// Package exprlang formats record DAGs as expr-lang expressions embedded in
// a minimal block syntax.
//
// Expressions compile with github.com/expr-lang/expr against the same data
// used for replay: property chains are environment paths ("a.b"), calls are
// plain calls and the operator library maps onto expr-lang operators.
// Concat has no operator and calls a function that [Options] provides.
//
// Interpolation is "${expr}". Blocks are "#{if expr}", "#{else}",
// "#{each expr as item, index, source}" and "#{end}".
package exprlang

import (
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/tmplkit/format"
	"github.com/ardnew/tmplkit/operator"
	"github.com/ardnew/tmplkit/trace"
)

// Name is the registered name of the backend.
const Name = "exprlang"

// Env is the expr-lang name of the whole environment.
const Env = "$env"

func init() {
	format.Register(Name, func(opts ...format.Option) format.Formatter {
		return New(opts...)
	})
}

var table = format.Table{
	operator.OpEq:     {Kind: format.Infix, Symbol: "=="},
	operator.OpNe:     {Kind: format.Infix, Symbol: "!="},
	operator.OpGt:     {Kind: format.Infix, Symbol: ">"},
	operator.OpGe:     {Kind: format.Infix, Symbol: ">="},
	operator.OpLt:     {Kind: format.Infix, Symbol: "<"},
	operator.OpLe:     {Kind: format.Infix, Symbol: "<="},
	operator.OpAnd:    {Kind: format.Infix, Symbol: "&&", Wrap: true},
	operator.OpOr:     {Kind: format.Infix, Symbol: "||", Wrap: true},
	operator.OpNot:    {Kind: format.Prefix, Symbol: "!"},
	operator.OpAdd:    {Kind: format.Infix, Symbol: "+"},
	operator.OpSub:    {Kind: format.Infix, Symbol: "-"},
	operator.OpMul:    {Kind: format.Infix, Symbol: "*"},
	operator.OpDiv:    {Kind: format.Infix, Symbol: "/"},
	operator.OpMod:    {Kind: format.Infix, Symbol: "%"},
	operator.OpInc:    {Kind: format.Offset, Symbol: "+"},
	operator.OpDec:    {Kind: format.Offset, Symbol: "-"},
	operator.OpSubstr: {Kind: format.Slice, Simple: true},
	operator.OpGet:    {Kind: format.Index, Simple: true},
}

// Options returns the expr-lang options that define the functions
// referenced by operators without native syntax.
func Options() []expr.Option {
	var opts []expr.Option

	for op := range operator.All() {
		if _, ok := table[op]; ok {
			continue
		}

		opts = append(opts, expr.Function(op.String(), func(params ...any) (any, error) {
			return operator.Apply(op, params...)
		}))
	}

	return opts
}

// Formatter is the expr-lang backend.
type Formatter struct {
	cfg format.Config
}

// New returns an expr-lang formatter.
func New(opts ...format.Option) *Formatter {
	return &Formatter{cfg: format.MakeConfig(opts...)}
}

func (*Formatter) Name() string { return Name }

func (*Formatter) Capabilities() format.Capabilities {
	return format.Capabilities{NestedCalls: format.NestAny}
}

// Expr returns the expr-lang source of n.
func (f *Formatter) Expr(n trace.Node) (string, error) {
	t, err := format.NewWalker(renderer{}, f.Capabilities(), f.cfg.Logger).Walk(n)

	return t.Text, err
}

func (f *Formatter) Interpolate(n trace.Node) (string, error) {
	src, err := f.Expr(n)
	if err != nil {
		return "", err
	}

	return "${" + src + "}", nil
}

func (f *Formatter) Condition(
	n trace.Node,
	then, otherwise format.Fragment,
) ([]format.Fragment, error) {
	src, err := f.Expr(n)
	if err != nil {
		return nil, err
	}

	out := []format.Fragment{"#{if " + src + "}", then}

	if otherwise != nil {
		out = append(out, "#{else}", otherwise)
	}

	return append(out, "#{end}"), nil
}

func (f *Formatter) Loop(n trace.Node, body format.Fragment, level int) ([]format.Fragment, error) {
	if level < 0 {
		return nil, format.ErrLoopLevel.With(slog.Int("level", level))
	}

	src, err := f.Expr(n)
	if err != nil {
		return nil, err
	}

	v := f.LoopVars(level)
	head := fmt.Sprintf("#{each %s as %s, %s, %s}", src, v.Item, v.Index, v.Source)

	return []format.Fragment{head, body, "#{end}"}, nil
}

func (*Formatter) LoopVars(level int) format.LoopVars {
	return format.DefaultLoopVars(level)
}

type renderer struct{}

func (renderer) Name() string        { return Name }
func (renderer) Table() format.Table { return table }

func (renderer) Root(*trace.Root) (format.Term, error) {
	return format.Term{Text: Env, Simple: true}, nil
}

func (renderer) Get(base format.Term, node trace.Node, names []string) (format.Term, error) {
	var sb strings.Builder

	if _, ok := node.(*trace.Root); ok {
		if !format.IsIdent(names[0]) {
			sb.WriteString(Env)
		}
	} else {
		sb.WriteString(base.Group())
	}

	for _, name := range names {
		switch {
		case !format.IsIdent(name):
			sb.WriteString("[" + member(name) + "]")
		case sb.Len() == 0:
			sb.WriteString(name)
		default:
			sb.WriteString("." + name)
		}
	}

	return format.Term{Text: sb.String(), Simple: true}, nil
}

func (renderer) Call(fn format.Term, args []format.Term, _ *trace.Call) (format.Term, error) {
	return format.Term{Text: fn.Group() + "(" + join(args) + ")", Simple: true}, nil
}

func (renderer) Value(v any) (format.Term, error) {
	text, err := literal(reflect.ValueOf(v))
	if err != nil {
		return format.Term{}, err
	}

	return format.Term{Text: text, Simple: true}, nil
}

func (renderer) Builtin(name string, args []format.Term) (format.Term, error) {
	return format.Term{Text: name + "(" + join(args) + ")", Simple: true}, nil
}

func literal(v reflect.Value) (string, error) {
	if !v.IsValid() {
		return "nil", nil
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return "nil", nil
		}

		return literal(v.Elem())

	case reflect.String:
		return strconv.Quote(v.String()), nil

	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil

	case reflect.Float32, reflect.Float64:
		s := strconv.FormatFloat(v.Float(), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}

		return s, nil

	case reflect.Slice, reflect.Array:
		elems := make([]string, v.Len())

		for i := range elems {
			s, err := literal(v.Index(i))
			if err != nil {
				return "", err
			}

			elems[i] = s
		}

		return "[" + strings.Join(elems, ", ") + "]", nil

	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			break
		}

		pairs := make(map[string]string, v.Len())

		iter := v.MapRange()
		for iter.Next() {
			s, err := literal(iter.Value())
			if err != nil {
				return "", err
			}

			pairs[iter.Key().String()] = s
		}

		entries := make([]string, 0, len(pairs))
		for _, k := range slices.Sorted(maps.Keys(pairs)) {
			entries = append(entries, strconv.Quote(k)+": "+pairs[k])
		}

		return "{" + strings.Join(entries, ", ") + "}", nil
	}

	return "", format.ErrLiteral.With(
		slog.String("backend", Name),
		slog.String("type", v.Type().String()),
	)
}

func member(name string) string {
	if _, err := strconv.Atoi(name); err == nil {
		return name
	}

	return strconv.Quote(name)
}

func join(args []format.Term) string {
	s := make([]string, len(args))
	for i, a := range args {
		s[i] = a.Text
	}

	return strings.Join(s, ", ")
}
