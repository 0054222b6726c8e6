// Package ejs formats record DAGs as Embedded JavaScript templates.
//
// Property chains render relative to the template locals ("a.b"), calls
// render as JavaScript calls, and literals render as JSON. Operator-library
// calls render as JavaScript operators.
package ejs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/tmplkit/format"
	"github.com/ardnew/tmplkit/operator"
	"github.com/ardnew/tmplkit/trace"
)

// Name is the registered name of the backend.
const Name = "ejs"

// Locals is the name of the template's data object.
const Locals = "locals"

func init() {
	format.Register(Name, func(opts ...format.Option) format.Formatter {
		return New(opts...)
	})
}

var table = format.Table{
	operator.OpEq:     {Kind: format.Infix, Symbol: "==="},
	operator.OpNe:     {Kind: format.Infix, Symbol: "!=="},
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
	operator.OpConcat: {Kind: format.Infix, Symbol: "+", Lead: `""`},
	operator.OpSubstr: {Kind: format.Method, Symbol: "substring", Simple: true},
	operator.OpGet:    {Kind: format.Index, Simple: true},
}

// Formatter is the EJS backend.
type Formatter struct {
	cfg format.Config
}

// New returns an EJS formatter.
func New(opts ...format.Option) *Formatter {
	return &Formatter{cfg: format.MakeConfig(opts...)}
}

func (*Formatter) Name() string { return Name }

func (*Formatter) Capabilities() format.Capabilities {
	return format.Capabilities{NestedCalls: format.NestAny}
}

func (f *Formatter) expr(n trace.Node) (format.Term, error) {
	return format.NewWalker(renderer{}, f.Capabilities(), f.cfg.Logger).Walk(n)
}

// Interpolate returns "<%= expr %>".
func (f *Formatter) Interpolate(n trace.Node) (string, error) {
	t, err := f.expr(n)
	if err != nil {
		return "", err
	}

	return "<%= " + t.Text + " %>", nil
}

// Condition wraps then and otherwise in an if/else scriptlet pair.
func (f *Formatter) Condition(
	n trace.Node,
	then, otherwise format.Fragment,
) ([]format.Fragment, error) {
	t, err := f.expr(n)
	if err != nil {
		return nil, err
	}

	out := []format.Fragment{"<% if (" + t.Text + ") { %>", then}

	if otherwise != nil {
		out = append(out, "<% } else { %>", otherwise)
	}

	return append(out, "<% } %>"), nil
}

// Loop wraps body in a forEach callback binding LoopVars(level).
func (f *Formatter) Loop(n trace.Node, body format.Fragment, level int) ([]format.Fragment, error) {
	if level < 0 {
		return nil, format.ErrLoopLevel.With(slog.Int("level", level))
	}

	t, err := f.expr(n)
	if err != nil {
		return nil, err
	}

	v := f.LoopVars(level)
	head := fmt.Sprintf("<%% %s.forEach(function(%s, %s, %s) { %%>",
		t.Group(), v.Item, v.Index, v.Source)

	return []format.Fragment{head, body, "<% }) %>"}, nil
}

func (*Formatter) LoopVars(level int) format.LoopVars {
	return format.DefaultLoopVars(level)
}

type renderer struct{}

func (renderer) Name() string        { return Name }
func (renderer) Table() format.Table { return table }

func (renderer) Root(*trace.Root) (format.Term, error) {
	return format.Term{Text: Locals, Simple: true}, nil
}

func (renderer) Get(base format.Term, node trace.Node, names []string) (format.Term, error) {
	var sb strings.Builder

	if _, ok := node.(*trace.Root); ok {
		if !format.IsIdent(names[0]) {
			sb.WriteString(Locals)
		}
	} else {
		sb.WriteString(base.Group())
	}

	for _, name := range names {
		switch {
		case format.IsIdent(name) && sb.Len() == 0:
			sb.WriteString(name)
		case format.IsIdent(name):
			sb.WriteString("." + name)
		default:
			sb.WriteString("[" + key(name) + "]")
		}
	}

	return format.Term{Text: sb.String(), Simple: true}, nil
}

func (renderer) Call(fn format.Term, args []format.Term, _ *trace.Call) (format.Term, error) {
	return format.Term{Text: fn.Group() + "(" + join(args) + ")", Simple: true}, nil
}

func (renderer) Value(v any) (format.Term, error) {
	var sb strings.Builder

	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return format.Term{}, format.ErrLiteral.Wrap(err).With(
			slog.String("type", fmt.Sprintf("%T", v)))
	}

	text := strings.TrimSuffix(sb.String(), "\n")

	// An object literal in operand position would parse as a block.
	return format.Term{Text: text, Simple: !strings.HasPrefix(text, "{")}, nil
}

func (renderer) Builtin(name string, args []format.Term) (format.Term, error) {
	return format.Term{Text: name + "(" + join(args) + ")", Simple: true}, nil
}

func key(name string) string {
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
