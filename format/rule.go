package format

import (
	"strings"

	"github.com/ardnew/tmplkit/operator"
)

// Term is rendered expression text. A Simple term never needs parentheses
// when used as an operand.
type Term struct {
	Text   string
	Simple bool
}

// Group returns the text of t, parenthesized unless t is simple.
func (t Term) Group() string {
	if t.Simple {
		return t.Text
	}

	return "(" + t.Text + ")"
}

func (t Term) String() string { return t.Text }

// RuleKind selects the shape of an operator's syntax.
type RuleKind uint8

const (
	// Infix joins operands with Symbol: "a + b + c". Lead, if set, is
	// emitted as the first operand.
	Infix RuleKind = iota + 1
	// Prefix emits Symbol before its single operand: "!a".
	Prefix
	// Index emits "a[b]".
	Index
	// Method emits "a.Symbol(b, c)".
	Method
	// Slice emits "a[b:c]".
	Slice
	// Command emits "Symbol a b c" with compound operands parenthesized.
	Command
	// Offset emits "a Symbol 1".
	Offset
)

// Rule is the native syntax of one operator in a target language.
type Rule struct {
	Kind   RuleKind
	Symbol string
	Lead   string
	// Wrap parenthesizes every operand of an Infix rule, simple or not.
	Wrap bool
	// Simple marks results that need no parentheses as operands.
	Simple bool
}

// Table maps operators to their native syntax. Operators missing from a
// backend's table are emitted as function calls.
type Table map[operator.Op]Rule

// Apply renders the rule over operands.
func (r Rule) Apply(operands []Term) Term {
	var text string

	switch r.Kind {
	case Infix:
		parts := make([]string, 0, len(operands)+1)

		if r.Lead != "" {
			parts = append(parts, r.Lead)
		}

		for _, t := range operands {
			if r.Wrap {
				parts = append(parts, "("+t.Text+")")
			} else {
				parts = append(parts, t.Group())
			}
		}

		text = strings.Join(parts, " "+r.Symbol+" ")

		if len(parts) == 1 {
			return Term{Text: text, Simple: r.Wrap || len(operands) == 0 || operands[0].Simple}
		}

	case Prefix:
		text = r.Symbol + operands[0].Group()

	case Index:
		text = operands[0].Group() + "[" + operands[1].Text + "]"

	case Method:
		args := make([]string, 0, len(operands)-1)
		for _, t := range operands[1:] {
			args = append(args, t.Text)
		}

		text = operands[0].Group() + "." + r.Symbol + "(" + strings.Join(args, ", ") + ")"

	case Slice:
		end := ""
		if len(operands) > 2 {
			end = operands[2].Text
		}

		text = operands[0].Group() + "[" + operands[1].Text + ":" + end + "]"

	case Command:
		parts := make([]string, 0, len(operands)+1)
		parts = append(parts, r.Symbol)

		for _, t := range operands {
			parts = append(parts, t.Group())
		}

		text = strings.Join(parts, " ")

	case Offset:
		text = operands[0].Group() + " " + r.Symbol + " 1"
	}

	return Term{Text: text, Simple: r.Simple}
}
