package format

import (
	"strconv"

	"github.com/ardnew/tmplkit/trace"
)

// Fragment is a piece of formatter output. Strings are template source text;
// anything else is content supplied by the caller (such as the body of a
// loop) and is passed through in place.
type Fragment = any

// LoopVars names the variables bound by one loop level.
type LoopVars struct {
	Item   string
	Index  string
	Source string
}

// DefaultLoopVars returns item{level}, index{level} and source{level}.
func DefaultLoopVars(level int) LoopVars {
	n := strconv.Itoa(level)

	return LoopVars{Item: "item" + n, Index: "index" + n, Source: "source" + n}
}

// NestPolicy describes where a generic call may take another call as an
// argument.
type NestPolicy uint8

const (
	// NestAny allows call arguments in any position.
	NestAny NestPolicy = iota
	// NestLast allows a call argument only in the last position.
	NestLast
)

func (p NestPolicy) String() string {
	switch p {
	case NestAny:
		return "any"
	case NestLast:
		return "last"
	default:
		return "NestPolicy(" + strconv.Itoa(int(p)) + ")"
	}
}

// Capabilities describes what a target syntax can express.
type Capabilities struct {
	NestedCalls NestPolicy
}

// Formatter compiles record DAGs into the source text of a template
// language.
//
// Formatters are stateless; level only selects unique loop variable names
// for nested loops.
type Formatter interface {
	Name() string
	Capabilities() Capabilities

	// Interpolate returns the text that outputs the value of n.
	Interpolate(n trace.Node) (string, error)
	// Condition returns the fragments that output then if n is truthy and
	// otherwise (which may be nil) if it is not.
	Condition(n trace.Node, then, otherwise Fragment) ([]Fragment, error)
	// Loop returns the fragments that output body once per element of n,
	// with the variables of LoopVars(level) bound.
	Loop(n trace.Node, body Fragment, level int) ([]Fragment, error)
	// LoopVars returns the variable names bound by a loop at level.
	LoopVars(level int) LoopVars
}
