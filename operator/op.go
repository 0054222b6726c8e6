package operator

import (
	"iter"
	"strconv"
)

// Op identifies an operation of the library.
type Op uint8

const (
	OpEq Op = iota + 1
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	OpAnd
	OpOr
	OpNot
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpInc
	OpDec
	OpConcat
	OpSubstr
	OpGet

	opEnd
)

var opInfo = [opEnd]struct {
	name     string
	min, max int
}{
	OpEq:     {"Eq", 2, 2},
	OpNe:     {"Ne", 2, 2},
	OpGt:     {"Gt", 2, 2},
	OpGe:     {"Ge", 2, 2},
	OpLt:     {"Lt", 2, 2},
	OpLe:     {"Le", 2, 2},
	OpAnd:    {"And", 1, -1},
	OpOr:     {"Or", 1, -1},
	OpNot:    {"Not", 1, 1},
	OpAdd:    {"Add", 1, -1},
	OpSub:    {"Sub", 1, -1},
	OpMul:    {"Mul", 1, -1},
	OpDiv:    {"Div", 2, 2},
	OpMod:    {"Mod", 2, 2},
	OpInc:    {"Inc", 1, 1},
	OpDec:    {"Dec", 1, 1},
	OpConcat: {"Concat", 0, -1},
	OpSubstr: {"Substr", 2, 3},
	OpGet:    {"Get", 2, 2},
}

// Valid reports whether op is a defined operation.
func (op Op) Valid() bool { return op > 0 && op < opEnd }

// String returns the name of op, which is also the name of its
// implementation on [Impl].
func (op Op) String() string {
	if !op.Valid() {
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}

	return opInfo[op].name
}

// Arity returns the minimum and maximum number of operands. max is -1 for
// n-ary operations.
func (op Op) Arity() (minArgs, maxArgs int) {
	if !op.Valid() {
		return 0, 0
	}

	return opInfo[op].min, opInfo[op].max
}

// Accepts reports whether op can be applied to n operands.
func (op Op) Accepts(n int) bool {
	lo, hi := op.Arity()

	return op.Valid() && n >= lo && (hi < 0 || n <= hi)
}

// Lookup returns the operation with the given name.
func Lookup(name string) (Op, bool) {
	for op := range All() {
		if opInfo[op].name == name {
			return op, true
		}
	}

	return 0, false
}

// All returns an iterator over every operation in declaration order.
func All() iter.Seq[Op] {
	return func(yield func(Op) bool) {
		for op := OpEq; op < opEnd; op++ {
			if !yield(op) {
				return
			}
		}
	}
}
