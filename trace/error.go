package trace

import "github.com/ardnew/tmplkit/pkg"

// Invalid trace usage. These abort the trace that caused them.
var (
	ErrCoerce            = pkg.NewError("placeholder coerced to a value")
	ErrInvalidName       = pkg.NewError("invalid property name")
	ErrNilPlaceholder    = pkg.NewError("nil placeholder")
	ErrNestedPlaceholder = pkg.NewError("placeholder nested inside a literal")
	ErrNotRoot           = pkg.NewError("operation requires a root placeholder")
)

// Evaluation failures.
var (
	ErrUnboundRoot = pkg.NewError("missing trace-root binding")
	ErrLookup      = pkg.NewError("property lookup failed")
	ErrNotCallable = pkg.NewError("value is not callable")
	ErrArgument    = pkg.NewError("invalid call arguments")
	ErrCallPanic   = pkg.NewError("call panicked")
	ErrCallFailed  = pkg.NewError("call failed")
)

// fault is the panic value used to abort a trace.
type fault struct{ err error }

func fail(err error) { panic(fault{err: err}) }

// Fail aborts the trace in progress with err. It must be called from inside
// an [Expr] run by [Record] or [RecordWithRoot], which return err.
func Fail(err error) { fail(err) }

// catch recovers a fault raised by the current goroutine and stores its error
// in *err. Any other panic is re-raised.
func catch(err *error) {
	r := recover()
	if r == nil {
		return
	}

	f, ok := r.(fault)
	if !ok {
		panic(r)
	}

	*err = f.err
}

// Guard runs fn and returns the error of any trace failure it raises, such
// as an invalid property name used while building placeholders outside of
// [Record].
func Guard(fn func()) (err error) {
	defer catch(&err)

	fn()

	return nil
}
