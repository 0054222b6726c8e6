package trace

import (
	"fmt"
	"log/slog"
	"math"
	"reflect"
)

// Func is the fastest callable form for evaluation. Other functions are
// called by reflection.
type Func func(args ...any) (any, error)

var errorType = reflect.TypeFor[error]()

// Invoke calls fn with args.
//
// Any Go function is callable. Arguments must be assignable to the parameter
// types; numeric arguments are converted between numeric types unless a
// float would lose its fraction or sign as an integer, and nil is
// accepted for nilable parameters. Supported results are (), (T), (error)
// and (T, error). A non-nil error result is wrapped in [ErrCallFailed]; a
// panic in fn is returned as [ErrCallPanic].
func Invoke(fn any, args ...any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, ErrCallPanic.With(
				slog.String("func", fmt.Sprintf("%T", fn)),
				slog.Any("panic", r),
			)
		}
	}()

	switch f := fn.(type) {
	case Func:
		return wrapResult(f(args...))
	case func(...any) (any, error):
		return wrapResult(f(args...))
	case func(...any) any:
		return f(args...), nil
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, ErrNotCallable.With(slog.String("type", fmt.Sprintf("%T", fn)))
	}

	t := rv.Type()
	if !validResults(t) {
		return nil, ErrNotCallable.With(
			slog.String("type", t.String()),
			slog.String("reason", "unsupported results"),
		)
	}

	in, err := callArgs(t, args)
	if err != nil {
		return nil, err
	}

	return results(rv.Call(in))
}

func wrapResult(v any, err error) (any, error) {
	if err != nil {
		return nil, ErrCallFailed.Wrap(err)
	}

	return v, nil
}

func validResults(t reflect.Type) bool {
	switch t.NumOut() {
	case 0, 1:
		return true
	case 2:
		return t.Out(1) == errorType
	default:
		return false
	}
}

func results(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type() == errorType {
			if out[0].IsNil() {
				return nil, nil
			}

			return nil, ErrCallFailed.Wrap(out[0].Interface().(error))
		}

		return out[0].Interface(), nil
	default:
		if !out[1].IsNil() {
			return nil, ErrCallFailed.Wrap(out[1].Interface().(error))
		}

		return out[0].Interface(), nil
	}
}

func callArgs(t reflect.Type, args []any) ([]reflect.Value, error) {
	n := t.NumIn()

	if t.IsVariadic() {
		if len(args) < n-1 {
			return nil, arityError(t, len(args))
		}
	} else if len(args) != n {
		return nil, arityError(t, len(args))
	}

	in := make([]reflect.Value, len(args))

	for i, arg := range args {
		var want reflect.Type
		if t.IsVariadic() && i >= n-1 {
			want = t.In(n - 1).Elem()
		} else {
			want = t.In(i)
		}

		v, ok := convert(arg, want)
		if !ok {
			return nil, ErrArgument.With(
				slog.Int("arg", i),
				slog.String("want", want.String()),
				slog.String("got", fmt.Sprintf("%T", arg)),
			)
		}

		in[i] = v
	}

	return in, nil
}

func arityError(t reflect.Type, got int) error {
	return ErrArgument.With(
		slog.String("func", t.String()),
		slog.Int("args", got),
	)
}

func convert(arg any, want reflect.Type) (reflect.Value, bool) {
	if arg == nil {
		switch want.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map,
			reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(want), true
		default:
			return reflect.Value{}, false
		}
	}

	v := reflect.ValueOf(arg)

	if v.Type().AssignableTo(want) {
		return v, true
	}

	if isNumeric(v.Kind()) && isNumeric(want.Kind()) {
		if isFloat(v.Kind()) && !isFloat(want.Kind()) && !integral(v.Float(), want.Kind()) {
			return reflect.Value{}, false
		}

		return v.Convert(want), true
	}

	if v.Kind() == want.Kind() && v.Type().ConvertibleTo(want) {
		return v.Convert(want), true
	}

	return reflect.Value{}, false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// integral reports whether f converts to an integer of kind k without loss.
func integral(f float64, k reflect.Kind) bool {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return false
	}

	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return f >= 0
	default:
		return true
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
