package repl

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/ardnew/tmplkit/format"
	"github.com/ardnew/tmplkit/lang"
	"github.com/ardnew/tmplkit/log"
	"github.com/ardnew/tmplkit/trace"
)

// Input configures a REPL session.
type Input struct {
	Target string // initial backend
	Data   any
	Replay bool // also evaluate each expression against Data
}

// session compiles expressions with the selected backend and, when replay
// is enabled, evaluates them against the loaded data.
type session struct {
	target    string
	formatter format.Formatter
	data      any
	replay    bool
	logger    log.Logger
}

func newSession(in Input, logger log.Logger) (session, error) {
	s := session{data: in.Data, replay: in.Replay, logger: logger}
	if err := s.setTarget(in.Target); err != nil {
		return session{}, err
	}

	return s, nil
}

func (s *session) setTarget(name string) error {
	if !slices.Contains(format.Names(), name) {
		return ErrNoTarget.With(
			slog.String("target", name),
			slog.String("known", strings.Join(format.Names(), ",")),
		)
	}

	f, err := format.Lookup(name, format.WithLogger(s.logger))
	if err != nil {
		return err
	}

	s.target, s.formatter = name, f

	return nil
}

func (s *session) setData(data any) {
	s.data, s.replay = data, true
}

// evalResult is the outcome of one expression.
type evalResult struct {
	source string // template source from the backend
	value  any    // replayed value, if replay is enabled
	err    error  // replay error; the source is still valid
}

func (s *session) eval(src string) (evalResult, error) {
	x, err := lang.Parse(src)
	if err != nil {
		return evalResult{}, err
	}

	rec, root, err := trace.RecordWithRoot(x.Trace(nil))
	if err != nil {
		return evalResult{}, err
	}

	var r evalResult

	if r.source, err = s.formatter.Interpolate(rec); err != nil {
		return evalResult{}, err
	}

	if s.replay {
		r.value, r.err = trace.Evaluate(rec, trace.Bind(root, s.data))
	}

	return r, nil
}

// list describes each top-level member of the data.
func (s *session) list() string {
	names, callable := members(s.data)

	var b strings.Builder

	for _, name := range names {
		v, _ := resolve(s.data, name)

		preview := formatPreview(v)
		if callable[name] {
			sig, _ := getSignature(s.data, name)
			preview = sig
		}

		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview))
	}

	return b.String()
}

// formatPreview returns a short description of v.
func formatPreview(v any) string {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Invalid:
		return "<nil>"
	case reflect.Map:
		return fmt.Sprintf("{ %d items }", rv.Len())
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("[ %d items ]", rv.Len())
	}

	src := fmt.Sprint(v)
	if len(src) > 40 {
		return src[:37] + "..."
	}

	return src
}
