package trace

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// ID identifies a placeholder for the lifetime of the process.
type ID uint64

var lastID atomic.Uint64

func nextID() ID { return ID(lastID.Add(1)) }

func (id ID) String() string { return "$" + strconv.FormatUint(uint64(id), 10) }

type bridgeKind uint8

const (
	bridgeGet bridgeKind = iota + 1
	bridgeCall
)

// bridge is the edge from a placeholder back to the one it was derived from.
type bridge struct {
	kind bridgeKind
	from *Placeholder
	name string
	args []any
}

// Placeholder is an opaque stand-in for a value that is not known while an
// expression is traced. Property reads and calls on a placeholder return
// child placeholders and record the operation.
//
// Children are cached: reading the same property (or calling with the same
// arguments) twice returns the identical placeholder.
type Placeholder struct {
	id      ID
	bridge  *bridge
	session *session

	mu          sync.Mutex
	gets        map[string]*Placeholder
	calls       map[string]*Placeholder
	attached    any
	hasAttached bool
	coerced     error
}

// RootOption configures a root placeholder created by [NewRoot].
type RootOption func(*Placeholder)

// WithAttached sets the attached value of the root. Evaluation falls back to
// the attached value when a root has no binding.
func WithAttached(v any) RootOption {
	return func(p *Placeholder) {
		p.attached, p.hasAttached = v, true
	}
}

// Persistent marks a root that lives for the whole process. Its descendants
// do not retain call children. Coercing the root or a property chain read
// directly from it is not attributed to any trace.
func Persistent() RootOption {
	return func(p *Placeholder) {
		p.session = &session{persistent: true}
	}
}

// NewRoot returns a new root placeholder.
func NewRoot(opts ...RootOption) *Placeholder {
	p := &Placeholder{id: nextID(), session: &session{}}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

func newRoot(s *session) *Placeholder {
	return &Placeholder{id: nextID(), session: s}
}

// ID returns the identity of p.
func (p *Placeholder) ID() ID { return p.id }

// IsRoot reports whether p has no parent.
func (p *Placeholder) IsRoot() bool { return p.bridge == nil }

// Attached returns the attached value of a root.
func (p *Placeholder) Attached() (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.attached, p.hasAttached
}

// Attach sets the attached value of a root. Attaching to a non-root is
// invalid trace usage.
func (p *Placeholder) Attach(v any) {
	if !p.IsRoot() {
		fail(ErrNotRoot.With(slog.String("placeholder", p.id.String())))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.attached, p.hasAttached = v, true
}

// Get returns the child placeholder for reading property name.
func (p *Placeholder) Get(name string) *Placeholder {
	if name == "" {
		fail(ErrInvalidName.With(slog.String("placeholder", p.id.String())))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.gets[name]; ok {
		return c
	}

	c := &Placeholder{
		id:      nextID(),
		bridge:  &bridge{kind: bridgeGet, from: p, name: name},
		session: p.session,
	}

	if p.gets == nil {
		p.gets = make(map[string]*Placeholder)
	}

	p.gets[name] = c

	return c
}

// Index returns the child placeholder for reading element i.
func (p *Placeholder) Index(i int) *Placeholder {
	return p.Get(strconv.Itoa(i))
}

// Call returns the child placeholder for calling p with args. Placeholder
// arguments are recorded as sub-expressions; anything else is a literal.
func (p *Placeholder) Call(args ...any) *Placeholder {
	sess := p.session

	for i, arg := range args {
		if a, ok := arg.(*Placeholder); ok {
			if a == nil {
				fail(ErrNilPlaceholder.With(slog.Int("arg", i)))
			}

			if sess.persistent && !a.session.persistent {
				sess = a.session
			}

			continue
		}

		if containsPlaceholder(reflect.ValueOf(arg), 0) {
			fail(ErrNestedPlaceholder.With(
				slog.Int("arg", i),
				slog.String("type", fmt.Sprintf("%T", arg)),
			))
		}
	}

	child := func() *Placeholder {
		return &Placeholder{
			id:      nextID(),
			bridge:  &bridge{kind: bridgeCall, from: p, args: append([]any(nil), args...)},
			session: sess,
		}
	}

	key, ok := callKey(args)
	if !ok || p.session.persistent {
		return child()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.calls[key]; ok {
		return c
	}

	c := child()

	if p.calls == nil {
		p.calls = make(map[string]*Placeholder)
	}

	p.calls[key] = c

	return c
}

// Format implements fmt.Formatter. Placeholders have no value to print, so
// any formatting is invalid trace usage.
func (p *Placeholder) Format(_ fmt.State, verb rune) {
	err := p.coerce(slog.String("verb", string(verb)))

	// fmt recovers panics raised by Format, so the fault is also kept on p
	// and its session for the trace to report.
	fail(err)
}

// MarshalText implements encoding.TextMarshaler by failing.
func (p *Placeholder) MarshalText() ([]byte, error) {
	return nil, p.coerce(slog.String("as", "text"))
}

// MarshalJSON implements json.Marshaler by failing.
func (p *Placeholder) MarshalJSON() ([]byte, error) {
	return nil, p.coerce(slog.String("as", "json"))
}

// coerce marks p as coerced and reports the fault to its session. Building a
// DAG that reaches a coerced placeholder fails. Shared placeholders are not
// marked, since every later trace would inherit the fault.
func (p *Placeholder) coerce(attr slog.Attr) error {
	err := ErrCoerce.With(slog.String("placeholder", p.id.String()), attr)

	p.session.fault(err)

	if !p.shared() {
		p.mu.Lock()
		if p.coerced == nil {
			p.coerced = err
		}
		p.mu.Unlock()
	}

	return err
}

func (p *Placeholder) coercion() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.coerced
}

// shared reports whether p is a persistent root or a property chain read
// directly from one. Those placeholders are reused by unrelated traces.
func (p *Placeholder) shared() bool {
	for q := p; q.bridge != nil; q = q.bridge.from {
		if q.bridge.kind == bridgeCall {
			return false
		}
	}

	return p.session.persistent
}

// callKey returns a cache key for args, or false if some argument has no
// stable identity.
func callKey(args []any) (string, bool) {
	var sb strings.Builder

	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(',')
		}

		switch a := arg.(type) {
		case nil:
			sb.WriteString("nil")
		case *Placeholder:
			sb.WriteString(a.id.String())
		case bool, string,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
			fmt.Fprintf(&sb, "%T=%#v", a, a)
		default:
			return "", false
		}
	}

	return sb.String(), true
}

const maxNestingDepth = 64

var placeholderType = reflect.TypeFor[*Placeholder]()

// containsPlaceholder reports whether v holds a placeholder anywhere inside
// it. Containers deeper than maxNestingDepth are not inspected.
func containsPlaceholder(v reflect.Value, depth int) bool {
	if !v.IsValid() || depth > maxNestingDepth {
		return false
	}

	if v.Type() == placeholderType {
		return !v.IsNil()
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		return !v.IsNil() && containsPlaceholder(v.Elem(), depth+1)

	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if containsPlaceholder(v.Index(i), depth+1) {
				return true
			}
		}

	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if containsPlaceholder(iter.Key(), depth+1) ||
				containsPlaceholder(iter.Value(), depth+1) {
				return true
			}
		}

	case reflect.Struct:
		for i := range v.NumField() {
			if containsPlaceholder(v.Field(i), depth+1) {
				return true
			}
		}
	}

	return false
}
