// Package trace records expressions over values that are not yet known.
//
// A traced expression is an ordinary Go function that receives an opaque
// [Placeholder] and navigates it with [Placeholder.Get], [Placeholder.Index]
// and [Placeholder.Call]. Each operation returns a cached child placeholder
// and remembers how it was derived. [Record] runs such a function once and
// converts the placeholder it returns into an immutable DAG of [Node] values:
//
//	rec, root, err := trace.RecordWithRoot(func(v *trace.Placeholder) any {
//		return v.Get("user").Get("name")
//	})
//
// Consecutive property reads collapse into one [*Get] node, so rec above is
// a single Get with names ["user", "name"] rooted at the [*Root] of root.
//
// The DAG can then be replayed against concrete data with [Evaluate]:
//
//	name, err := trace.Evaluate(rec, trace.Bind(root, data))
//
// or handed to a formatter that compiles it into template source text.
//
// Placeholders have no value while tracing. Printing, marshaling or
// otherwise coercing one aborts the trace with [ErrCoerce].
package trace
