// Package operator is a fixed library of pure operations (comparison,
// boolean logic, arithmetic, string and indexing) that can be used inside
// traced expressions.
//
// The traceable functions ([Eq], [And], [Substr], ...) record a call through
// the operator [Root], whose attached value is [Std]. Evaluating the record
// runs the real implementation; formatters use [Recognize] to emit native
// operator syntax for the target language instead of a function call.
//
//	rec, _ := trace.Record(func(v *trace.Placeholder) any {
//		return operator.Gt(v.Get("age"), 17)
//	})
//
// Outside of tracing, call the implementations directly on [Std] or through
// [Apply].
package operator
