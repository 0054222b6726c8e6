// Package statement builds templates from traced expressions and renders
// them in one of two modes.
//
// A tree of nodes ([Text], [Interpolate], [If], [ForEach], [Group]) is
// rendered by [Render] either by replaying each expression against a value
// ([WithValue]), producing final output, or by compiling each expression to
// template source with a [format.Formatter] ([WithFormatter]), producing a
// template for another engine:
//
//	page := statement.Group(
//		statement.Text("<ul>"),
//		statement.ForEach(
//			func(v *trace.Placeholder) any { return v.Get("users") },
//			func(user, _, _ *trace.Placeholder) statement.Node {
//				return statement.Group(
//					statement.Text("<li>"),
//					statement.Interpolate(func(*trace.Placeholder) any {
//						return user.Get("name")
//					}),
//					statement.Text("</li>"),
//				)
//			}),
//		statement.Text("</ul>"),
//	)
//
// Each expression is recorded once, the first time it is rendered, and the
// record is reused for every later render and loop iteration.
package statement
