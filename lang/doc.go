// Package lang is the text front end of tmplkit.
//
// Expressions are written in the subset of expr-lang that has a record
// equivalent and parsed with the expr-lang parser:
//
//	user.name
//	items[0].price * qty
//	greet(user.first, "!")
//	title[0:10]
//	count > 9 && !hidden
//
// [Parse] validates the syntax tree once; [Expr.Trace] turns it into a
// [trace.Expr] that rebuilds the expression against a root placeholder.
// Operators become calls of the operator library, so every backend can
// render them in its own syntax.
//
// # Documents
//
// [LoadDocument] reads a YAML template document into a statement tree. Loop
// variables declared with "as" and "index" are visible to the expressions
// nested under the loop.
//
// # Data
//
// [LoadData] decodes YAML or JSON render data. [WriteRecord] dumps a record
// DAG as YAML or JSON for inspection.
package lang
