// Package format defines the interface of template-language formatters and
// the machinery they share.
//
// A backend implements [Renderer] for the node types of a record DAG and
// supplies a [Table] of native operator syntax. [Walker] drives the
// rendering: it recognizes operator-library calls by identity, applies the
// backend's [Rule] for them (or degrades to a function call with a warning),
// and enforces the backend's [Capabilities] for generic calls.
//
// Backends register themselves with [Register] and are created with
// [Lookup].
package format
