package lang

import "github.com/ardnew/tmplkit/pkg"

// Predefined errors (sentinel values).
var (
	ErrParse       = pkg.NewError("expression syntax error")
	ErrUnsupported = pkg.NewError("unsupported expression")
	ErrDocument    = pkg.NewError("invalid template document")
	ErrReadInput   = pkg.NewError("failed to read input")
	ErrDecode      = pkg.NewError("failed to decode input")
	ErrEncoding    = pkg.NewError("unknown encoding")
)
