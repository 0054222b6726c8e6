package format

import "github.com/ardnew/tmplkit/pkg"

var (
	ErrInexpressible  = pkg.NewError("expression cannot be expressed in target syntax; restructure it")
	ErrUnknownBackend = pkg.NewError("unknown formatter backend")
	ErrLiteral        = pkg.NewError("literal has no target syntax")
	ErrLoopLevel      = pkg.NewError("invalid loop level")
	ErrUnknownNode    = pkg.NewError("unknown record node")
)
