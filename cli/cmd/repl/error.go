package repl

import "github.com/ardnew/tmplkit/pkg"

var (
	ErrOutOfBounds  = pkg.NewError("history index out of range")
	ErrEditDeclined = pkg.NewError("edit declined")
	ErrNoTarget     = pkg.NewError("unknown backend")
)
