package cmd

import "github.com/ardnew/tmplkit/pkg"

var (
	ErrYAMLMarshal = pkg.NewError("marshal YAML")
	ErrWriteConfig = pkg.NewError("write configuration file")
	ErrFileExists  = pkg.NewError("file exists (use --force to overwrite)")
	ErrNotFound    = pkg.NewError("input not found in search path")
	ErrNoContext   = pkg.NewError("command context unavailable")
)
