package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tmplkit/log"
	"github.com/ardnew/tmplkit/profile"
)

const configIndent = 2

// skipFlags are prefixes of flag names that never belong in the
// configuration file.
var skipFlags = []string{"help", "version", profile.Tag}

// Init writes the configuration file from the current flag values, so that
// flags given on the command line become the new defaults.
type Init struct {
	Force bool `help:"Overwrite an existing configuration file"            short:"f"`
	Print bool `help:"Write the configuration to stdout instead of the file" short:"p"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) error {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrNoContext
	}

	data, err := yaml.MarshalContext(ctx,
		map[string]any{ConfigIdentifier: configValues(ktx)},
		yaml.Indent(configIndent),
	)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	if i.Print {
		_, err := stdout(ctx).Write(data)

		return err
	}

	path := ktx.Model.Vars()[ConfigIdentifier]
	if path == "" {
		return ErrWriteConfig.With(slog.String("reason", "no configuration path"))
	}

	if err := i.write(path, data); err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	log.DebugContext(ctx, "wrote configuration", slog.String("path", path))

	return nil
}

func (i *Init) write(path string, data []byte) error {
	_, err := os.Stat(path)

	switch {
	case err == nil && !i.Force:
		return ErrFileExists
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// configValues returns the current value of every configurable flag, keyed
// by flag name. Unset strings and empty lists are omitted.
func configValues(ktx *kong.Context) map[string]any {
	values := make(map[string]any)

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || skipFlag(flag.Name) {
			continue
		}

		if v, ok := configValue(ktx.FlagValue(flag)); ok {
			values[flag.Name] = v
		}
	}

	return values
}

func skipFlag(name string) bool {
	for _, prefix := range skipFlags {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}

func configValue(val any) (any, bool) {
	switch v := val.(type) {
	case nil:
		return nil, false

	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return v, true

	case string:
		return v, v != ""

	case []string:
		return v, len(v) > 0

	default:
		s := fmt.Sprint(v)

		return s, s != ""
	}
}
