package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
)

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type searchPathKey struct{}

// WithSearchPath returns a new context.Context carrying the directories that
// relative input paths are resolved against, in order.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

func searchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}

// stdout returns the writer commands print results to.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// Resolve returns the path of the input named name. Absolute paths and
// paths that exist relative to the working directory are returned as is;
// other relative paths are looked up in each directory of the search path.
func Resolve(ctx context.Context, name string) (string, error) {
	if name == stdinSource || filepath.IsAbs(name) {
		return name, nil
	}

	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	for _, dir := range searchPathFrom(ctx) {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", ErrNotFound.With(
		slog.String("name", name),
		slog.Any("path", searchPathFrom(ctx)),
	)
}

// open resolves and opens the input named name. "-" reads stdin.
func open(ctx context.Context, name string) (io.ReadCloser, error) {
	path, err := Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	if path == stdinSource {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(path)
}
