package repl

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/tmplkit/log"
)

// fakeEditor installs a shell script as $EDITOR that replaces the edited
// file with body.
func fakeEditor(t *testing.T, body string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "body"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	script := filepath.Join(dir, "editor")
	src := "#!/bin/sh\ncat '" + filepath.Join(dir, "body") + "' > \"$1\"\n"

	if err := os.WriteFile(script, []byte(src), 0o700); err != nil {
		t.Fatal(err)
	}

	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", script)
}

func editCommand(ctx context.Context, data any, answer string) (*editDataCommand, *bytes.Buffer) {
	var out bytes.Buffer

	c := &editDataCommand{
		data:    data,
		ctxFunc: func() context.Context { return ctx },
		logger:  log.Discard(),
	}
	c.SetStdin(strings.NewReader(answer))
	c.SetStdout(&out)
	c.SetStderr(&out)

	return c, &out
}

func TestEditDataCommand(t *testing.T) {
	fakeEditor(t, "user:\n  name: Ada\n")

	c, _ := editCommand(t.Context(), map[string]any{"old": true}, "")
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}

	want := map[string]any{"user": map[string]any{"name": "Ada"}}
	if diff := cmp.Diff(want, c.edited); diff != "" {
		t.Errorf("edited data mismatch (-want +got):\n%s", diff)
	}

	if c.cleared {
		t.Error("cleared = true, want false")
	}
}

func TestEditDataCommand_Cleared(t *testing.T) {
	fakeEditor(t, "  \n")

	c, _ := editCommand(t.Context(), map[string]any{}, "")
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}

	if !c.cleared {
		t.Error("cleared = false, want true")
	}
}

func TestEditDataCommand_Declined(t *testing.T) {
	fakeEditor(t, "a: [1, 2\n")

	c, out := editCommand(t.Context(), map[string]any{}, "n\n")

	if err := c.Run(); !errors.Is(err, ErrEditDeclined) {
		t.Fatalf("Run() = %v, want ErrEditDeclined", err)
	}

	if !strings.Contains(out.String(), "Re-edit?") {
		t.Errorf("output = %q, want a re-edit prompt", out.String())
	}
}
