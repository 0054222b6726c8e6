package repl

import (
	"bufio"
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/tmplkit/lang"
	"github.com/ardnew/tmplkit/log"
)

const defaultEditor = "vi"

// editDataCommand implements [tea.ExecCommand] for the edit-decode-retry loop
// over the session data. It writes the data as YAML to a temp file, opens the
// user's editor, and decodes the result. On a decode error the user is
// prompted to re-edit; declining discards the edit.
type editDataCommand struct {
	data    any
	ctxFunc func() context.Context
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer

	edited  any
	cleared bool
}

func (c *editDataCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editDataCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editDataCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. It returns [ErrEditDeclined] if the user
// declines to fix a document that does not decode.
func (c *editDataCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := yaml.MarshalContext(ctx, c.data, yaml.Indent(2))
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "tmplkit-repl-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()
	f.Close()

	defer os.Remove(tmpPath)

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		if content, err = os.ReadFile(tmpPath); err != nil {
			return err
		}

		if len(bytes.TrimSpace(content)) == 0 {
			c.cleared = true

			return nil
		}

		data, decodeErr := lang.LoadData(bytes.NewReader(content))
		c.logger.TraceContext(
			ctx,
			"editor decode attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", decodeErr == nil),
		)

		if decodeErr == nil {
			c.edited = data

			return nil
		}

		fmt.Fprintf(c.stderr, "\nDecode error: %s\n", decodeErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor opens path in $VISUAL or $EDITOR, which may carry arguments, and
// waits for it to exit.
func runEditor(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, path string) error {
	argv := strings.Fields(cmp.Or(os.Getenv("VISUAL"), os.Getenv("EDITOR"), defaultEditor))
	if len(argv) == 0 {
		argv = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdin, stdout, stderr

	return cmd.Run()
}
