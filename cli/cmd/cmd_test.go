package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tmplkit/format"
	"github.com/ardnew/tmplkit/lang"
)

type testCLI struct {
	Verbose bool   `help:"verbose" short:"v"`
	Name    string `help:"name"`

	Init   Init   `cmd:""`
	Fmt    Fmt    `cmd:""`
	Eval   Eval   `cmd:""`
	Render Render `cmd:""`
}

// run parses args against a test CLI and runs the selected command.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	var (
		cli testCLI
		out bytes.Buffer
	)

	parser, err := kong.New(&cli,
		kong.Vars{
			ConfigIdentifier:  filepath.Join(dir, "config.yaml"),
			CacheIdentifier:   dir,
			TargetsIdentifier: strings.Join(format.Names(), ","),
		},
		kong.Writers(&out, &out),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithSearchPath(WithContext(t.Context(), ktx), []string{dir})
	ktx.BindTo(ctx, (*context.Context)(nil))

	err = ktx.Run()

	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestFmt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "ejs",
			args: []string{"fmt", "ejs", "user.name", "a + 1"},
			want: "<%= user.name %>\n<%= a + 1 %>\n",
		},
		{
			name: "gotmpl",
			args: []string{"fmt", "gotmpl", "user.name"},
			want: "{{.user.name}}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := run(t, t.TempDir(), tt.args...)
			if err != nil {
				t.Fatal(err)
			}

			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFmt_PartialFailure(t *testing.T) {
	t.Parallel()

	got, err := run(t, t.TempDir(), "fmt", "ejs", "a", "a ? b : c", "b")
	if !errors.Is(err, lang.ErrUnsupported) {
		t.Fatalf("error = %v, want %v", err, lang.ErrUnsupported)
	}

	if want := "<%= a %>\n<%= b %>\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFmtRecord(t *testing.T) {
	t.Parallel()

	got, err := run(t, t.TempDir(), "fmt", "record", "--as", "json", "--indent", "0", "a.b")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(got, `"kind":"get"`) {
		t.Errorf("got %q, want a get node", got)
	}
}

func TestEval(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "data.yaml", "user:\n  name: Ada\nitems: [1, 2, 3]\n")

	tests := []struct {
		name string
		expr string
		want string
	}{
		{name: "member", expr: "user.name", want: "Ada\n"},
		{name: "arith", expr: "items[1] * 10", want: "20\n"},
		{name: "concat", expr: `"hi " + user.name`, want: "hi Ada\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := run(t, dir, "eval", "-d", "data.yaml", tt.expr)
			if err != nil {
				t.Fatal(err)
			}

			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEval_NotFound(t *testing.T) {
	t.Parallel()

	_, err := run(t, t.TempDir(), "eval", "-d", "missing.yaml", "a")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want %v", err, ErrNotFound)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "page.yaml", `
- text: "<p>"
- each: names
  as: n
  do:
    - expr: n
- text: "</p>"
`)
	writeFile(t, dir, "data.json", `{"names": ["a", "b"]}`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "replay",
			args: []string{"render", "page.yaml", "-d", "data.json"},
			want: "<p>ab</p>",
		},
		{
			name: "gotmpl",
			args: []string{"render", "page.yaml", "-t", "gotmpl"},
			want: "<p>{{$source0 := .names}}{{range $index0, $value0 := $source0}}{{$value0}}{{end}}</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := run(t, dir, tt.args...)
			if err != nil {
				t.Fatal(err)
			}

			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		setup   func(t *testing.T, path string)
		wantErr error
	}{
		{
			name: "create_new_config",
			args: []string{"-v", "--name", "x", "init"},
		},
		{
			name: "overwrite_existing_with_force",
			args: []string{"--name", "x", "init", "-f"},
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "fail_without_force",
			args: []string{"init"},
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: ErrFileExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			confPath := filepath.Join(dir, "config.yaml")

			if tt.setup != nil {
				tt.setup(t, confPath)
			}

			_, err := run(t, dir, tt.args...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatal(err)
			}

			data, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var conf map[string]map[string]any
			if err := yaml.Unmarshal(data, &conf); err != nil {
				t.Fatalf("unmarshal %q: %v", data, err)
			}

			if got := conf[ConfigIdentifier]["name"]; got != "x" {
				t.Errorf("name = %v, want x", got)
			}

			if _, ok := conf[ConfigIdentifier]["help"]; ok {
				t.Error("help flag written to config")
			}
		})
	}
}

func TestInit_Print(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	out, err := run(t, dir, "--name", "y", "init", "--print")
	if err != nil {
		t.Fatal(err)
	}

	var conf map[string]map[string]any
	if err := yaml.Unmarshal([]byte(out), &conf); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}

	if got := conf[ConfigIdentifier]["name"]; got != "y" {
		t.Errorf("name = %v, want y", got)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("config file written with --print: %v", err)
	}
}
