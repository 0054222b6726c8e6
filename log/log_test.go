package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func decode(t *testing.T, line string) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", line, err)
	}

	return m
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		log   func(Logger)
		want  bool
	}{
		{"trace_at_trace", LevelTrace, func(l Logger) { l.Trace("m") }, true},
		{"trace_at_debug", LevelDebug, func(l Logger) { l.Trace("m") }, false},
		{"debug_at_info", LevelInfo, func(l Logger) { l.Debug("m") }, false},
		{"info_at_info", LevelInfo, func(l Logger) { l.Info("m") }, true},
		{"warn_at_error", LevelError, func(l Logger) { l.Warn("m") }, false},
		{"error_at_warn", LevelWarn, func(l Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, WithLevel(tt.level), WithPretty(false)))

			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.want, buf.String())
			}
		})
	}
}

func TestLogger_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithLevel(LevelTrace), WithPretty(false)).Trace("deep")

	if got := decode(t, buf.String())["level"]; got != "TRACE" {
		t.Errorf("level = %v, want TRACE", got)
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithPretty(false))
	child := base.With(slog.String("component", "format"))
	child.Info("hello", slog.Int("n", 2))

	m := decode(t, buf.String())
	if m["component"] != "format" || m["n"] != float64(2) {
		t.Errorf("record = %v", m)
	}

	buf.Reset()
	base.Info("plain")

	if _, ok := decode(t, buf.String())["component"]; ok {
		t.Error("With modified the parent logger")
	}
}

func TestLogger_PrettyKeepsAttrs(t *testing.T) {
	for _, format := range []Format{FormatText, FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer

			l := Make(&buf, WithFormat(format), WithTimeLayout("none"))
			l.With(slog.String("backend", "ejs")).Warn("degraded")

			out := buf.String()
			if !strings.Contains(out, "backend") || !strings.Contains(out, "ejs") {
				t.Errorf("output lost attribute: %q", out)
			}

			if strings.Contains(out, "time") {
				t.Errorf("output has time with layout none: %q", out)
			}
		})
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelError), WithPretty(false))
	w := l.Wrap(WithLevel(LevelDebug))

	if l.Level() != LevelError || w.Level() != LevelDebug {
		t.Errorf("levels = %v, %v", l.Level(), w.Level())
	}

	w.Debug("visible")

	if buf.Len() == 0 {
		t.Error("wrapped logger did not write to the inherited output")
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Info("ignored")
	l.With(slog.String("a", "b")).Error("ignored")

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Error("zero logger reports non-default settings")
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true), WithPretty(false)).Info("where")

	src, ok := decode(t, buf.String())["source"].(map[string]any)
	if !ok {
		t.Fatalf("missing source in %q", buf.String())
	}

	if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("source file = %q, want log_test.go", file)
	}
}

func TestPackage_Default(t *testing.T) {
	original := Default()
	defer func() {
		defaultMu.Lock()
		defaultLog = original
		defaultMu.Unlock()
	}()

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelDebug), WithPretty(false))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			m := decode(t, buf.String())
			if m["level"] != tt.level || m["key"] != "value" {
				t.Errorf("record = %v", m)
			}
		})
	}
}
