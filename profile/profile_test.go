package profile

import "testing"

func TestNew(t *testing.T) {
	got := New(
		WithMode("cpu"),
		WithPath("/tmp/p"),
		WithQuiet(true),
		WithMode("heap"),
	)

	want := Config{Mode: "heap", Path: "/tmp/p", Quiet: true}
	if got != want {
		t.Errorf("New() = %+v, want %+v", got, want)
	}
}

func TestStart_NoMode(t *testing.T) {
	p := New(WithPath(t.TempDir())).Start()
	if _, ok := p.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", p)
	}

	p.Stop()
}

func TestStart_UnknownMode(t *testing.T) {
	p := New(WithMode("bogus"), WithPath(t.TempDir())).Start()
	if _, ok := p.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", p)
	}

	p.Stop()
}
