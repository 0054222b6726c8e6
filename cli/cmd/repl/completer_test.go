package repl

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWordBounds_ExprOperators(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dot_separated", "bar.baz", 7, "baz", 4, 7},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_minus", "a-fo", 4, "fo", 2, 4},
		{"after_paren", "double(fo", 9, "fo", 7, 9},
		{"after_comma", "add(a, fo", 9, "fo", 7, 9},
		{"after_comparison", "a > fo", 6, "fo", 4, 6},
		{"after_bracket", "items[fo", 8, "fo", 6, 8},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"cursor_past_end", "foo", 10, "foo", 0, 3},
		{"empty_after_dot", "user.", 5, "", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath_WithOperators(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "bar.baz.", 8, "bar.baz"},
		{"after_operator", "foo + bar.baz.", 14, "bar.baz"},
		{"after_paren", "(bar.baz.", 9, "bar.baz"},
		{"no_chain", "a + ", 4, ""},
		{"deep_chain", "a.b.c.", 6, "a.b.c"},
		{"after_equals", "x == a.b.", 9, "a.b"},
		{"after_minus", "x-a.", 4, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parentPath(tt.input, tt.wordStart)
			if got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

type account struct {
	Owner   string
	Balance int
	secret  string
}

func (account) Deposit(n int) int { return n }

func TestMembers(t *testing.T) {
	data := map[string]any{
		"user":  map[string]any{"name": "Ada", "age": 36},
		"greet": func(s string) string { return "hi " + s },
		"acct":  account{Owner: "Ada"},
		"tags":  []any{"a", "b"},
	}

	tests := []struct {
		name         string
		path         string
		wantNames    []string
		wantCallable []string
	}{
		{
			name:         "top_level",
			path:         "",
			wantNames:    []string{"acct", "greet", "tags", "user"},
			wantCallable: []string{"greet"},
		},
		{
			name:      "nested_map",
			path:      "user",
			wantNames: []string{"age", "name"},
		},
		{
			name:         "struct",
			path:         "acct",
			wantNames:    []string{"Balance", "Deposit", "Owner"},
			wantCallable: []string{"Deposit"},
		},
		{
			name: "slice",
			path: "tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := resolve(data, tt.path)
			if !ok {
				t.Fatalf("resolve(%q) failed", tt.path)
			}

			names, callable := members(v)
			if diff := cmp.Diff(tt.wantNames, names); diff != "" {
				t.Errorf("names mismatch (-want +got):\n%s", diff)
			}

			var gotCallable []string
			for name, ok := range callable {
				if ok {
					gotCallable = append(gotCallable, name)
				}
			}

			slices.Sort(gotCallable)

			if diff := cmp.Diff(tt.wantCallable, gotCallable); diff != "" {
				t.Errorf("callable mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_Missing(t *testing.T) {
	if _, ok := resolve(nil, "a.b"); ok {
		t.Error("resolve on nil data succeeded")
	}
}
