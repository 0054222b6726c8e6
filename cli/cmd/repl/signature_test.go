package repl

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{name: "no_call", input: "greeting", cursor: 8},
		{name: "first_arg", input: "add(", cursor: 4, wantName: "add", wantInCall: true},
		{name: "first_arg_value", input: "add(1", cursor: 5, wantName: "add", wantInCall: true},
		{name: "second_arg", input: "add(1,", cursor: 6, wantName: "add", wantIndex: 1, wantInCall: true},
		{name: "member_callee", input: "user.Greet(", cursor: 11, wantName: "user.Greet", wantInCall: true},
		{name: "member_callee_second", input: "user.Greet(a, ", cursor: 14, wantName: "user.Greet", wantIndex: 1, wantInCall: true},
		{name: "nested_closed", input: "add(mul(2, 3),", cursor: 14, wantName: "add", wantIndex: 1, wantInCall: true},
		{name: "inside_nested", input: "add(mul(2, 3), 4)", cursor: 8, wantName: "mul", wantInCall: true},
		{name: "array_literal_commas", input: "f([1, 2], ", cursor: 10, wantName: "f", wantIndex: 1, wantInCall: true},
		{name: "grouping_paren", input: "(a + ", cursor: 5},
		{name: "after_operator", input: "a + f(", cursor: 6, wantName: "f", wantInCall: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)

			if got.name != tt.wantName {
				t.Errorf("name = %q, want %q", got.name, tt.wantName)
			}

			if got.argIndex != tt.wantIndex {
				t.Errorf("argIndex = %d, want %d", got.argIndex, tt.wantIndex)
			}

			if got.inCall != tt.wantInCall {
				t.Errorf("inCall = %v, want %v", got.inCall, tt.wantInCall)
			}
		})
	}
}

func TestGetSignature(t *testing.T) {
	data := map[string]any{
		"greeting": "hello",
		"add":      func(x, y int) int { return x + y },
		"join":     func(sep string, parts ...string) string { return strings.Join(parts, sep) },
		"acct":     account{},
		"nested": map[string]any{
			"scale": func(v float64, by []float64) float64 { return v },
		},
	}

	tests := []struct {
		name          string
		funcName      string
		wantSignature string
		wantParams    []string
	}{
		{
			name:          "func",
			funcName:      "add",
			wantSignature: "add(int, int)",
			wantParams:    []string{"int", "int"},
		},
		{
			name:          "variadic",
			funcName:      "join",
			wantSignature: "join(string, ...string)",
			wantParams:    []string{"string", "...string"},
		},
		{
			name:          "nested",
			funcName:      "nested.scale",
			wantSignature: "nested.scale(float, []float)",
			wantParams:    []string{"float", "[]float"},
		},
		{
			name:          "method",
			funcName:      "acct.Deposit",
			wantSignature: "acct.Deposit(int)",
			wantParams:    []string{"int"},
		},
		{name: "not_a_func", funcName: "greeting"},
		{name: "missing", funcName: "doesnotexist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSig, gotParams := getSignature(data, tt.funcName)

			if gotSig != tt.wantSignature {
				t.Errorf("signature = %q, want %q", gotSig, tt.wantSignature)
			}

			if diff := cmp.Diff(tt.wantParams, gotParams); diff != "" {
				t.Errorf("params mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name       string
		signature  string
		params     []string
		currentArg int
	}{
		{name: "no_params", signature: "now()"},
		{name: "first", signature: "add(int, int)", params: []string{"int", "int"}},
		{name: "second", signature: "add(int, int)", params: []string{"int", "int"}, currentArg: 1},
		{name: "variadic_tail", signature: "join(...string)", params: []string{"...string"}, currentArg: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSignatureHint(tt.signature, tt.params, tt.currentArg)

			name, _, _ := strings.Cut(tt.signature, "(")
			if !strings.Contains(got, name) {
				t.Errorf("renderSignatureHint(%q) = %q, missing %q", tt.signature, got, name)
			}
		})
	}
}
