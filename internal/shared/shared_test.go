package shared

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tc := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{name: "shorter than limit", input: "hello", n: 10, want: "hello"},
		{name: "exact limit", input: "hello", n: 5, want: "hello"},
		{name: "longer than limit", input: "hello world", n: 5, want: "hello"},
		{name: "multibyte runes", input: "héllo wörld", n: 7, want: "héllo w"},
		{name: "negative limit", input: "hello", n: -1, want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.n); got != tt.want {
				t.Errorf("Truncate() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("never exceeds limit", func(t *testing.T) {
		long := strings.Repeat("ab€", 400)
		if got := Truncate(long, 500); utf8.RuneCountInString(got) > 500 {
			t.Errorf("expected at most 500 runes, got %d", utf8.RuneCountInString(got))
		}
	})
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	b, err := GenerateState()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if a == "" || a == b {
		t.Errorf("expected unique non-empty states, got %q and %q", a, b)
	}
}
