package ui

import (
	"strings"
	"testing"
)

func TestPalette(t *testing.T) {
	p := NewPalette("#111111", "#222222", "#333333", "#444444", "#555555")

	t.Run("renders the text", func(t *testing.T) {
		for name, got := range map[string]string{
			"title": p.Title("Status"),
			"ok":    p.OK("done"),
			"err":   p.Err("failed"),
			"warn":  p.Warn("careful"),
			"help":  p.Help("hint"),
		} {
			want := map[string]string{"title": "Status", "ok": "done", "err": "failed", "warn": "careful", "help": "hint"}[name]
			if !strings.Contains(got, want) {
				t.Errorf("%s: expected %q in %q", name, want, got)
			}
		}
	})

	t.Run("Check", func(t *testing.T) {
		if got := p.Check(true, "gmail"); !strings.Contains(got, "✓ gmail") {
			t.Errorf("expected success mark, got %q", got)
		}
		if got := p.Check(false, "notion"); !strings.Contains(got, "✗ notion") {
			t.Errorf("expected failure mark, got %q", got)
		}
	})

	t.Run("Default", func(t *testing.T) {
		if Default() == nil || Default() != Default() {
			t.Error("expected a shared default palette")
		}
	})
}
