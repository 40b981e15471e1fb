package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPatterns(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0600); err != nil {
			t.Fatal(err)
		}
	}

	got, err := expandPatterns([]string{
		filepath.Join(dir, "*.txt"),
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "missing"),
	})
	if err != nil {
		t.Fatalf("expandPatterns() error = %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "missing"),
	}
	if len(got) != len(want) {
		t.Fatalf("expandPatterns() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expandPatterns()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExpandPatterns_NoMatch(t *testing.T) {
	if _, err := expandPatterns([]string{filepath.Join(t.TempDir(), "*.nope")}); err == nil {
		t.Error("expected error for a pattern with no matches")
	}
}
