// Package testkit holds small helpers shared by the corpus package tests
package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// recovered runs fn and returns whatever it panicked with (nil if it returned normally)
func recovered(fn func()) (v any) {
	defer func() { v = recover() }()
	fn()
	return nil
}

// MustPanic fails the test unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	if recovered(fn) == nil {
		t.Fatal("expected a panic")
	}
}

// MustNotPanic fails the test if fn panics
func MustNotPanic(t *testing.T, fn func()) {
	t.Helper()
	if v := recovered(fn); v != nil {
		t.Fatalf("panicked: %v", v)
	}
}

// MustContain fails unless s contains sub, printing s in full
func MustContain(t *testing.T, s, sub string) {
	t.Helper()
	if strings.Contains(s, sub) {
		return
	}
	t.Fatalf("missing %q in:\n%s", sub, s)
}

// WriteFile creates root/rel (slash separated) with its parent dirs and returns the full path
func WriteFile(t *testing.T, root, rel string, b []byte) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(p, b, 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return p
}

// Tree writes every rel->content entry under a fresh temp dir and returns it
func Tree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		WriteFile(t, root, rel, []byte(body))
	}
	return root
}

// Swap replaces *target for the rest of the test (seams such as constructors held in package vars)
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	prev := *target
	*target = replacement
	t.Cleanup(func() { *target = prev })
}
