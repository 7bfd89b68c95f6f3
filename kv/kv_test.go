package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}
	if err := s.Set(ctx, "a/b c", []byte("one")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "a/b c", []byte("two")); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}
	got, err := s.Get(ctx, "a/b c")
	if err != nil || string(got) != "two" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := s.Remove(ctx, "a/b c"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := s.Remove(ctx, "a/b c"); err != nil {
		t.Fatalf("second Remove failed: %v", err)
	}
	if _, err := s.Get(ctx, "a/b c"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Remove err = %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := s.Set(cancelled, "k", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Set with cancelled context err = %v", err)
	}
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	buf := []byte("abc")
	s.Set(ctx, "k", buf)
	buf[0] = 'x'
	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", got)
	}
}

func TestDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s, err := NewDir(dir)
	if err != nil {
		t.Fatalf("NewDir failed: %v", err)
	}
	testStore(t, s)

	if err := s.Set(context.Background(), "templates", []byte("[]")); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "templates.json" {
		t.Errorf("unexpected files: %v", entries)
	}
}
