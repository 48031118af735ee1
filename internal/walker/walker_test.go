package walker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuanyiying/filemover-cli/internal/types"
)

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestWalkEmitsOnlyDirectories(t *testing.T) {
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "a", "b"))
	if err := os.WriteFile(filepath.Join(root, "a", "file.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, errc := Walk(context.Background(), root, types.ScanOptions{})
	var got []string
	for e := range entries {
		got = append(got, e.Path)
	}
	if err := <-errc; err != nil {
		t.Fatalf("walk error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 directory entries (root, a, a/b), got %v", got)
	}
}

func TestWalkRespectsMaxDepth(t *testing.T) {
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "a", "b", "c"))

	depth := 1
	entries, errc := Walk(context.Background(), root, types.ScanOptions{MaxDepth: &depth})
	var got []string
	for e := range entries {
		got = append(got, e.Path)
	}
	if err := <-errc; err != nil {
		t.Fatalf("walk error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected root + depth-1 child only, got %v", got)
	}
}

func TestWalkPrunesExcludedPaths(t *testing.T) {
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "keep"))
	mustMkdir(t, filepath.Join(root, "skip", "nested"))

	opts := types.ScanOptions{ExcludedPaths: []string{filepath.Join(root, "skip")}}
	entries, errc := Walk(context.Background(), root, opts)
	var got []string
	for e := range entries {
		got = append(got, e.Path)
	}
	if err := <-errc; err != nil {
		t.Fatalf("walk error: %v", err)
	}

	for _, p := range got {
		if filepath.Base(p) == "nested" {
			t.Fatalf("excluded subtree leaked into results: %v", got)
		}
	}
}

func TestWalkCancellation(t *testing.T) {
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries, errc := Walk(ctx, root, types.ScanOptions{})
	for range entries {
	}
	if err := <-errc; err == nil {
		t.Fatal("expected cancellation error")
	}
}
