package anisort

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestWalkSingleFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.mkv")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := Walk(f)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(got) != 1 || got[0] != f {
		t.Errorf("Walk(file) = %v, want [%s]", got, f)
	}
}

func TestWalkRecursesIntoSubdirs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	a := filepath.Join(dir, "a.mkv")
	b := filepath.Join(sub, "b.mkv")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	got, err := Walk(dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	sort.Strings(got)
	want := []string{a, b}
	sort.Strings(want)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Walk(dir) = %v, want %v", got, want)
	}
}

func TestWalkSkipsTopLevelSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.mkv")
	if err := os.WriteFile(target, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	link := filepath.Join(dir, "link.mkv")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := Walk(link)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Walk(symlink) = %v, want empty", got)
	}
}

func TestWalkSkipsNestedSymlinkedSubdir(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	if err := os.MkdirAll(real, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	hidden := filepath.Join(real, "hidden.mkv")
	if err := os.WriteFile(hidden, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	sub := filepath.Join(dir, "sub")
	if err := os.Symlink(real, sub); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	visible := filepath.Join(dir, "a.mkv")
	if err := os.WriteFile(visible, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := Walk(dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(got) != 1 || got[0] != visible {
		t.Errorf("Walk(dir with symlinked subdir) = %v, want [%s]", got, visible)
	}
}
