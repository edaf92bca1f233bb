package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_ReadFile(t *testing.T) {
	fsys := OSFileSystem{}

	data, err := fsys.ReadFile("filesystem.go")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty file content")
	}
}

func TestOSFileSystem_CreateStatRemove(t *testing.T) {
	fsys := OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "plots", "run-1")

	if err := fsys.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	path := filepath.Join(dir, "figure.svg")
	w, err := fsys.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("<svg/>")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	info, err := fsys.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 6 {
		t.Errorf("size = %d, want 6", info.Size())
	}

	if err := fsys.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed, stat err = %v", err)
	}
}

func TestMemoryFileSystem_CreateAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/out/figure.png")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, _ = w.Write([]byte("part1-"))
	_, _ = w.Write([]byte("part2"))

	// Contents are published on Close.
	data, err := mfs.ReadFile("/out/figure.png")
	if err != nil {
		t.Fatalf("ReadFile before close failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty file before close, got %q", data)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	data, err = mfs.ReadFile("/out/../out/figure.png")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "part1-part2" {
		t.Errorf("data = %q, want %q", data, "part1-part2")
	}
}

func TestMemoryFileSystem_ReadNonExistent(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_, err := mfs.ReadFile("/missing.csv")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystem_StatAndDirs(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.MkdirAll("/a/b/c", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	for _, dir := range []string{"/a", "/a/b", "/a/b/c"} {
		info, err := mfs.Stat(dir)
		if err != nil {
			t.Fatalf("Stat(%s) failed: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%s should be a directory", dir)
		}
		if info.Mode()&fs.ModeDir == 0 {
			t.Errorf("%s mode should include ModeDir", dir)
		}
	}

	if _, err := mfs.Stat("/a/nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystem_Remove(t *testing.T) {
	mfs := NewMemoryFileSystem()
	w, _ := mfs.Create("/x.html")
	_ = w.Close()

	if err := mfs.Remove("/x.html"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(mfs.Files()) != 0 {
		t.Errorf("expected no files, got %v", mfs.Files())
	}
	if err := mfs.Remove("/x.html"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist on second remove, got %v", err)
	}
}

func TestMemoryFileSystem_FailCreate(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.FailCreate = errors.New("disk full")

	_, err := mfs.Create("/y.png")
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *fs.PathError
	if !errors.As(err, &pe) || pe.Path != "/y.png" {
		t.Errorf("expected PathError for /y.png, got %v", err)
	}
}

func TestMemoryFileSystem_FilesSorted(t *testing.T) {
	mfs := NewMemoryFileSystem()
	for _, name := range []string{"/c.png", "/a.png", "/b.png"} {
		w, _ := mfs.Create(name)
		_ = w.Close()
	}
	got := mfs.Files()
	want := []string{"/a.png", "/b.png", "/c.png"}
	if len(got) != len(want) {
		t.Fatalf("Files() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Files()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
