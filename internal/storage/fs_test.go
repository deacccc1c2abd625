package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempFiles(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndDownload(t *testing.T) {
	s := tempFiles(t)
	content := []byte("# Notes\nchapter one\n")
	if err := s.Write("u1/note.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Download("u1/note.md")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempFiles(t)
	if err := s.Write("u1/a/b/c.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Download("u1/a/b/c.md")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempFiles(t)
	_ = s.Write("u1/del.md", []byte("bye"))
	if err := s.Delete("u1/del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Download("u1/del.md"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestList(t *testing.T) {
	s := tempFiles(t)
	_ = s.Write("u1/a.md", []byte("a"))
	_ = s.Write("u1/sub/b.md", []byte("b"))
	_ = s.Write("u2/c.md", []byte("c"))

	items, err := s.List("u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2: %v", len(items), items)
	}
	for _, p := range items {
		if filepath.ToSlash(p)[:3] != "u1/" {
			t.Errorf("path outside prefix: %q", p)
		}
	}
}

func TestListSkipsDotfiles(t *testing.T) {
	s := tempFiles(t)
	_ = s.Write("u1/a.md", []byte("a"))
	_ = os.WriteFile(filepath.Join(s.root, "u1", ".hidden"), []byte("x"), 0o644)

	items, err := s.List("u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("dotfile leaked into listing: %v", items)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempFiles(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Download(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempFiles(t)
	original := []byte("original content")
	_ = s.Write("u1/atomic.md", original)

	updated := []byte("updated content")
	if err := s.Write("u1/atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Download("u1/atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, "u1", ".studydesk-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/studydesk-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "studydesk-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
