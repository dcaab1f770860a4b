package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activities.csv")

	if err := WriteFileAtomic(path, []byte("one"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if err := WriteFileAtomic(path, []byte("two"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic() overwrite error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "two" {
		t.Errorf("content = %q, want %q", data, "two")
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("perm = %v, want 0600", info.Mode().Perm())
		}
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("leftover temp files: %d entries", len(entries))
	}
}

func TestWriteFileAtomicMkdir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "2025", "report.md")
	if err := WriteFileAtomicMkdir(path, []byte("# Report"), 0600); err != nil {
		t.Fatalf("WriteFileAtomicMkdir() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not written: %v", err)
	}
}

func TestCopyFileAtomic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.json")
	dst := filepath.Join(dir, "dst.json")
	if err := os.WriteFile(src, []byte(`{"total_added":3}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileAtomic(src, dst, 0600); err != nil {
		t.Fatalf("CopyFileAtomic() error = %v", err)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != `{"total_added":3}` {
		t.Errorf("copy = %q", data)
	}

	if err := CopyFileAtomic(filepath.Join(dir, "missing"), dst, 0600); err == nil {
		t.Error("expected error for missing source")
	}
}

func TestBestEffortBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fetch_state.json")

	// Missing source is silently ignored.
	BestEffortBackup(path, 0600)
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Errorf("unexpected .bak for missing file: %v", err)
	}

	if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	BestEffortBackup(path, 0600)
	data, err := os.ReadFile(path + ".bak")
	if err != nil || string(data) != "{}" {
		t.Errorf(".bak = %q, %v", data, err)
	}
}
