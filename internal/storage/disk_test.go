package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()

	f1 := filepath.Join(dir, "f1.txt")
	if err := os.WriteFile(f1, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := DiskUsageBytes(f1)
	if err != nil {
		t.Fatal(err)
	}
	if got != 5 {
		t.Errorf("single file: got %d bytes, want 5", got)
	}

	sub := filepath.Join(dir, "sub", "nested")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "a"), []byte("ab"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = DiskUsageBytes(f1, filepath.Join(dir, "sub"), filepath.Join(dir, "missing"), "")
	if err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("file+dir: got %d bytes, want 7", got)
	}
}

func TestDatabaseFiles(t *testing.T) {
	if files := DatabaseFiles(MemoryPath); files != nil {
		t.Errorf("memory database has no files, got %v", files)
	}
	files := DatabaseFiles("/tmp/grades.db")
	if len(files) != 3 || files[1] != "/tmp/grades.db-wal" {
		t.Errorf("DatabaseFiles = %v", files)
	}
}

func TestDiskUsageBytes_database(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grades.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	n, err := DiskUsageBytes(DatabaseFiles(path)...)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Error("expected a non-empty database file")
	}
}
