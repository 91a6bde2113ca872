package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "vector_store.bin")
	if err := os.WriteFile(store, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "db")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "a"), []byte("ab"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b"), []byte("c"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"file", []string{store}, 5},
		{"dir", []string{sub}, 3},
		{"file and dir", []string{store, sub}, 8},
		{"missing skipped", []string{store, filepath.Join(dir, "nope"), sub}, 8},
		{"empty skipped", []string{"", store}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskUsageBytes(tt.paths...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %d bytes, want %d", got, tt.want)
			}
		})
	}
}

func TestDatabaseFiles(t *testing.T) {
	got := DatabaseFiles("/tmp/p.db")
	if len(got) != 3 || got[1] != "/tmp/p.db-wal" || got[2] != "/tmp/p.db-shm" {
		t.Errorf("DatabaseFiles = %v", got)
	}
	if DatabaseFiles("") != nil {
		t.Error("empty path should yield nil")
	}
}
