package vector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.bin")
	s := NewStore()
	_ = s.Add(rec("anxiety", "I worry about everything", 0.1, 0.2, 0.3))
	_ = s.Add(rec("personality disorder", "Ich fühle mich leer", -0.5, 0, 1))
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != 2 || loaded.Dimensions() != 3 {
		t.Fatalf("Len=%d Dimensions=%d", loaded.Len(), loaded.Dimensions())
	}
	got := loaded.Records()
	if got[1].Category != "personality disorder" || got[1].Statement != "Ich fühle mich leer" {
		t.Errorf("record 1 = %+v", got[1])
	}
	if got[0].Embedding[2] != 0.3 || got[1].Embedding[0] != -0.5 {
		t.Errorf("embeddings not preserved: %v %v", got[0].Embedding, got[1].Embedding)
	}
	if !loaded.Processed("i worry about everything") {
		t.Error("processed set should be rebuilt on load")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestStore_SaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	if err := NewStore().Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != 0 {
		t.Errorf("Len=%d, want 0", loaded.Len())
	}
}

func TestLoadStore_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.bin")
	if _, err := LoadStore(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
	s, err := LoadStoreOrEmpty(path)
	if err != nil || s.Len() != 0 {
		t.Errorf("LoadStoreOrEmpty: len=%v err=%v", s, err)
	}
}

func TestLoadStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.bin")
	_ = os.WriteFile(bad, []byte("NOPE0000"), 0644)
	if _, err := LoadStore(bad); err == nil {
		t.Error("expected error for bad magic")
	}

	good := filepath.Join(dir, "good.bin")
	s := NewStore()
	_ = s.Add(rec("stress", "too much work", 1, 2, 3, 4))
	_ = s.Save(good)
	data, _ := os.ReadFile(good)
	truncated := filepath.Join(dir, "truncated.bin")
	_ = os.WriteFile(truncated, data[:len(data)-3], 0644)
	if _, err := LoadStore(truncated); err == nil {
		t.Error("expected error for truncated file")
	}

	tests := []struct {
		name          string
		dim, n        uint32
		checkFileSize bool
	}{
		{"huge dimension", 0x7fffffff, 1, true},
		{"dimension over limit", maxDimensions + 1, 1, false},
		{"more records than bytes", 4, 1 << 30, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			buf.WriteString(storeMagic)
			_ = binary.Write(&buf, binary.LittleEndian, []uint32{storeVersion, tt.dim, tt.n})
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".bin")
			if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadStore(path); err == nil {
				t.Error("expected error for corrupt header")
			}
			size := int64(-1)
			if tt.checkFileSize {
				size = int64(buf.Len())
			}
			if _, err := readStore(bytes.NewReader(buf.Bytes()), size); err == nil {
				t.Error("expected error from readStore")
			}
		})
	}
}

func TestLoadIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.bin")
	s := NewStore()
	_ = s.Add(rec("stress", "too much work", 1, 0))
	_ = s.Save(path)
	idx, err := LoadIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 1 || idx.Dimensions() != 2 {
		t.Errorf("Size=%d Dimensions=%d", idx.Size(), idx.Dimensions())
	}
}
