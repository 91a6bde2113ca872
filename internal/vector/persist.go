package vector

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/hyperjump/kokoro/internal/models"
)

const (
	storeMagic   = "KKVS"
	storeVersion = uint32(1)
	// maxFieldLen bounds string fields read from disk so a corrupt length cannot exhaust memory.
	maxFieldLen = 1 << 20
	// maxDimensions bounds the vector length declared in a store header.
	maxDimensions = 1 << 16
	// headerSize is the magic plus version, dimension and count.
	headerSize = len(storeMagic) + 3*4
)

// Save persists the store to path atomically: the data is written to a temporary
// file in the same directory and renamed over path. The directory is created if needed.
// Format (little endian): magic "KKVS", version (4), dimension (4), n (4), then per
// record: category len (4), category, statement len (4), statement, vector (dimension*4 bytes).
func (s *Store) Save(path string) error {
	if path == "" {
		return fmt.Errorf("store path is empty")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := s.writeTo(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename store: %w", err)
	}
	committed = true
	return nil
}

func (s *Store) writeTo(w io.Writer) error {
	if _, err := io.WriteString(w, storeMagic); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	header := []uint32{storeVersion, uint32(s.dimensions), uint32(len(s.records))}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range s.records {
		if err := writeString(w, r.Category); err != nil {
			return fmt.Errorf("write category: %w", err)
		}
		if err := writeString(w, r.Statement); err != nil {
			return fmt.Errorf("write statement: %w", err)
		}
		if _, err := w.Write(float32SliceToBytes(r.Embedding)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// LoadStore reads a store written by Save. A missing file yields an error
// matching os.ErrNotExist.
func LoadStore(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat store file: %w", err)
	}
	store, err := readStore(bufio.NewReader(f), info.Size())
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", path, err)
	}
	return store, nil
}

// LoadStoreOrEmpty is LoadStore, but a missing file yields an empty store.
func LoadStoreOrEmpty(path string) (*Store, error) {
	store, err := LoadStore(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewStore(), nil
	}
	return store, err
}

// readStore decodes a store. size is the total input length in bytes, or -1 when
// unknown; a header whose records cannot fit in size is rejected before reading them.
func readStore(r io.Reader, size int64) (*Store, error) {
	magic := make([]byte, len(storeMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != storeMagic {
		return nil, fmt.Errorf("not a vector store file")
	}
	var header [3]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	version, dim, n := header[0], header[1], header[2]
	if version != storeVersion {
		return nil, fmt.Errorf("unsupported store version %d", version)
	}
	if n > 0 && dim == 0 {
		return nil, fmt.Errorf("store has %d records but zero dimensions", n)
	}
	if dim > maxDimensions {
		return nil, fmt.Errorf("store dimension %d exceeds limit %d", dim, maxDimensions)
	}
	// Each record needs at least two length prefixes and its vector.
	if minSize := int64(headerSize) + int64(n)*(8+int64(dim)*4); size >= 0 && minSize > size {
		return nil, fmt.Errorf("store declares %d records of dimension %d but holds only %d bytes", n, dim, size)
	}
	store := NewStore()
	buf := make([]byte, int(dim)*4)
	for i := uint32(0); i < n; i++ {
		category, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("read category of record %d: %w", i, err)
		}
		statement, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("read statement of record %d: %w", i, err)
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read vector of record %d: %w", i, err)
		}
		rec := models.StatementRecord{
			Category:  category,
			Statement: statement,
			Embedding: bytesToFloat32Slice(buf),
		}
		if err := store.Add(rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return store, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n > maxFieldLen {
		return "", fmt.Errorf("field length %d exceeds limit", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
