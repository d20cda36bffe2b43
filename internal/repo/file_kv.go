package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// fileKV keeps every key in one JSON object on disk:
//
//	{"trips": [...]}
//
// Writes go to a temp file in the same directory and are renamed over the
// existing file; readers never see a partial document.
type fileKV struct {
	mu   sync.Mutex
	path string
}

// NewFileKV returns a KV backed by the JSON document at path.
// The file and its parent directories are created on first write.
func NewFileKV(path string) KV {
	return &fileKV{path: path}
}

func (f *fileKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, false, fmt.Errorf("repo.fileKV.Get: %w", err)
	}
	v, ok := doc[key]
	if !ok {
		return nil, false, nil
	}
	return v, true, nil
}

func (f *fileKV) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("repo.fileKV.Set: value for %q is not valid JSON", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return fmt.Errorf("repo.fileKV.Set: %w", err)
	}
	doc[key] = json.RawMessage(value)
	if err := f.write(doc); err != nil {
		return fmt.Errorf("repo.fileKV.Set: %w", err)
	}
	return nil
}

func (f *fileKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return fmt.Errorf("repo.fileKV.Delete: %w", err)
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	if err := f.write(doc); err != nil {
		return fmt.Errorf("repo.fileKV.Delete: %w", err)
	}
	return nil
}

// read loads the whole document. A missing or empty file is an empty document.
func (f *fileKV) read() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)

	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(b) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return doc, nil
}

func (f *fileKV) write(doc map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
