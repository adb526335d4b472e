package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// FileStore persists the document as a single JSON file. Writes go to a
// temporary file in the same directory which is then renamed over the target,
// so a crash mid-write leaves either the old or the new document, never a
// torn one.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path. The file is
// created lazily on first Load.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the backing file.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(ctx context.Context) (*Document, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, unavailable("read data file", err)
		}
		doc := NewDocument()
		if perr := f.Persist(ctx, doc); perr != nil {
			return nil, perr
		}
		return doc, nil
	}
	doc := NewDocument()
	if len(b) > 0 {
		if err := json.Unmarshal(b, doc); err != nil {
			return nil, unavailable("decode data file", err)
		}
	}
	doc.Normalize()
	return doc, nil
}

func (f *FileStore) Persist(ctx context.Context, doc *Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return unavailable("encode document", err)
	}

	// The file write does not observe ctx by itself; run it aside and give
	// up when the deadline expires (the rename either happened or it didn't,
	// both are consistent states).
	done := make(chan error, 1)
	go func() { done <- f.write(b) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return unavailable("persist document", ctx.Err())
	}
}

func (f *FileStore) write(b []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return unavailable("create data dir", err)
	}
	tmp, err := os.CreateTemp(dir, ".staffdesk-*.json")
	if err != nil {
		return unavailable("create temp file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return unavailable("write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return unavailable("sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return unavailable("close temp file", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return unavailable("replace data file", err)
	}
	return nil
}
