package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes blobs under Dir and returns URLs under BaseURL, which
// the HTTP server serves statically.
type DiskStore struct {
	Dir     string
	BaseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskStore) Store(ctx context.Context, folder string, b Blob) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := objectKey(folder, b.Filename)
	path := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, b.Body); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return s.BaseURL + "/" + key, nil
}

func (s *DiskStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, ok := strings.CutPrefix(ref, s.BaseURL+"/")
	if !ok || !filepath.IsLocal(filepath.FromSlash(key)) {
		return fmt.Errorf("%w: %s", ErrForeignRef, ref)
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.FromSlash(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
