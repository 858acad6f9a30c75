// Package storage holds the object stores that keep resumes, profile photos
// and company logos. Callers only persist the reference a store returns.
package storage

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Blob is an opaque upload.
type Blob struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

type BlobStore interface {
	// Store saves the blob under folder and returns a URL for it.
	Store(ctx context.Context, folder string, b Blob) (string, error)
	// Delete removes a blob by the URL Store returned.
	Delete(ctx context.Context, ref string) error
}

// FromFileHeader opens an uploaded multipart file. The caller closes the
// returned closer once the blob has been stored.
func FromFileHeader(fh *multipart.FileHeader) (Blob, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return Blob{}, nil, err
	}
	return Blob{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}

// objectKey builds a collision-free key that keeps the file extension.
func objectKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return strings.Trim(folder, "/") + "/" + uuid.NewString() + ext
}

var ErrForeignRef = errors.New("reference not owned by this store")
