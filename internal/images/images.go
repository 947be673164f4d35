// Package images stores uploaded media on disk and hands out opaque
// references. Blocks only ever hold the reference, never the bytes.
package images

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"biolink/internal/content"
)

// MaxUploadSize caps a single upload at 8 MiB.
const MaxUploadSize = 8 << 20

var (
	ErrTooLarge        = errors.New("image too large")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrNotFound        = errors.New("image not found")
)

// Only sniffable raster types are accepted. SVG never comes out of
// http.DetectContentType (it sniffs as XML), so it is not listed.
var extByMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store keeps images as files under a root directory, named by uuid.
type Store struct {
	root   string
	logger *zap.Logger
}

func NewStore(root string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create image root: %w", err)
	}
	return &Store{root: root, logger: logger}, nil
}

// Save reads an upload, sniffs its type and writes it to disk. The
// returned ref's Src is the public URL path the API serves it under.
func (s *Store) Save(r io.Reader) (content.ImageRef, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return content.ImageRef{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return content.ImageRef{}, ErrTooLarge
	}

	mime := http.DetectContentType(data)
	ext, ok := extByMime[mime]
	if !ok {
		return content.ImageRef{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}

	id := uuid.NewString()
	name := id + ext
	if err := os.WriteFile(filepath.Join(s.root, name), data, 0644); err != nil {
		return content.ImageRef{}, fmt.Errorf("write image: %w", err)
	}

	s.logger.Debug("image stored",
		zap.String("id", id),
		zap.String("mime", mime),
		zap.Int("bytes", len(data)))
	return content.ImageRef{ID: id, Src: "/media/" + name}, nil
}

// Path resolves a stored file name to its on-disk path. Traversal
// outside the root is rejected.
func (s *Store) Path(name string) (string, error) {
	clean := filepath.Base(filepath.Clean(name))
	if clean != name || clean == "." || clean == "/" {
		return "", ErrNotFound
	}
	p := filepath.Join(s.root, clean)
	if _, err := os.Stat(p); err != nil {
		return "", ErrNotFound
	}
	return p, nil
}

// Delete removes a stored image by file name.
func (s *Store) Delete(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}
