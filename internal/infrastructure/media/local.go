// Package media stores uploaded post images on the local filesystem.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/yatube/yatube/internal/core/domain"
)

// MaxImageSize caps a single upload.
const MaxImageSize = 5 << 20

const postsDir = "posts"

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// LocalStore implements ports.ImageStore under a root directory. Stored
// names are slash-separated paths relative to the root, e.g.
// posts/<uuid>.png, and are served under /media/.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Root is the directory files are written under.
func (s *LocalStore) Root() string { return s.root }

// Save validates content as an image and writes it under a fresh name.
// The client-supplied filename is not used.
func (s *LocalStore) Save(ctx context.Context, _ string, content io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(content, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", domain.ErrInvalidImage
	}
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("%w: larger than %d bytes", domain.ErrInvalidImage, MaxImageSize)
	}

	ext, ok := allowedTypes[mimetype.Detect(data).String()]
	if !ok {
		return "", domain.ErrInvalidImage
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", domain.ErrInvalidImage
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := path.Join(postsDir, uuid.NewString()+ext)
	dest := filepath.Join(s.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

// Delete removes a stored image. Names outside the posts directory are
// rejected; a file that is already gone is not an error.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	clean := path.Clean(name)
	if !strings.HasPrefix(clean, postsDir+"/") {
		return fmt.Errorf("refusing to delete %q outside %s/", name, postsDir)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
