package ports

import (
	"context"
	"io"
)

// ImageStore keeps uploaded post images. Save returns the stored name to
// record on the post; Delete takes that same name.
type ImageStore interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
}
