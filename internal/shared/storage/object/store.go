package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving binary objects:
// original document uploads and the extracted-text artifacts derived from
// them. Save places the object under a caller-opaque generated key;
// SaveWithKey writes to a known key so a stage retry overwrites its own
// previous attempt instead of piling up copies.
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Remove(ctx context.Context, storageKey string) error
}
