// Package blob stores and retrieves story artifacts as JSON documents.
// Production uses Azure Blob Storage; tests and the dev loop use the
// in-memory store.
package blob

import (
	"context"
)

// Store is the artifact storage the pipeline and the book service write
// and read. Names are full blob paths (constants.PromptBlobPath and
// friends build them).
type Store interface {
	UploadJSON(ctx context.Context, name string, v any) error
	// DownloadJSON decodes the named blob into v. A missing blob yields
	// an error wrapping common.ErrNotFound.
	DownloadJSON(ctx context.Context, name string, v any) error
	Exists(ctx context.Context, name string) (bool, error)
	// List returns the names of all blobs under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	// DeletePrefix removes every blob under prefix. Deleting an empty
	// prefix is not an error.
	DeletePrefix(ctx context.Context, prefix string) error
}
