package port

import (
	"context"
	"io"
)

// VideoArchive stores processed videos in object storage.
type VideoArchive interface {
	ArchiveProcessed(ctx context.Context, objectKey string, reader io.Reader, size int64) error
}
