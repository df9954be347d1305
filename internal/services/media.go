package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/yukikurage/geoblog/internal/constants"
	"github.com/yukikurage/geoblog/internal/media"
)

// ErrInvalidImage is returned when an upload cannot be decoded as an image.
var ErrInvalidImage = errors.New("upload a valid image")

// pendingFile is a normalized image waiting to be written to storage.
type pendingFile struct {
	path  string
	image *media.Normalized
}

func normalizeUploads(uploads []io.Reader, box media.Box) ([]*media.Normalized, error) {
	out := make([]*media.Normalized, 0, len(uploads))
	for i, r := range uploads {
		img, err := media.Normalize(r, box, constants.JPEGQuality)
		if err != nil {
			if errors.Is(err, media.ErrUnsupportedImage) {
				return nil, fmt.Errorf("%w: file %d: %v", ErrInvalidImage, i+1, err)
			}
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

// saveFiles writes every pending file. On failure the files already written
// are removed before the error is returned.
func saveFiles(ctx context.Context, storage media.Storage, files []pendingFile, log *zap.Logger) error {
	saved := make([]string, 0, len(files))
	for _, f := range files {
		if err := storage.Save(ctx, f.path, f.image.Data); err != nil {
			removeFiles(ctx, storage, saved, log)
			return fmt.Errorf("failed to store %s: %w", f.path, err)
		}
		saved = append(saved, f.path)
	}
	return nil
}

// removeFiles deletes stored files, logging failures.
func removeFiles(ctx context.Context, storage media.Storage, paths []string, log *zap.Logger) {
	for _, p := range paths {
		if err := storage.Remove(ctx, p); err != nil {
			log.Warn("failed to remove media file", zap.String("path", p), zap.Error(err))
		}
	}
}
