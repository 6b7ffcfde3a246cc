// Package service — image upload business logic.
package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/sakif/image-describer/internal/apperror"
	"github.com/sakif/image-describer/internal/describe"
	"github.com/sakif/image-describer/internal/model"
	"github.com/sakif/image-describer/internal/storage"
)

// saveTimeout bounds the storage write the same way storeTimeout bounds
// database calls. A stalled disk fails the request with Dependency rather
// than hanging it. A write that dies midway may still leave a partial
// file — the store's documented behavior, not rolled back here.
const saveTimeout = 30 * time.Second

// ImageService accepts an uploaded image and produces its description.
//
// ORDERING CONTRACT:
// The byte stream is persisted FIRST, then the describer runs. The
// describer is never consulted for a request that failed ingestion —
// callers enforce the no-attachment case before even reaching this
// service, and a failed Save returns before Describe below.
type ImageService struct {
	store     storage.ImageStore
	describer describe.Describer
	logger    *slog.Logger
}

// NewImageService creates an ImageService.
func NewImageService(store storage.ImageStore, describer describe.Describer, logger *slog.Logger) *ImageService {
	return &ImageService{
		store:     store,
		describer: describer,
		logger:    logger,
	}
}

// DescribeUpload persists the image and returns its stored name plus the
// generated description for the requested level.
//
// The level string is sanitized here (unknown → basic, never an error) so
// the response always carries a level from the closed enumeration, not
// whatever the client typed.
func (s *ImageService) DescribeUpload(ctx context.Context, userID int64, originalName string, content io.Reader, levelStr string) (*model.UploadedImage, error) {
	saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	storedName, err := s.store.Save(saveCtx, originalName, content)
	if err != nil {
		return nil, apperror.Dependency("saving image", err)
	}

	level := describe.ParseLevel(levelStr)
	description := s.describer.Describe(level)

	s.logger.Info("image described",
		slog.Int64("userID", userID),
		slog.String("storedName", storedName),
		slog.String("level", string(level)),
	)

	return &model.UploadedImage{
		StoredName:       storedName,
		Description:      description,
		DescriptionLevel: string(level),
	}, nil
}
