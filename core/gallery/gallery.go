package gallery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"portfolio-api/core/reconcile"
	"portfolio-api/core/repository"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReadUploads reads every file posted under field.
func ReadUploads(form *multipart.Form, field string) ([]reconcile.Upload, error) {
	if form == nil {
		return nil, nil
	}

	headers := form.File[field]
	uploads := make([]reconcile.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}
		uploads = append(uploads, reconcile.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}

// LoadImageSet reads the raw image column of the row with the given id.
// Malformed stored values are logged and treated as an empty set.
func LoadImageSet(ctx context.Context, db *gorm.DB, model any, column string, id uint, logger *zap.Logger) (reconcile.ImageSet, error) {
	var raw sql.NullString
	err := db.WithContext(ctx).Model(model).Select(column).Where("id = ?", id).Row().Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", column, err)
	}
	if !raw.Valid {
		return reconcile.ImageSet{}, nil
	}

	set, ok := reconcile.ParseImageSet(raw.String)
	if !ok {
		logger.Warn("Malformed image list, treating as empty",
			zap.Uint("id", id),
			zap.String("column", column),
			zap.String("raw", raw.String),
		)
	}
	return set, nil
}

// Status maps an image reconciliation error to an HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, reconcile.ErrInvalidUpload):
		return fiber.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Message returns a client facing description of an image reconciliation error.
func Message(err error) string {
	var upErr *reconcile.StorageUploadError
	if errors.As(err, &upErr) {
		if errors.Is(err, reconcile.ErrInvalidUpload) {
			return fmt.Sprintf("Invalid image %q: %v", upErr.Filename, upErr.Err)
		}
		return fmt.Sprintf("Failed to upload image %q", upErr.Filename)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return "Not found"
	}
	return "Internal server error"
}

// LogFailedDeletes warns about images that could not be removed from storage.
func LogFailedDeletes(logger *zap.Logger, failures []reconcile.DeleteFailure) {
	for _, f := range failures {
		logger.Warn("Failed to delete image", zap.String("ref", f.Ref), zap.Error(f.Err))
	}
}
