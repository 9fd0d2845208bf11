package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUpload is matched by every *StorageUploadError.
	ErrStorageUpload = errors.New("storage upload failed")

	// ErrObjectNotFound is returned by Deleter implementations when the object does not exist.
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidUpload marks uploads rejected before reaching storage (bad type, size, empty body).
	ErrInvalidUpload = errors.New("invalid upload")
)

// StorageUploadError is returned when a file of the batch could not be stored.
// Refs already stored by the same batch have been rolled back when it is returned.
type StorageUploadError struct {
	// Index is the position of the failing file in the request's uploads.
	Index int
	// Filename is the client filename of the failing file.
	Filename string
	// Err is the adapter error.
	Err error
	// RolledBack lists refs of the batch that were deleted again.
	RolledBack []ImageRef
	// RollbackFailures lists refs of the batch that could not be deleted.
	RollbackFailures []DeleteFailure
}

func (e *StorageUploadError) Error() string {
	msg := fmt.Sprintf("upload %d (%s): %v", e.Index, e.Filename, e.Err)
	if n := len(e.RollbackFailures); n > 0 {
		msg += fmt.Sprintf(" (%d rollback deletes failed)", n)
	}
	return msg
}

// Unwrap exposes both the sentinel and the adapter error to errors.Is / errors.As.
func (e *StorageUploadError) Unwrap() []error {
	return []error{ErrStorageUpload, e.Err}
}

// StorageDeleteError wraps a failed best-effort delete.
type StorageDeleteError struct {
	Ref ImageRef
	Err error
}

func (e *StorageDeleteError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Ref, e.Err)
}

func (e *StorageDeleteError) Unwrap() error {
	return e.Err
}
