// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified interface for common operations
// like checking bucket existence, uploading files, and listing objects. This abstraction
// supports both AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Image Store
//
// ImageStore is the upload/delete adapter used by core/reconcile. Uploaded files are
// sniffed for their real content type, limited in size, and stored as
// "<folder>/<uuid><ext>". Refs handed back to callers are public URLs built from
// Config.PublicURL (or the endpoint) and the bucket name; KeyFor maps them back.
//
// Deleting a ref that is not in the bucket, or whose object is already gone,
// reports reconcile.ErrObjectNotFound so the reconciler can treat it as done.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	images, err := storage.NewImageStore(client, cfg.Storage, logger)
//	ref, err := images.Upload(ctx, "projects", upload)
package storage
