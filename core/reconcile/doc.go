// Package reconcile keeps an entity's ordered image list in sync with the
// object storage bucket.
//
// Projects and services persist their images as an ImageSet: an ordered,
// duplicate-free list of refs where index 0 is the principal (cover) image.
// An update request carries the refs to remove, the new files to upload and an
// optional principal index; the Reconciler turns that into the final list and
// performs the uploads and deletes against a Store.
//
// # Reconciliation
//
//  1. Existing refs are deduplicated (first occurrence wins).
//  2. New files are uploaded, concurrently up to Options.UploadConcurrency.
//     If any upload fails, every file stored by the batch is deleted again and
//     a *StorageUploadError is returned. Nothing else has been touched at that point.
//  3. Removals present in the existing list are deleted, best effort. Failures
//     are reported in Result.FailedDeletes; missing objects count as deleted.
//  4. The final list is retained refs followed by uploaded refs, with the
//     element at PrincipalIndex moved to the front when the index is valid.
//
// The Reconciler never writes to the database. Callers persist Result.FinalSet
// themselves, which keeps the row unchanged whenever reconciliation fails.
//
// # Persistence
//
// ImageSet implements sql.Scanner and driver.Valuer and is stored as JSON text.
// Older rows may hold a JSON-encoded string or malformed data; those decode to
// an empty set instead of failing.
//
// # Usage
//
//	r := reconcile.New(imageStore, logger, cfg.Reconcile)
//	res, err := r.Reconcile(ctx, reconcile.Request{
//	    Existing:       project.ImageURLs,
//	    Removals:       removed,
//	    Uploads:        files,
//	    PrincipalIndex: principal,
//	    Folder:         "projects",
//	})
package reconcile
