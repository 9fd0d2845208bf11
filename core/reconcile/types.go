package reconcile

// ImageRef is an opaque handle (public URL or storage key) of one stored image.
// Two refs are equal only when their strings are identical.
type ImageRef = string

// Upload is a single raw file payload waiting to be stored.
type Upload struct {
	// Filename is the original client filename, used for the extension and error reporting.
	Filename string

	// ContentType is the MIME type declared by the client (e.g. "image/png").
	ContentType string

	// Data holds the file bytes.
	Data []byte
}

// Request describes the changes requested for one entity's image list.
type Request struct {
	// Existing is the image list currently persisted on the entity.
	Existing ImageSet

	// Removals are the refs the client asked to delete.
	// Refs that are not part of Existing are ignored.
	Removals []ImageRef

	// Uploads are the new files, in the order they should be appended.
	Uploads []Upload

	// PrincipalIndex points into the composed list (retained refs followed by
	// uploaded refs). Nil or out of range leaves the composed order untouched.
	PrincipalIndex *int

	// Folder is the storage folder new uploads are placed under (e.g. "projects").
	Folder string
}

// DeleteFailure records a ref that could not be removed from storage.
type DeleteFailure struct {
	Ref ImageRef `json:"ref"`
	Err error    `json:"-"`
}

// Result is the outcome of a reconciliation.
type Result struct {
	// FinalSet is the list to persist back on the entity.
	FinalSet ImageSet `json:"final_set"`

	// UploadedRefs are the refs created by this call, in upload order.
	UploadedRefs ImageSet `json:"uploaded_refs"`

	// FailedDeletes lists removals the storage backend refused.
	FailedDeletes []DeleteFailure `json:"failed_deletes,omitempty"`
}

// Options tunes the reconciler.
type Options struct {
	// UploadConcurrency bounds the number of in-flight uploads. Values <= 1 upload sequentially.
	UploadConcurrency int `mapstructure:"upload_concurrency" default:"4"`

	// RollbackTimeoutSeconds bounds the cleanup of a failed batch.
	RollbackTimeoutSeconds int `mapstructure:"rollback_timeout_seconds" default:"15"`
}
