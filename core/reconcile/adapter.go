package reconcile

import "context"

// Uploader stores a file and returns a publicly resolvable reference to it.
// Implementations must generate collision-free object names under folder.
type Uploader interface {
	Upload(ctx context.Context, folder string, upload Upload) (ImageRef, error)
}

// Deleter removes a stored file.
// Implementations return ErrObjectNotFound (or an error wrapping it) when the
// object is already absent; the reconciler treats that as success.
type Deleter interface {
	Delete(ctx context.Context, ref ImageRef) error
}

// Store is the full storage contract consumed by the reconciler.
type Store interface {
	Uploader
	Deleter
}
