package reconcile

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Reconciler computes the new image list of an entity and performs the
// storage side effects needed to reach it.
type Reconciler struct {
	store  Store
	logger *zap.Logger
	opts   Options
}

// New creates a Reconciler backed by store.
func New(store Store, logger *zap.Logger, opts Options) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RollbackTimeoutSeconds <= 0 {
		opts.RollbackTimeoutSeconds = 15
	}
	return &Reconciler{store: store, logger: logger, opts: opts}
}

// Reconcile applies removals and uploads to req.Existing.
//
// Deletes are best effort and reported in Result.FailedDeletes. An upload
// failure rolls back every ref stored by this call and returns a
// *StorageUploadError before any removal is attempted; the caller must then
// leave the persisted entity untouched.
func (r *Reconciler) Reconcile(ctx context.Context, req Request) (*Result, error) {
	existing := Dedup(req.Existing)

	removals := make(map[ImageRef]struct{}, len(req.Removals))
	for _, ref := range req.Removals {
		removals[ref] = struct{}{}
	}

	retained := make(ImageSet, 0, len(existing))
	var toDelete []ImageRef
	for _, ref := range existing {
		if _, ok := removals[ref]; ok {
			toDelete = append(toDelete, ref)
			continue
		}
		retained = append(retained, ref)
	}

	// Uploads go first: if the batch fails, nothing referenced by the
	// persisted row has been deleted yet.
	uploaded, err := r.UploadAll(ctx, req.Folder, req.Uploads)
	if err != nil {
		return nil, err
	}

	failed := r.deleteAll(ctx, toDelete)

	composed := make(ImageSet, 0, len(retained)+len(uploaded))
	composed = append(composed, retained...)
	composed = append(composed, uploaded...)

	return &Result{
		FinalSet:      Dedup(promote(composed, req.PrincipalIndex)),
		UploadedRefs:  uploaded,
		FailedDeletes: failed,
	}, nil
}

// UploadAll stores uploads under folder and returns their refs in upload order.
// It is the whole reconciliation for newly created entities: the first ref is
// the principal image.
//
// The call waits for every in-flight upload before deciding the outcome. If
// any upload failed, all refs stored by this batch are deleted again.
func (r *Reconciler) UploadAll(ctx context.Context, folder string, uploads []Upload) (ImageSet, error) {
	if len(uploads) == 0 {
		return ImageSet{}, nil
	}

	refs := make([]ImageRef, len(uploads))
	errs := make([]error, len(uploads))

	// A plain group, not WithContext: one failure must not cancel uploads that
	// may already have written their object, or rollback could miss them.
	var g errgroup.Group
	limit := r.opts.UploadConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	// Once a file fails, uploads that have not started yet are skipped.
	var halted atomic.Bool
	for i, up := range uploads {
		g.Go(func() error {
			if halted.Load() {
				return nil
			}
			if err := ctx.Err(); err != nil {
				errs[i] = err
				halted.Store(true)
				return nil
			}
			ref, err := r.store.Upload(ctx, folder, up)
			if err != nil {
				errs[i] = err
				halted.Store(true)
				return nil
			}
			refs[i] = ref
			return nil
		})
	}
	_ = g.Wait()

	failedAt := -1
	for i, err := range errs {
		if err != nil {
			failedAt = i
			break
		}
	}

	if failedAt < 0 {
		return Dedup(refs), nil
	}

	var stored []ImageRef
	for i, ref := range refs {
		if errs[i] == nil && ref != "" {
			stored = append(stored, ref)
		}
	}

	uerr := &StorageUploadError{
		Index:    failedAt,
		Filename: uploads[failedAt].Filename,
		Err:      errs[failedAt],
	}
	uerr.RolledBack, uerr.RollbackFailures = r.rollback(ctx, stored)

	r.logger.Warn("Upload batch failed, rolled back",
		zap.String("folder", folder),
		zap.Int("index", failedAt),
		zap.Int("rolled_back", len(uerr.RolledBack)),
		zap.Int("rollback_failures", len(uerr.RollbackFailures)),
		zap.Error(uerr.Err),
	)
	return nil, uerr
}

// DeleteAll removes refs from storage, best effort. Missing objects count as deleted.
func (r *Reconciler) DeleteAll(ctx context.Context, refs []ImageRef) []DeleteFailure {
	return r.deleteAll(ctx, Dedup(refs))
}

func (r *Reconciler) deleteAll(ctx context.Context, refs []ImageRef) []DeleteFailure {
	var failed []DeleteFailure
	for _, ref := range refs {
		if err := r.deleteOne(ctx, ref); err != nil {
			r.logger.Warn("Failed to delete image", zap.String("ref", ref), zap.Error(err))
			failed = append(failed, DeleteFailure{Ref: ref, Err: &StorageDeleteError{Ref: ref, Err: err}})
		}
	}
	return failed
}

func (r *Reconciler) deleteOne(ctx context.Context, ref ImageRef) error {
	err := r.store.Delete(ctx, ref)
	if err == nil || errors.Is(err, ErrObjectNotFound) {
		return nil
	}
	return err
}

// rollback deletes refs with a context that survives the request's cancellation,
// so a timed out request still cleans up what it already stored.
func (r *Reconciler) rollback(ctx context.Context, refs []ImageRef) ([]ImageRef, []DeleteFailure) {
	if len(refs) == 0 {
		return nil, nil
	}

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Duration(r.opts.RollbackTimeoutSeconds)*time.Second)
	defer cancel()

	failed := r.deleteAll(cleanupCtx, refs)
	bad := make(map[ImageRef]struct{}, len(failed))
	for _, f := range failed {
		bad[f.Ref] = struct{}{}
	}

	removed := make([]ImageRef, 0, len(refs))
	for _, ref := range refs {
		if _, ok := bad[ref]; !ok {
			removed = append(removed, ref)
		}
	}
	return removed, failed
}

// promote moves set[idx] to the front, keeping the relative order of the rest.
func promote(set ImageSet, idx *int) ImageSet {
	if idx == nil || *idx <= 0 || *idx >= len(set) {
		return set
	}
	i := *idx
	out := make(ImageSet, 0, len(set))
	out = append(out, set[i])
	out = append(out, set[:i]...)
	out = append(out, set[i+1:]...)
	return out
}
