package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore is an in-memory Store. Uploads are named after their filename so
// tests can predict refs.
type fakeStore struct {
	mu         sync.Mutex
	objects    map[ImageRef]struct{}
	deleted    []ImageRef
	uploaded   []ImageRef
	failUpload map[string]error
	failDelete map[ImageRef]error
	uploadFunc func(ctx context.Context, folder string, up Upload) (ImageRef, error)
}

func newFakeStore(existing ...ImageRef) *fakeStore {
	s := &fakeStore{
		objects:    make(map[ImageRef]struct{}),
		failUpload: make(map[string]error),
		failDelete: make(map[ImageRef]error),
	}
	for _, ref := range existing {
		s.objects[ref] = struct{}{}
	}
	return s
}

func (s *fakeStore) Upload(ctx context.Context, folder string, up Upload) (ImageRef, error) {
	if s.uploadFunc != nil {
		ref, err := s.uploadFunc(ctx, folder, up)
		if err == nil {
			s.mu.Lock()
			s.objects[ref] = struct{}{}
			s.uploaded = append(s.uploaded, ref)
			s.mu.Unlock()
		}
		return ref, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failUpload[up.Filename]; ok {
		return "", err
	}
	ref := up.Filename
	if folder != "" {
		ref = folder + "/" + up.Filename
	}
	s.objects[ref] = struct{}{}
	s.uploaded = append(s.uploaded, ref)
	return ref, nil
}

func (s *fakeStore) Delete(ctx context.Context, ref ImageRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, ref)
	if err, ok := s.failDelete[ref]; ok {
		return err
	}
	if _, ok := s.objects[ref]; !ok {
		return fmt.Errorf("remove %s: %w", ref, ErrObjectNotFound)
	}
	delete(s.objects, ref)
	return nil
}

func files(names ...string) []Upload {
	out := make([]Upload, 0, len(names))
	for _, n := range names {
		out = append(out, Upload{Filename: n, ContentType: "image/png", Data: []byte(n)})
	}
	return out
}

func intPtr(i int) *int {
	return &i
}

func newTestReconciler(store Store, concurrency int) *Reconciler {
	return New(store, zap.NewNop(), Options{UploadConcurrency: concurrency, RollbackTimeoutSeconds: 1})
}

func TestDedup(t *testing.T) {
	tests := []struct {
		name string
		in   []ImageRef
		want ImageSet
	}{
		{"Empty", nil, ImageSet{}},
		{"NoDuplicates", []ImageRef{"a", "b", "c"}, ImageSet{"a", "b", "c"}},
		{"FirstOccurrenceWins", []ImageRef{"b", "a", "b", "c", "a"}, ImageSet{"b", "a", "c"}},
		{"DropsEmpty", []ImageRef{"", "a", ""}, ImageSet{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dedup(tt.in))
		})
	}
}

func TestReconcile_Identity(t *testing.T) {
	store := newFakeStore("a", "b", "c")
	r := newTestReconciler(store, 1)

	res, err := r.Reconcile(context.Background(), Request{Existing: ImageSet{"a", "b", "a", "c", "b"}})
	require.NoError(t, err)

	assert.Equal(t, ImageSet{"a", "b", "c"}, res.FinalSet)
	assert.Empty(t, res.UploadedRefs)
	assert.Empty(t, res.FailedDeletes)
	assert.Empty(t, store.deleted)
}

func TestReconcile_RemovalsPreserveOrder(t *testing.T) {
	store := newFakeStore("a", "b", "c", "d", "e")
	r := newTestReconciler(store, 1)

	res, err := r.Reconcile(context.Background(), Request{
		Existing: ImageSet{"a", "b", "c", "d", "e"},
		Removals: []ImageRef{"d", "b"},
	})
	require.NoError(t, err)

	assert.Equal(t, ImageSet{"a", "c", "e"}, res.FinalSet)
	assert.ElementsMatch(t, []ImageRef{"b", "d"}, store.deleted)
}

func TestReconcile_RemovalOutsideExistingIgnored(t *testing.T) {
	store := newFakeStore("a", "b", "zzz")
	r := newTestReconciler(store, 1)

	res, err := r.Reconcile(context.Background(), Request{
		Existing: ImageSet{"a", "b"},
		Removals: []ImageRef{"zzz"},
	})
	require.NoError(t, err)

	assert.Equal(t, ImageSet{"a", "b"}, res.FinalSet)
	assert.Empty(t, store.deleted, "refs owned by other entities must not be deleted")
}

func TestReconcile_DuplicateRemovalDeletedOnce(t *testing.T) {
	store := newFakeStore("a", "b")
	r := newTestReconciler(store, 1)

	_, err := r.Reconcile(context.Background(), Request{
		Existing: ImageSet{"a", "b", "a"},
		Removals: []ImageRef{"a", "a"},
	})
	require.NoError(t, err)

	assert.Equal(t, []ImageRef{"a"}, store.deleted)
}

func TestReconcile_Scenario(t *testing.T) {
	store := newFakeStore("a", "b", "c")
	store.uploadFunc = func(ctx context.Context, folder string, up Upload) (ImageRef, error) {
		return map[string]ImageRef{"f1": "x", "f2": "y"}[up.Filename], nil
	}
	r := newTestReconciler(store, 2)

	res, err := r.Reconcile(context.Background(), Request{
		Existing:       ImageSet{"a", "b", "c"},
		Removals:       []ImageRef{"b"},
		Uploads:        files("f1", "f2"),
		PrincipalIndex: intPtr(2),
	})
	require.NoError(t, err)

	assert.Equal(t, ImageSet{"x", "a", "c", "y"}, res.FinalSet)
	assert.Equal(t, ImageSet{"x", "y"}, res.UploadedRefs)
	assert.Equal(t, []ImageRef{"b"}, store.deleted)
}

func TestReconcile_PrincipalIndex(t *testing.T) {
	uploads := files("p0", "p1", "p2", "p3")

	for k := range uploads {
		t.Run(fmt.Sprintf("Index%d", k), func(t *testing.T) {
			store := newFakeStore()
			r := newTestReconciler(store, 4)

			res, err := r.Reconcile(context.Background(), Request{Uploads: uploads, PrincipalIndex: intPtr(k)})
			require.NoError(t, err)

			require.Len(t, res.FinalSet, len(uploads))
			assert.Equal(t, res.UploadedRefs[k], res.FinalSet[0])

			var rest ImageSet
			for i, ref := range res.UploadedRefs {
				if i != k {
					rest = append(rest, ref)
				}
			}
			assert.Equal(t, rest, res.FinalSet[1:])
		})
	}
}

func TestReconcile_PrincipalIndexOutOfRange(t *testing.T) {
	for _, idx := range []int{-1, 3, 100} {
		t.Run(fmt.Sprintf("Index%d", idx), func(t *testing.T) {
			r := newTestReconciler(newFakeStore("a", "b"), 1)

			res, err := r.Reconcile(context.Background(), Request{
				Existing:       ImageSet{"a", "b"},
				Uploads:        files("c"),
				PrincipalIndex: intPtr(idx),
			})
			require.NoError(t, err)
			assert.Equal(t, ImageSet{"a", "b", "c"}, res.FinalSet)
		})
	}
}

func TestReconcile_UploadsUseFolder(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(store, 1)

	res, err := r.Reconcile(context.Background(), Request{Uploads: files("one.png"), Folder: "services"})
	require.NoError(t, err)
	assert.Equal(t, ImageSet{"services/one.png"}, res.FinalSet)
}

func TestReconcile_DeleteFailuresAreReported(t *testing.T) {
	store := newFakeStore("a", "b", "c")
	store.failDelete["b"] = errors.New("access denied")
	r := newTestReconciler(store, 1)

	res, err := r.Reconcile(context.Background(), Request{
		Existing: ImageSet{"a", "b", "c"},
		Removals: []ImageRef{"a", "b", "c"},
		Uploads:  files("n"),
	})
	require.NoError(t, err)

	assert.Equal(t, ImageSet{"n"}, res.FinalSet)
	require.Len(t, res.FailedDeletes, 1)
	assert.Equal(t, "b", res.FailedDeletes[0].Ref)

	var delErr *StorageDeleteError
	assert.ErrorAs(t, res.FailedDeletes[0].Err, &delErr)
	assert.ElementsMatch(t, []ImageRef{"a", "b", "c"}, store.deleted, "one failure must not stop the remaining deletes")
}

func TestReconcile_DeleteNotFoundIsSuccess(t *testing.T) {
	store := newFakeStore() // "gone" was already removed from the bucket
	r := newTestReconciler(store, 1)

	res, err := r.Reconcile(context.Background(), Request{
		Existing: ImageSet{"gone", "kept"},
		Removals: []ImageRef{"gone"},
	})
	require.NoError(t, err)

	assert.Equal(t, ImageSet{"kept"}, res.FinalSet)
	assert.Empty(t, res.FailedDeletes)
}

func TestReconcile_UploadFailureRollsBack(t *testing.T) {
	store := newFakeStore("a", "b")
	store.failUpload["f3"] = errors.New("bucket unavailable")
	r := newTestReconciler(store, 1)

	res, err := r.Reconcile(context.Background(), Request{
		Existing: ImageSet{"a", "b"},
		Removals: []ImageRef{"a"},
		Uploads:  files("f1", "f2", "f3", "f4", "f5"),
	})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrStorageUpload)

	var upErr *StorageUploadError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 2, upErr.Index)
	assert.Equal(t, "f3", upErr.Filename)
	assert.Equal(t, []ImageRef{"f1", "f2"}, upErr.RolledBack)
	assert.Empty(t, upErr.RollbackFailures)

	assert.Equal(t, []ImageRef{"f1", "f2"}, store.deleted, "only the batch is rolled back, removals are untouched")
	assert.Contains(t, store.objects, "a")
	assert.NotContains(t, store.objects, "f1")
	assert.NotContains(t, store.objects, "f2")
}

func TestReconcile_ConcurrentUploadFailureRollsBackSettledUploads(t *testing.T) {
	store := newFakeStore()
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	store.uploadFunc = func(ctx context.Context, folder string, up Upload) (ImageRef, error) {
		if up.Filename == "bad" {
			<-started
			<-started
			close(release)
			return "", errors.New("boom")
		}
		started <- struct{}{}
		<-release
		return up.Filename, nil
	}
	r := newTestReconciler(store, 3)

	_, err := r.Reconcile(context.Background(), Request{Uploads: files("ok1", "ok2", "bad")})
	require.Error(t, err)

	var upErr *StorageUploadError
	require.ErrorAs(t, err, &upErr)
	assert.ElementsMatch(t, []ImageRef{"ok1", "ok2"}, upErr.RolledBack)
	assert.Empty(t, store.objects)
}

func TestReconcile_RollbackFailureIsReported(t *testing.T) {
	store := newFakeStore()
	store.failUpload["f2"] = errors.New("quota exceeded")
	store.failDelete["f1"] = errors.New("network down")
	r := newTestReconciler(store, 1)

	_, err := r.Reconcile(context.Background(), Request{Uploads: files("f1", "f2")})

	var upErr *StorageUploadError
	require.ErrorAs(t, err, &upErr)
	assert.Empty(t, upErr.RolledBack)
	require.Len(t, upErr.RollbackFailures, 1)
	assert.Equal(t, "f1", upErr.RollbackFailures[0].Ref)
	assert.Contains(t, upErr.Error(), "rollback")
}

func TestReconcile_CancelledContextStillRollsBack(t *testing.T) {
	store := newFakeStore()
	ctx, cancel := context.WithCancel(context.Background())
	store.uploadFunc = func(c context.Context, folder string, up Upload) (ImageRef, error) {
		if up.Filename == "f2" {
			cancel()
			return "", c.Err()
		}
		return up.Filename, nil
	}
	r := newTestReconciler(store, 1)

	_, err := r.Reconcile(ctx, Request{Uploads: files("f1", "f2", "f3")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	var upErr *StorageUploadError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, []ImageRef{"f1"}, upErr.RolledBack)
	assert.Empty(t, store.objects)
}

func TestUploadAll_CreateVariant(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(store, 4)

	refs, err := r.UploadAll(context.Background(), "projects", files("1", "2", "3"))
	require.NoError(t, err)
	assert.Equal(t, ImageSet{"projects/1", "projects/2", "projects/3"}, refs)
	assert.Equal(t, "projects/1", refs.Principal())
}

func TestUploadAll_Empty(t *testing.T) {
	r := newTestReconciler(newFakeStore(), 1)

	refs, err := r.UploadAll(context.Background(), "projects", nil)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestDeleteAll(t *testing.T) {
	store := newFakeStore("a", "b")
	store.failDelete["b"] = errors.New("denied")
	r := newTestReconciler(store, 1)

	failed := r.DeleteAll(context.Background(), []ImageRef{"a", "b", "missing", "a"})
	require.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].Ref)
	assert.Equal(t, []ImageRef{"a", "b", "missing"}, store.deleted)
}

func TestNew_Defaults(t *testing.T) {
	r := New(newFakeStore(), nil, Options{})
	assert.NotNil(t, r.logger)
	assert.Equal(t, 15, r.opts.RollbackTimeoutSeconds)

	// Sequential fallback must not hang.
	done := make(chan struct{})
	go func() {
		_, _ = r.UploadAll(context.Background(), "", files("a", "b"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("UploadAll did not finish")
	}
}
