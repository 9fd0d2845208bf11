package projects

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"portfolio-api/core/database"
	"portfolio-api/core/reconcile"
	"portfolio-api/core/repository"
	"portfolio-api/core/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memStore keeps uploaded objects in memory.
type memStore struct {
	mu      sync.Mutex
	seq     int
	objects map[string]bool
	failOn  string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]bool{}}
}

func (m *memStore) Upload(ctx context.Context, folder string, up reconcile.Upload) (reconcile.ImageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if up.Filename == m.failOn {
		return "", errors.New("storage unavailable")
	}
	if len(up.Data) == 0 {
		return "", fmt.Errorf("%w: empty", reconcile.ErrInvalidUpload)
	}
	m.seq++
	ref := fmt.Sprintf("https://cdn/%s/%d-%s", folder, m.seq, up.Filename)
	m.objects[ref] = true
	return ref, nil
}

func (m *memStore) Delete(ctx context.Context, ref reconcile.ImageRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.objects[ref] {
		return reconcile.ErrObjectNotFound
	}
	delete(m.objects, ref)
	return nil
}

func (m *memStore) has(ref string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[ref]
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func setupService(t *testing.T) (*Service, *memStore, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))

	store := newMemStore()
	rec := reconcile.New(store, zap.NewNop(), reconcile.Options{UploadConcurrency: 1, RollbackTimeoutSeconds: 5})
	return NewService(db, rec, zap.NewNop()), store, db
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func file(name string) reconcile.Upload {
	return reconcile.Upload{Filename: name, ContentType: "image/png", Data: []byte("png")}
}

func TestService_Create(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, Input{
		Name:         strPtr("  Bridge  "),
		StartDate:    strPtr("2024-01-15"),
		Technologies: []string{"go", "vue"},
	}, []reconcile.Upload{file("a.png"), file("b.png")})
	require.NoError(t, err)

	assert.Equal(t, "Bridge", p.Name)
	assert.Equal(t, StatusActive, p.Status)
	require.NotNil(t, p.StartDate)
	assert.Equal(t, 2024, p.StartDate.Year())
	require.Len(t, p.ImageURLs, 2)
	assert.Contains(t, p.ImageURLs[0], "a.png")
	assert.Equal(t, 2, store.count())

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ImageURLs, got.ImageURLs)
	assert.Equal(t, repository.StringList{"go", "vue"}, got.Technologies)
}

func TestService_CreateValidation(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{}, nil)
	var verrs validate.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "name")

	_, err = svc.Create(ctx, Input{Name: strPtr("x"), Status: strPtr("archived")}, nil)
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "status")

	_, err = svc.Create(ctx, Input{Name: strPtr("x"), EndDate: strPtr("yesterday")}, nil)
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "end_date")

	assert.Zero(t, store.count())
}

func TestService_CreateUploadFailureStoresNothing(t *testing.T) {
	svc, store, db := setupService(t)
	store.failOn = "bad.png"

	_, err := svc.Create(context.Background(), Input{Name: strPtr("x")}, []reconcile.Upload{file("a.png"), file("bad.png")})
	assert.ErrorIs(t, err, reconcile.ErrStorageUpload)
	assert.Zero(t, store.count())

	var n int64
	db.Model(&Project{}).Count(&n)
	assert.Zero(t, n)
}

func TestService_UpdateScenario(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, Input{Name: strPtr("p")}, []reconcile.Upload{file("a.png"), file("b.png"), file("c.png")})
	require.NoError(t, err)
	a, b, c := p.ImageURLs[0], p.ImageURLs[1], p.ImageURLs[2]

	updated, res, err := svc.Update(ctx, p.ID, UpdateRequest{
		Input:          Input{Description: strPtr("new")},
		RemoveImages:   []string{b},
		Uploads:        []reconcile.Upload{file("x.png"), file("y.png")},
		PrincipalIndex: intPtr(2),
	})
	require.NoError(t, err)
	require.Len(t, res.UploadedRefs, 2)
	x, y := res.UploadedRefs[0], res.UploadedRefs[1]

	assert.Equal(t, reconcile.ImageSet{x, a, c, y}, updated.ImageURLs)
	assert.Equal(t, "new", updated.Description)
	assert.False(t, store.has(b))
	assert.True(t, store.has(a))
}

func TestService_UpdateUploadFailureKeepsRow(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, Input{Name: strPtr("p")}, []reconcile.Upload{file("a.png"), file("b.png")})
	require.NoError(t, err)
	store.failOn = "bad.png"

	_, _, err = svc.Update(ctx, p.ID, UpdateRequest{
		Input:        Input{Name: strPtr("renamed")},
		RemoveImages: []string{p.ImageURLs[1]},
		Uploads:      []reconcile.Upload{file("x.png"), file("bad.png")},
	})
	assert.ErrorIs(t, err, reconcile.ErrStorageUpload)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "p", got.Name)
	assert.Equal(t, p.ImageURLs, got.ImageURLs)
	assert.True(t, store.has(p.ImageURLs[1]))
	assert.Equal(t, 2, store.count())
}

func TestService_UpdateMalformedStoredList(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(`INSERT INTO projects (name, status, technologies, image_urls, created_at, updated_at) VALUES ('legacy', 'active', '[]', '42', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`).Error)
	var p Project
	require.NoError(t, db.First(&p).Error)

	updated, _, err := svc.Update(ctx, p.ID, UpdateRequest{Uploads: []reconcile.Upload{file("n.png")}})
	require.NoError(t, err)
	require.Len(t, updated.ImageURLs, 1)
	assert.Contains(t, updated.ImageURLs[0], "n.png")
}

func TestService_UpdateNotFound(t *testing.T) {
	svc, _, _ := setupService(t)
	_, _, err := svc.Update(context.Background(), 42, UpdateRequest{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, Input{Name: strPtr("p")}, []reconcile.Upload{file("a.png")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.Zero(t, store.count())

	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), repository.ErrNotFound)
}

func TestService_ListOrder(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	for _, name := range []string{"first", "second"} {
		_, err := svc.Create(ctx, Input{Name: strPtr(name)}, nil)
		require.NoError(t, err)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Name)
}
