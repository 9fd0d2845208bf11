package services

import (
	"context"
	"strings"
	"testing"

	"portfolio-api/core/database"
	"portfolio-api/core/reconcile"
	"portfolio-api/core/repository"
	"portfolio-api/core/storage"
	"portfolio-api/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func setupManager(t *testing.T) (*Manager, *mocks.Client) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))

	client := new(mocks.Client)
	store, err := storage.NewImageStore(client, storage.Config{
		Endpoint:      "localhost:9000",
		Bucket:        "portfolio",
		MaxUploadSize: "1MB",
	}, zap.NewNop())
	require.NoError(t, err)

	rec := reconcile.New(store, zap.NewNop(), reconcile.Options{UploadConcurrency: 2, RollbackTimeoutSeconds: 5})
	return NewManager(db, rec, zap.NewNop()), client
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestManager_CreateUploadsToServicesFolder(t *testing.T) {
	m, client := setupManager(t)
	client.On("PutObject", mock.Anything, "portfolio",
		mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, "services/") }),
		mock.Anything, mock.Anything, mock.Anything,
	).Return(minio.UploadInfo{}, nil).Twice()

	svc, err := m.Create(context.Background(), Input{
		Name:     strPtr("Consulting"),
		Category: strPtr("advice"),
		Features: []string{"audit"},
	}, []reconcile.Upload{
		{Filename: "a.png", Data: pngData},
		{Filename: "b.png", Data: pngData},
	})
	require.NoError(t, err)
	assert.True(t, svc.Active)
	assert.Len(t, svc.ImageURLs, 2)
	assert.True(t, strings.HasPrefix(svc.ImageURLs[0], "http://localhost:9000/portfolio/services/"))
	client.AssertExpectations(t)
}

func TestManager_CreateInactive(t *testing.T) {
	m, _ := setupManager(t)
	svc, err := m.Create(context.Background(), Input{Name: strPtr("Old"), Active: boolPtr(false)}, nil)
	require.NoError(t, err)

	got, err := m.Get(context.Background(), svc.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestManager_ListFilters(t *testing.T) {
	m, _ := setupManager(t)
	ctx := context.Background()

	_, err := m.Create(ctx, Input{Name: strPtr("a"), Category: strPtr("web")}, nil)
	require.NoError(t, err)
	_, err = m.Create(ctx, Input{Name: strPtr("b"), Category: strPtr("web"), Active: boolPtr(false)}, nil)
	require.NoError(t, err)
	_, err = m.Create(ctx, Input{Name: strPtr("c"), Category: strPtr("mobile")}, nil)
	require.NoError(t, err)

	all, err := m.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := m.List(ctx, boolPtr(true))
	require.NoError(t, err)
	assert.Len(t, active, 2)

	inactive, err := m.List(ctx, boolPtr(false))
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, "b", inactive[0].Name)

	web, err := m.ByCategory(ctx, "web")
	require.NoError(t, err)
	assert.Len(t, web, 2)
}

func TestManager_UpdateRemovesAndReorders(t *testing.T) {
	m, client := setupManager(t)
	ctx := context.Background()
	client.On("PutObject", mock.Anything, "portfolio", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	svc, err := m.Create(ctx, Input{Name: strPtr("s")}, []reconcile.Upload{
		{Filename: "a.png", Data: pngData},
		{Filename: "b.png", Data: pngData},
	})
	require.NoError(t, err)
	a, b := svc.ImageURLs[0], svc.ImageURLs[1]
	keyA, _ := strings.CutPrefix(a, "http://localhost:9000/portfolio/")

	// The removed object is already gone from the bucket; that still counts as deleted.
	client.On("StatObject", mock.Anything, "portfolio", keyA, mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404})

	idx := 1
	updated, res, err := m.Update(ctx, svc.ID, UpdateRequest{
		Input:          Input{Price: func() *float64 { p := 99.5; return &p }()},
		RemoveImages:   []string{a},
		Uploads:        []reconcile.Upload{{Filename: "c.png", Data: pngData}},
		PrincipalIndex: &idx,
	})
	require.NoError(t, err)
	assert.Empty(t, res.FailedDeletes)
	require.Len(t, updated.ImageURLs, 2)
	assert.Equal(t, res.UploadedRefs[0], updated.ImageURLs[0])
	assert.Equal(t, b, updated.ImageURLs[1])
	require.NotNil(t, updated.Price)
	assert.Equal(t, 99.5, *updated.Price)
}

func TestManager_UpdateRejectsBlankName(t *testing.T) {
	m, _ := setupManager(t)
	svc, err := m.Create(context.Background(), Input{Name: strPtr("s")}, nil)
	require.NoError(t, err)

	_, _, err = m.Update(context.Background(), svc.ID, UpdateRequest{Input: Input{Name: strPtr("  ")}})
	assert.Error(t, err)
}

func TestManager_DeleteMissing(t *testing.T) {
	m, _ := setupManager(t)
	assert.ErrorIs(t, m.Delete(context.Background(), 7), repository.ErrNotFound)
}
