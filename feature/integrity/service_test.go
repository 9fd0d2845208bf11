package integrity

import (
	"context"
	"errors"
	"testing"

	"portfolio-api/core/database"
	"portfolio-api/core/reconcile"
	"portfolio-api/core/storage"
	"portfolio-api/core/storage/mocks"
	"portfolio-api/feature/flipbooks"
	"portfolio-api/feature/projects"
	"portfolio-api/feature/services"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const baseURL = "http://localhost:9000/portfolio/"

func allModels() []any {
	var models []any
	models = append(models, projects.Models()...)
	models = append(models, services.Models()...)
	models = append(models, flipbooks.Models()...)
	return models
}

func setupService(t *testing.T) (*Service, *mocks.Client, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(allModels()...))

	client := new(mocks.Client)
	store, err := storage.NewImageStore(client, storage.Config{
		Endpoint:      "localhost:9000",
		Bucket:        "portfolio",
		MaxUploadSize: "1MB",
	}, zap.NewNop())
	require.NoError(t, err)

	return NewService(store, db, allModels(), zap.NewNop()), client, db
}

// listing makes ListObjects return keys for the recursive listing of folder.
func listing(client *mocks.Client, folder string, keys ...string) {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	client.On("ListObjects", mock.Anything, "portfolio", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
		return opts.Recursive && opts.Prefix == folder+"/"
	})).Return((<-chan minio.ObjectInfo)(ch)).Once()
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&projects.Project{
		Name:      "site",
		ImageURLs: reconcile.ImageSet{baseURL + "projects/used.png", "https://elsewhere.example.com/x.png"},
	}).Error)
	require.NoError(t, db.Create(&services.Service{
		Name:      "design",
		ImageURLs: reconcile.ImageSet{"services/used.png"},
	}).Error)
	require.NoError(t, db.Create(&flipbooks.Flipbook{
		Title:    "catalogue",
		CoverURL: baseURL + "flipbooks/cover.png",
		Pages: flipbooks.Pages{
			{Number: 1, ImageURL: baseURL + "flipbooks/p1.png", ThumbnailURL: baseURL + "flipbooks/t1.png"},
		},
	}).Error)
}

func TestService_FindOrphans(t *testing.T) {
	svc, client, db := setupService(t)
	seed(t, db)

	listing(client, "projects", "projects/", "projects/used.png", "projects/stale.png")
	listing(client, "services", "services/used.png", "services/old.jpg")
	listing(client, "flipbooks", "flipbooks/cover.png", "flipbooks/p1.png", "flipbooks/t1.png", "flipbooks/p9.png")

	report, err := svc.FindOrphans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, report.Scanned)
	assert.Equal(t, []string{"flipbooks/p9.png", "projects/stale.png", "services/old.jpg"}, report.Orphans)
	assert.Zero(t, report.Malformed)
}

func TestService_PurgeOrphans(t *testing.T) {
	svc, client, db := setupService(t)
	seed(t, db)

	listing(client, "projects", "projects/used.png", "projects/stale.png")
	listing(client, "services", "services/old.jpg")
	listing(client, "flipbooks")

	errCh := make(chan minio.RemoveObjectError, 1)
	errCh <- minio.RemoveObjectError{ObjectName: "services/old.jpg", Err: errors.New("denied")}
	close(errCh)
	client.On("RemoveObjects", mock.Anything, "portfolio", mock.Anything, mock.Anything).
		Return((<-chan minio.RemoveObjectError)(errCh)).Once()

	report, err := svc.PurgeOrphans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"projects/stale.png"}, report.Removed)
	assert.Equal(t, []string{"services/old.jpg"}, report.Failed)
	client.AssertExpectations(t)
}

func TestService_PurgeRefusesWithMalformedLists(t *testing.T) {
	svc, client, db := setupService(t)
	seed(t, db)
	require.NoError(t, db.Exec("UPDATE projects SET image_urls = '42'").Error)

	listing(client, "projects", "projects/used.png")
	listing(client, "services")
	listing(client, "flipbooks")

	_, err := svc.PurgeOrphans(context.Background())
	assert.ErrorIs(t, err, ErrUnsafePurge)
	client.AssertNotCalled(t, "RemoveObjects", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_PurgeNothing(t *testing.T) {
	svc, client, _ := setupService(t)
	listing(client, "projects")
	listing(client, "services")
	listing(client, "flipbooks")

	report, err := svc.PurgeOrphans(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Removed)
	client.AssertNotCalled(t, "RemoveObjects", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_CheckSchema(t *testing.T) {
	svc, _, db := setupService(t)

	report, err := svc.CheckSchema(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Matched)

	require.NoError(t, db.Migrator().DropColumn(&services.Service{}, "icon"))
	report, err = svc.CheckSchema(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Equal(t, []string{"icon"}, report.Tables["services"].MissingColumns)
}
