package integrity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"portfolio-api/core/reconcile"
	"portfolio-api/core/storage"
	"portfolio-api/feature/flipbooks"
	"portfolio-api/feature/integrity/checks"
	"portfolio-api/feature/projects"
	"portfolio-api/feature/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUnsafePurge is returned when some stored image lists could not be read,
// so unreferenced objects cannot be told apart from referenced ones.
var ErrUnsafePurge = errors.New("refusing to purge: some image lists are malformed")

// OrphanReport lists objects under the image folders that no row references.
type OrphanReport struct {
	Scanned   int      `json:"scanned"`
	Orphans   []string `json:"orphans"`
	Malformed int      `json:"malformed"`
}

// PurgeReport is the result of removing orphans.
type PurgeReport struct {
	Removed []string `json:"removed"`
	Failed  []string `json:"failed"`
}

// Service handles integrity checks.
type Service struct {
	store  *storage.ImageStore
	db     *gorm.DB
	models []any
	logger *zap.Logger
}

// NewService creates a new integrity service. models are checked by CheckSchema.
func NewService(store *storage.ImageStore, db *gorm.DB, models []any, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		db:     db,
		models: models,
		logger: logger,
	}
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.store.Client(), s.store.Bucket())
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.store.Client(), s.store.Bucket(), s.logger, missing)
}

// CheckSchema reports missing tables and columns.
func (s *Service) CheckSchema(ctx context.Context) (*checks.SchemaReport, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return checks.CheckSchema(s.db.WithContext(ctx), s.models...)
}

// FindOrphans lists the objects that no project, service or flipbook references.
func (s *Service) FindOrphans(ctx context.Context) (*OrphanReport, error) {
	referenced, malformed, err := s.referencedKeys(ctx)
	if err != nil {
		return nil, err
	}

	var stored []string
	for _, folder := range checks.RequiredFolders {
		keys, err := s.store.ListKeys(ctx, folder)
		if err != nil {
			return nil, err
		}
		stored = append(stored, keys...)
	}

	report := &OrphanReport{
		Scanned:   len(stored),
		Orphans:   checks.Orphans(stored, referenced),
		Malformed: malformed,
	}
	if malformed > 0 {
		s.logger.Warn("Rows with malformed image lists found", zap.Int("count", malformed))
	}
	return report, nil
}

// PurgeOrphans removes every orphan found by FindOrphans.
func (s *Service) PurgeOrphans(ctx context.Context) (*PurgeReport, error) {
	report, err := s.FindOrphans(ctx)
	if err != nil {
		return nil, err
	}
	if report.Malformed > 0 {
		return nil, ErrUnsafePurge
	}

	out := &PurgeReport{Removed: []string{}, Failed: []string{}}
	if len(report.Orphans) == 0 {
		return out, nil
	}

	failed, err := s.store.RemoveKeys(ctx, report.Orphans)
	if err != nil {
		s.logger.Warn("Some orphans could not be removed", zap.Error(err))
	}
	skip := make(map[string]struct{}, len(failed))
	for _, key := range failed {
		skip[key] = struct{}{}
		out.Failed = append(out.Failed, key)
	}
	for _, key := range report.Orphans {
		if _, ok := skip[key]; !ok {
			out.Removed = append(out.Removed, key)
		}
	}

	s.logger.Info("Purged orphaned images", zap.Int("removed", len(out.Removed)), zap.Int("failed", len(out.Failed)))
	return out, nil
}

// referencedKeys collects the object keys referenced by any row, plus the
// number of rows whose stored list could not be decoded.
func (s *Service) referencedKeys(ctx context.Context) (map[string]struct{}, int, error) {
	if s.db == nil {
		return nil, 0, fmt.Errorf("database connection is nil")
	}

	keys := map[string]struct{}{}
	add := func(ref reconcile.ImageRef) {
		if key, ok := s.store.KeyFor(ref); ok {
			keys[key] = struct{}{}
		}
	}
	malformed := 0

	for _, model := range []any{&projects.Project{}, &services.Service{}} {
		var raws []sql.NullString
		if err := s.db.WithContext(ctx).Model(model).Pluck("image_urls", &raws).Error; err != nil {
			return nil, 0, fmt.Errorf("failed to read image lists: %w", err)
		}
		for _, raw := range raws {
			if !raw.Valid {
				continue
			}
			set, ok := reconcile.ParseImageSet(raw.String)
			if !ok {
				malformed++
				continue
			}
			for _, ref := range set {
				add(ref)
			}
		}
	}

	var books []flipbooks.Flipbook
	if err := s.db.WithContext(ctx).Select("id", "pages", "cover_url").Find(&books).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to read flipbook pages: %w", err)
	}
	for _, book := range books {
		add(book.CoverURL)
		for _, page := range book.Pages {
			add(page.ImageURL)
			add(page.ThumbnailURL)
		}
	}

	return keys, malformed, nil
}
