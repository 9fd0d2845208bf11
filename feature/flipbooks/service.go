package flipbooks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"portfolio-api/core/gallery"
	"portfolio-api/core/reconcile"
	"portfolio-api/core/repository"
	"portfolio-api/core/validate"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrPageNotFound is returned when a page number does not exist.
var ErrPageNotFound = errors.New("page not found")

// Service manages flipbooks and their pages.
type Service struct {
	db     *gorm.DB
	repo   *repository.Repository[Flipbook]
	images *reconcile.Reconciler
	logger *zap.Logger
}

// NewService creates a new flipbook service.
func NewService(db *gorm.DB, images *reconcile.Reconciler, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		repo:   repository.New[Flipbook](db),
		images: images,
		logger: logger,
	}
}

// List returns flipbooks, optionally filtered by their active flag.
func (s *Service) List(ctx context.Context, active *bool) ([]Flipbook, error) {
	f := repository.Filter{Order: "created_at desc, id desc"}
	if active != nil {
		f.Where = map[string]any{"active": *active}
	}
	return s.repo.List(ctx, f)
}

// ByCategory returns the flipbooks of one category.
func (s *Service) ByCategory(ctx context.Context, category string) ([]Flipbook, error) {
	return s.repo.List(ctx, repository.Filter{
		Where: map[string]any{"category": category},
		Order: "created_at desc, id desc",
	})
}

// Get returns one flipbook.
func (s *Service) Get(ctx context.Context, id uint) (*Flipbook, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a flipbook. Pages are renumbered 1..n.
func (s *Service) Create(ctx context.Context, in Input) (*Flipbook, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, validate.Errors{"title": "is required"}
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	fb := &Flipbook{Title: strings.TrimSpace(*in.Title), Active: true, Pages: Pages{}}
	if in.Description != nil {
		fb.Description = *in.Description
	}
	if in.Category != nil {
		fb.Category = *in.Category
	}
	if in.Active != nil {
		fb.Active = *in.Active
	}
	if in.CoverURL != nil {
		fb.CoverURL = *in.CoverURL
	}
	if in.Pages != nil {
		fb.Pages = Pages(in.Pages).Renumbered()
	}
	fb.TotalPages = len(fb.Pages)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(fb).Error; err != nil {
			return err
		}
		if !fb.Active {
			return tx.Model(fb).Update("active", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create flipbook: %w", err)
	}
	return fb, nil
}

// Update applies in to the flipbook. Replacing the pages recomputes total_pages.
func (s *Service) Update(ctx context.Context, id uint, in Input) (*Flipbook, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, validate.Errors{"title": "is required"}
		}
		fields["title"] = title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.Active != nil {
		fields["active"] = *in.Active
	}
	if in.CoverURL != nil {
		fields["cover_url"] = *in.CoverURL
	}
	if in.Pages != nil {
		pages := Pages(in.Pages).Renumbered()
		fields["pages"] = pages
		fields["total_pages"] = len(pages)
	}
	return s.repo.Update(ctx, id, fields)
}

// Delete removes the flipbook and then its uploaded page images, best effort.
func (s *Service) Delete(ctx context.Context, id uint) error {
	fb, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	gallery.LogFailedDeletes(s.logger, s.images.DeleteAll(ctx, pageImages(fb.Pages)))
	s.logger.Info("Flipbook deleted", zap.Uint("id", id), zap.Int("pages", len(fb.Pages)))
	return nil
}

// AddPage appends a page. When upload is set it is stored under the
// flipbooks folder and becomes the page image.
func (s *Service) AddPage(ctx context.Context, id uint, page Page, upload *reconcile.Upload) (*Flipbook, error) {
	fb, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var uploaded reconcile.ImageSet
	if upload != nil {
		uploaded, err = s.images.UploadAll(ctx, Folder, []reconcile.Upload{*upload})
		if err != nil {
			return nil, err
		}
		page.ImageURL = uploaded.Principal()
	}

	page.Number = len(fb.Pages) + 1
	if err := validate.Struct(page); err != nil {
		return nil, err
	}

	pages := append(fb.Pages.Renumbered(), page)
	updated, err := s.repo.Update(ctx, id, map[string]any{
		"pages":       pages,
		"total_pages": len(pages),
	})
	if err != nil {
		gallery.LogFailedDeletes(s.logger, s.images.DeleteAll(context.WithoutCancel(ctx), uploaded))
		return nil, err
	}
	return updated, nil
}

// RemovePage drops the page with the given number and renumbers the rest.
// The page image is deleted from storage afterwards, best effort.
func (s *Service) RemovePage(ctx context.Context, id uint, number int) (*Flipbook, error) {
	fb, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var removed *Page
	kept := make(Pages, 0, len(fb.Pages))
	for i := range fb.Pages {
		if fb.Pages[i].Number == number && removed == nil {
			removed = &fb.Pages[i]
			continue
		}
		kept = append(kept, fb.Pages[i])
	}
	if removed == nil {
		return nil, ErrPageNotFound
	}

	kept = kept.Renumbered()
	updated, err := s.repo.Update(ctx, id, map[string]any{
		"pages":       kept,
		"total_pages": len(kept),
	})
	if err != nil {
		return nil, err
	}

	var orphaned []reconcile.ImageRef
	for _, ref := range pageImages(Pages{*removed}) {
		if !stillUsed(kept, ref) {
			orphaned = append(orphaned, ref)
		}
	}
	gallery.LogFailedDeletes(s.logger, s.images.DeleteAll(ctx, orphaned))
	return updated, nil
}

func pageImages(pages Pages) []reconcile.ImageRef {
	var refs []reconcile.ImageRef
	for _, p := range pages {
		refs = append(refs, p.ImageURL, p.ThumbnailURL)
	}
	return reconcile.Dedup(refs)
}

func stillUsed(pages Pages, ref string) bool {
	for _, p := range pages {
		if p.ImageURL == ref || p.ThumbnailURL == ref {
			return true
		}
	}
	return false
}
