package services

import (
	"context"
	"strings"

	"portfolio-api/core/gallery"
	"portfolio-api/core/reconcile"
	"portfolio-api/core/repository"
	"portfolio-api/core/validate"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Manager manages services and their images.
type Manager struct {
	db     *gorm.DB
	repo   *repository.Repository[Service]
	images *reconcile.Reconciler
	logger *zap.Logger
}

// NewManager creates a new services manager.
func NewManager(db *gorm.DB, images *reconcile.Reconciler, logger *zap.Logger) *Manager {
	return &Manager{
		db:     db,
		repo:   repository.New[Service](db),
		images: images,
		logger: logger,
	}
}

// List returns services, optionally filtered by their active flag.
func (m *Manager) List(ctx context.Context, active *bool) ([]Service, error) {
	f := repository.Filter{Order: "created_at desc, id desc"}
	if active != nil {
		f.Where = map[string]any{"active": *active}
	}
	return m.repo.List(ctx, f)
}

// ByCategory returns the services of one category.
func (m *Manager) ByCategory(ctx context.Context, category string) ([]Service, error) {
	return m.repo.List(ctx, repository.Filter{
		Where: map[string]any{"category": category},
		Order: "created_at desc, id desc",
	})
}

// Get returns one service.
func (m *Manager) Get(ctx context.Context, id uint) (*Service, error) {
	return m.repo.Get(ctx, id)
}

// Create validates in, uploads the files and inserts the service.
func (m *Manager) Create(ctx context.Context, in Input, uploads []reconcile.Upload) (*Service, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, validate.Errors{"name": "is required"}
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	svc := &Service{
		Name:     strings.TrimSpace(*in.Name),
		Active:   true,
		Features: repository.StringList{},
		Price:    in.Price,
	}
	if in.Description != nil {
		svc.Description = *in.Description
	}
	if in.Category != nil {
		svc.Category = *in.Category
	}
	if in.Active != nil {
		svc.Active = *in.Active
	}
	if in.Icon != nil {
		svc.Icon = *in.Icon
	}
	if in.Features != nil {
		svc.Features = in.Features
	}
	if in.Duration != nil {
		svc.Duration = *in.Duration
	}

	refs, err := m.images.UploadAll(ctx, Folder, uploads)
	if err != nil {
		return nil, err
	}
	svc.ImageURLs = refs

	// gorm skips false for a column with a default on insert, so write it explicitly.
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(svc).Error; err != nil {
			return err
		}
		if !svc.Active {
			return tx.Model(svc).Update("active", false).Error
		}
		return nil
	})
	if err != nil {
		gallery.LogFailedDeletes(m.logger, m.images.DeleteAll(context.WithoutCancel(ctx), refs))
		return nil, err
	}

	m.logger.Info("Service created", zap.Uint("id", svc.ID), zap.Int("images", len(refs)))
	return svc, nil
}

// Update applies req to the service, reconciling its images first.
func (m *Manager) Update(ctx context.Context, id uint, req UpdateRequest) (*Service, *reconcile.Result, error) {
	if err := validate.Struct(req.Input); err != nil {
		return nil, nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, nil, validate.Errors{"name": "is required"}
	}
	fields := fieldsOf(req.Input)

	existing, err := gallery.LoadImageSet(ctx, m.db, &Service{}, "image_urls", id, m.logger)
	if err != nil {
		return nil, nil, err
	}

	res, err := m.images.Reconcile(ctx, reconcile.Request{
		Existing:       existing,
		Removals:       req.RemoveImages,
		Uploads:        req.Uploads,
		PrincipalIndex: req.PrincipalIndex,
		Folder:         Folder,
	})
	if err != nil {
		return nil, nil, err
	}
	gallery.LogFailedDeletes(m.logger, res.FailedDeletes)

	fields["image_urls"] = res.FinalSet
	svc, err := m.repo.Update(ctx, id, fields)
	if err != nil {
		gallery.LogFailedDeletes(m.logger, m.images.DeleteAll(context.WithoutCancel(ctx), res.UploadedRefs))
		return nil, nil, err
	}

	m.logger.Info("Service updated",
		zap.Uint("id", id),
		zap.Int("images", len(res.FinalSet)),
		zap.Int("failed_deletes", len(res.FailedDeletes)),
	)
	return svc, res, nil
}

// Delete removes the service row and then its images, best effort.
func (m *Manager) Delete(ctx context.Context, id uint) error {
	svc, err := m.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := m.repo.Delete(ctx, id); err != nil {
		return err
	}
	gallery.LogFailedDeletes(m.logger, m.images.DeleteAll(ctx, svc.ImageURLs))
	m.logger.Info("Service deleted", zap.Uint("id", id))
	return nil
}

func fieldsOf(in Input) map[string]any {
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
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
	if in.Icon != nil {
		fields["icon"] = *in.Icon
	}
	if in.Features != nil {
		fields["features"] = repository.StringList(in.Features)
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.Duration != nil {
		fields["duration"] = *in.Duration
	}
	return fields
}
