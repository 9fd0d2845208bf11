package projects

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio-api/core/gallery"
	"portfolio-api/core/reconcile"
	"portfolio-api/core/repository"
	"portfolio-api/core/utils"
	"portfolio-api/core/validate"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service manages projects and their images.
type Service struct {
	db     *gorm.DB
	repo   *repository.Repository[Project]
	images *reconcile.Reconciler
	logger *zap.Logger
}

// NewService creates a new project service.
func NewService(db *gorm.DB, images *reconcile.Reconciler, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		repo:   repository.New[Project](db),
		images: images,
		logger: logger,
	}
}

// List returns all projects, newest first.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	return s.repo.List(ctx, repository.Filter{Order: "created_at desc, id desc"})
}

// Get returns one project.
func (s *Service) Get(ctx context.Context, id uint) (*Project, error) {
	return s.repo.Get(ctx, id)
}

// Create validates in, uploads the files and inserts the project.
// The first uploaded file becomes the principal image.
func (s *Service) Create(ctx context.Context, in Input, uploads []reconcile.Upload) (*Project, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, validate.Errors{"name": "is required"}
	}
	fields, err := s.fields(in)
	if err != nil {
		return nil, err
	}

	project := &Project{Status: StatusActive, Technologies: repository.StringList{}}
	apply(project, fields)

	refs, err := s.images.UploadAll(ctx, Folder, uploads)
	if err != nil {
		return nil, err
	}
	project.ImageURLs = refs

	if err := s.repo.Create(ctx, project); err != nil {
		// The row was never written, so the uploaded files belong to nobody.
		gallery.LogFailedDeletes(s.logger, s.images.DeleteAll(context.WithoutCancel(ctx), refs))
		return nil, err
	}

	s.logger.Info("Project created", zap.Uint("id", project.ID), zap.Int("images", len(refs)))
	return project, nil
}

// Update applies req to the project. Image changes are reconciled against
// storage first; if an upload fails the row is left untouched.
func (s *Service) Update(ctx context.Context, id uint, req UpdateRequest) (*Project, *reconcile.Result, error) {
	fields, err := s.fields(req.Input)
	if err != nil {
		return nil, nil, err
	}

	existing, err := gallery.LoadImageSet(ctx, s.db, &Project{}, "image_urls", id, s.logger)
	if err != nil {
		return nil, nil, err
	}

	res, err := s.images.Reconcile(ctx, reconcile.Request{
		Existing:       existing,
		Removals:       req.RemoveImages,
		Uploads:        req.Uploads,
		PrincipalIndex: req.PrincipalIndex,
		Folder:         Folder,
	})
	if err != nil {
		return nil, nil, err
	}
	gallery.LogFailedDeletes(s.logger, res.FailedDeletes)

	fields["image_urls"] = res.FinalSet
	project, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		gallery.LogFailedDeletes(s.logger, s.images.DeleteAll(context.WithoutCancel(ctx), res.UploadedRefs))
		return nil, nil, err
	}

	s.logger.Info("Project updated",
		zap.Uint("id", id),
		zap.Int("images", len(res.FinalSet)),
		zap.Int("uploaded", len(res.UploadedRefs)),
		zap.Int("failed_deletes", len(res.FailedDeletes)),
	)
	return project, res, nil
}

// Delete removes the project row and then its images, best effort.
func (s *Service) Delete(ctx context.Context, id uint) error {
	project, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	failures := s.images.DeleteAll(ctx, project.ImageURLs)
	gallery.LogFailedDeletes(s.logger, failures)
	s.logger.Info("Project deleted", zap.Uint("id", id), zap.Int("images", len(project.ImageURLs)))
	return nil
}

// fields validates in and converts it to a column map.
func (s *Service) fields(in Input) (map[string]any, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validate.Errors{"name": "is required"}
		}
		fields["name"] = name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Status != nil {
		fields["status"] = *in.Status
	}
	if in.Budget != nil {
		fields["budget"] = *in.Budget
	}
	if in.Client != nil {
		fields["client"] = *in.Client
	}
	if in.Technologies != nil {
		fields["technologies"] = repository.StringList(in.Technologies)
	}
	for column, raw := range map[string]*string{"start_date": in.StartDate, "end_date": in.EndDate} {
		if raw == nil {
			continue
		}
		d, err := utils.ParseDate(*raw)
		if err != nil {
			return nil, validate.Errors{column: fmt.Sprintf("must be a date: %v", err)}
		}
		fields[column] = d
	}
	return fields, nil
}

// apply copies validated fields onto a new project.
func apply(p *Project, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "description":
			p.Description = v.(string)
		case "status":
			p.Status = v.(string)
		case "budget":
			b := v.(float64)
			p.Budget = &b
		case "client":
			p.Client = v.(string)
		case "technologies":
			p.Technologies = v.(repository.StringList)
		case "start_date":
			p.StartDate = v.(*time.Time)
		case "end_date":
			p.EndDate = v.(*time.Time)
		}
	}
}
