package projects

import (
	"time"

	"portfolio-api/core/reconcile"
	"portfolio-api/core/repository"
)

// Folder is the bucket folder holding project images.
const Folder = "projects"

// Project statuses.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusCompleted = "completed"
)

// Project is a portfolio project shown on the public site.
type Project struct {
	ID           uint                  `gorm:"primaryKey" json:"id"`
	Name         string                `gorm:"size:200;not null" json:"name"`
	Description  string                `gorm:"type:text" json:"description"`
	Status       string                `gorm:"size:20;not null;default:active" json:"status"`
	StartDate    *time.Time            `json:"start_date"`
	EndDate      *time.Time            `json:"end_date"`
	Budget       *float64              `json:"budget"`
	Client       string                `gorm:"size:200" json:"client"`
	Technologies repository.StringList `json:"technologies"`
	ImageURLs    reconcile.ImageSet    `gorm:"column:image_urls" json:"image_urls"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Input carries the editable fields. Nil fields are left unchanged on update.
type Input struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string  `json:"description"`
	Status       *string  `json:"status" validate:"omitempty,oneof=active inactive completed"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	Budget       *float64 `json:"budget" validate:"omitempty,gte=0"`
	Client       *string  `json:"client" validate:"omitempty,max=200"`
	Technologies []string `json:"technologies"`
}

// UpdateRequest is a project update including image changes.
type UpdateRequest struct {
	Input
	// RemoveImages lists refs to drop from the project.
	RemoveImages []string `json:"remove_images"`
	// PrincipalIndex selects the cover image in the final list.
	PrincipalIndex *int `json:"principal_index"`
	// Uploads are new image files, appended after the retained images.
	Uploads []reconcile.Upload `json:"-"`
}
