package services

import (
	"time"

	"portfolio-api/core/reconcile"
	"portfolio-api/core/repository"
)

// Folder is the bucket folder holding service images.
const Folder = "services"

// Service is an offering listed on the public site.
type Service struct {
	ID          uint                  `gorm:"primaryKey" json:"id"`
	Name        string                `gorm:"size:200;not null" json:"name"`
	Description string                `gorm:"type:text" json:"description"`
	Category    string                `gorm:"size:100;index" json:"category"`
	Active      bool                  `gorm:"not null;default:true;index" json:"active"`
	Icon        string                `gorm:"size:200" json:"icon"`
	Features    repository.StringList `json:"features"`
	Price       *float64              `json:"price"`
	Duration    string                `gorm:"size:100" json:"duration"`
	ImageURLs   reconcile.ImageSet    `gorm:"column:image_urls" json:"image_urls"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// Input carries the editable fields. Nil fields are left unchanged on update.
type Input struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	Active      *bool    `json:"active"`
	Icon        *string  `json:"icon"`
	Features    []string `json:"features"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Duration    *string  `json:"duration" validate:"omitempty,max=100"`
}

// UpdateRequest is a service update including image changes.
type UpdateRequest struct {
	Input
	RemoveImages   []string           `json:"remove_images"`
	PrincipalIndex *int               `json:"principal_index"`
	Uploads        []reconcile.Upload `json:"-"`
}
