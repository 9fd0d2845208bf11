package flipbooks

import (
	"database/sql/driver"
	"encoding/json"
	"sort"
	"time"

	"portfolio-api/core/repository"
)

// Folder is the bucket folder holding uploaded page images.
const Folder = "flipbooks"

// Page is one page of a flipbook.
type Page struct {
	Number       int    `json:"number" validate:"gte=1"`
	ImageURL     string `json:"image_url" validate:"required"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Pages is the ordered page list, stored as JSON text.
type Pages []Page

// Scan implements sql.Scanner.
func (p *Pages) Scan(src any) error {
	var out []Page
	if err := repository.ScanJSON(src, &out); err != nil {
		return err
	}
	if out == nil {
		out = []Page{}
	}
	*p = out
	return nil
}

// Value implements driver.Valuer.
func (p Pages) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return repository.JSONValue([]Page(p))
}

// MarshalJSON never emits null.
func (p Pages) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Page(p))
}

// GormDataType stores the pages as text.
func (Pages) GormDataType() string {
	return "text"
}

// Renumbered returns the pages ordered by their number and renumbered 1..n.
func (p Pages) Renumbered() Pages {
	out := make(Pages, len(p))
	copy(out, p)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	for i := range out {
		out[i].Number = i + 1
	}
	return out
}

// Flipbook is a paged catalogue or brochure.
type Flipbook struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:100;index" json:"category"`
	Active      bool      `gorm:"not null;default:true;index" json:"active"`
	Pages       Pages     `json:"pages"`
	TotalPages  int       `gorm:"not null;default:0" json:"total_pages"`
	CoverURL    string    `gorm:"size:500" json:"cover_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input carries the editable fields. Nil fields are left unchanged on update.
type Input struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Active      *bool   `json:"active"`
	Pages       []Page  `json:"pages" validate:"omitempty,dive"`
	CoverURL    *string `json:"cover_url" validate:"omitempty,max=500"`
}
