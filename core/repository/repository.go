package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = errors.New("record not found")

// Filter narrows a List call.
type Filter struct {
	// Where holds column equality conditions.
	Where map[string]any
	// Order is a raw ORDER BY clause, e.g. "created_at desc".
	Order string
	// Limit caps the number of rows. Zero means no limit.
	Limit int
}

// Repository provides table access for model T.
type Repository[T any] struct {
	db *gorm.DB
}

// New creates a repository for model T.
func New[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// List returns the rows matching f.
func (r *Repository[T]) List(ctx context.Context, f Filter) ([]T, error) {
	q := r.db.WithContext(ctx).Model(new(T))
	if len(f.Where) > 0 {
		q = q.Where(f.Where)
	}
	if f.Order != "" {
		q = q.Order(f.Order)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list %T: %w", *new(T), err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// First returns the first row matching f, or ErrNotFound.
func (r *Repository[T]) First(ctx context.Context, f Filter) (*T, error) {
	f.Limit = 1
	rows, err := r.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// Get returns the row with the given primary key.
func (r *Repository[T]) Get(ctx context.Context, id uint) (*T, error) {
	var row T
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %T %d: %w", row, id, err)
	}
	return &row, nil
}

// Create inserts row and fills its generated fields.
func (r *Repository[T]) Create(ctx context.Context, row *T) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create %T: %w", *row, err)
	}
	return nil
}

// Update applies fields to the row with the given id and returns the updated row.
// Keys are column names.
func (r *Repository[T]) Update(ctx context.Context, id uint, fields map[string]any) (*T, error) {
	row, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return row, nil
	}
	if err := r.db.WithContext(ctx).Model(row).Updates(fields).Error; err != nil {
		return nil, fmt.Errorf("failed to update %T %d: %w", *row, id, err)
	}
	return r.Get(ctx, id)
}

// Save writes every column of row.
func (r *Repository[T]) Save(ctx context.Context, row *T) error {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return fmt.Errorf("failed to save %T: %w", *row, err)
	}
	return nil
}

// Delete removes the row with the given id.
func (r *Repository[T]) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete %T %d: %w", *new(T), id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
