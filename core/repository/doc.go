// Package repository is a thin generic layer over GORM used by every feature
// for plain table access: list with equality filters, get by id, create,
// partial update, save and delete.
//
// Missing rows are reported as ErrNotFound so handlers can map them to 404
// without importing gorm.
//
//	projects := repository.New[models.Project](db)
//	p, err := projects.Get(ctx, 7)
//	if errors.Is(err, repository.ErrNotFound) { ... }
package repository
