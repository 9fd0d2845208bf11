// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to configure
// connections for the supported drivers:
//
//   - postgres: the hosted Postgres backing the site (Supabase), through pgx.
//     Statements use the simple protocol so the transaction pooler works.
//   - mysql: self-hosted deployments.
//   - sqlite: local development and tests (":memory:").
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns compare the live schema against the GORM
// models, which the integrity feature reports on.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	table, missing, err := database.MissingColumns(db, &projects.Project{})
package database
