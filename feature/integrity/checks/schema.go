package checks

import (
	"fmt"

	"portfolio-api/core/database"

	"gorm.io/gorm"
)

// SchemaReport is the result of comparing the database against the models.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

// TableReport lists what a single table lacks.
type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "missing", "error"
}

// CheckSchema verifies that every model has its table and columns.
func CheckSchema(db *gorm.DB, models ...any) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Matched: true,
		Tables:  make(map[string]TableReport, len(models)),
		Errors:  []string{},
	}

	for _, model := range models {
		table, missing, err := database.MissingColumns(db, model)
		if err != nil {
			report.Matched = false
			report.Errors = append(report.Errors, err.Error())
			if table != "" {
				report.Tables[table] = TableReport{Status: "error"}
			}
			continue
		}

		tr := TableReport{MissingColumns: missing, Status: "ok"}
		if len(missing) > 0 {
			report.Matched = false
			tr.Status = "missing"
		}
		report.Tables[table] = tr
	}

	return report, nil
}
