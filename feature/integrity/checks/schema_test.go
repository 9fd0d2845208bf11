package checks

import (
	"testing"

	"portfolio-api/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID    uint
	Name  string
	Color string
}

type gadget struct {
	ID uint
}

func TestCheckSchema(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT)").Error)

	report, err := CheckSchema(db, &widget{}, &gadget{})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Equal(t, TableReport{MissingColumns: []string{"color"}, Status: "missing"}, report.Tables["widgets"])
	assert.Equal(t, "missing", report.Tables["gadgets"].Status)
	assert.Equal(t, []string{"id"}, report.Tables["gadgets"].MissingColumns)

	require.NoError(t, db.AutoMigrate(&widget{}, &gadget{}))
	report, err = CheckSchema(db, &widget{}, &gadget{})
	require.NoError(t, err)
	assert.True(t, report.Matched)

	_, err = CheckSchema(nil)
	assert.Error(t, err)
}
