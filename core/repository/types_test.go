package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan(`["go","vue"]`))
	assert.Equal(t, StringList{"go", "vue"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Equal(t, StringList{}, l)

	assert.Error(t, l.Scan(12))
	assert.Error(t, l.Scan("{bad"))

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	data, err := json.Marshal(struct {
		Tags StringList `json:"tags"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":[]}`, string(data))
}

type taggedNote struct {
	ID   uint `gorm:"primaryKey"`
	Tags StringList
}

func TestStringList_RoundTripThroughDB(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.AutoMigrate(&taggedNote{}))
	repo := New[taggedNote](db)

	n := &taggedNote{Tags: StringList{"a", "b"}}
	require.NoError(t, repo.Create(context.Background(), n))

	got, err := repo.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, StringList{"a", "b"}, got.Tags)
}
