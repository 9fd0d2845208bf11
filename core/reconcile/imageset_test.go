package reconcile

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImageSet(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		want   ImageSet
		wantOK bool
	}{
		{"Nil", nil, ImageSet{}, true},
		{"NativeList", []string{"a", "b", "a"}, ImageSet{"a", "b"}, true},
		{"AnyList", []any{"a", "b"}, ImageSet{"a", "b"}, true},
		{"AnyListWithNumber", []any{"a", 3.0}, ImageSet{}, false},
		{"JSONString", `["a","b"]`, ImageSet{"a", "b"}, true},
		{"JSONBytes", []byte(`["x"]`), ImageSet{"x"}, true},
		{"DoubleEncoded", `"[\"a\",\"b\"]"`, ImageSet{"a", "b"}, true},
		{"EmptyString", "", ImageSet{}, true},
		{"JSONNull", "null", ImageSet{}, true},
		{"ScalarNumber", 42, ImageSet{}, false},
		{"ScalarString", "https://cdn/img.png", ImageSet{}, false},
		{"JSONObject", `{"url":"a"}`, ImageSet{}, false},
		{"Bool", true, ImageSet{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseImageSet(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestImageSet_ScanValue(t *testing.T) {
	var s ImageSet
	require.NoError(t, s.Scan([]byte(`["a","b","a"]`)))
	assert.Equal(t, ImageSet{"a", "b"}, s)

	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)

	require.NoError(t, s.Scan(int64(7)))
	assert.Equal(t, ImageSet{}, s)

	var empty ImageSet
	v, err = empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestImageSet_JSON(t *testing.T) {
	var payload struct {
		Images ImageSet `json:"images"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"images":"[\"a\",\"b\"]"}`), &payload))
	assert.Equal(t, ImageSet{"a", "b"}, payload.Images)

	require.NoError(t, json.Unmarshal([]byte(`{"images":5}`), &payload))
	assert.Equal(t, ImageSet{}, payload.Images)

	payload.Images = nil
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"images":[]}`, string(data))
}

func TestImageSet_Helpers(t *testing.T) {
	s := ImageSet{"a", "b"}
	assert.Equal(t, "a", s.Principal())
	assert.True(t, s.Contains("b"))
	assert.False(t, s.Contains("c"))
	assert.Equal(t, "", ImageSet{}.Principal())
}

func TestReconcile_MalformedExistingBehavesAsEmpty(t *testing.T) {
	for _, raw := range []any{42, "not-a-list", map[string]any{"a": 1}} {
		existing, ok := ParseImageSet(raw)
		assert.False(t, ok)

		store := newFakeStore()
		r := newTestReconciler(store, 1)

		malformed, err := r.Reconcile(context.Background(), Request{Existing: existing, Uploads: files("u")})
		require.NoError(t, err)

		store2 := newFakeStore()
		r2 := newTestReconciler(store2, 1)
		empty, err := r2.Reconcile(context.Background(), Request{Existing: ImageSet{}, Uploads: files("u")})
		require.NoError(t, err)

		assert.Equal(t, empty.FinalSet, malformed.FinalSet)
	}
}
