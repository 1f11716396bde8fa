package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s/learnhub/internal/models"
)

func TestDecodeListShapes(t *testing.T) {
	want := []models.Category{
		{ID: "c1", Name: "Programming"},
		{ID: "c2", Name: "Design"},
	}

	tests := []struct {
		name string
		raw  string
	}{
		{name: "bare array", raw: `[{"id":"c1","name":"Programming"},{"id":"c2","name":"Design"}]`},
		{name: "data envelope", raw: `{"data":[{"id":"c1","name":"Programming"},{"id":"c2","name":"Design"}]}`},
		{name: "named key", raw: `{"categories":[{"id":"c1","name":"Programming"},{"id":"c2","name":"Design"}]}`},
		{name: "named key in data", raw: `{"success":true,"data":{"categories":[{"id":"c1","name":"Programming"},{"id":"c2","name":"Design"}],"total":2}}`},
		{name: "mongo ids", raw: `{"categories":[{"_id":"c1","name":"Programming"},{"_id":"c2","name":"Design"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []models.Category
			require.NoError(t, DecodeList([]byte(tt.raw), &got, "categories"))
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeListEmptyAndMalformed(t *testing.T) {
	var got []models.Category
	require.NoError(t, DecodeList([]byte(`null`), &got, "categories"))
	assert.Empty(t, got)

	require.NoError(t, DecodeList([]byte(`{"categories":null}`), &got, "categories"))
	assert.Empty(t, got)

	err := DecodeList([]byte(`{"items":[1,2]}`), &got, "categories")
	assert.ErrorIs(t, err, ErrMalformed)

	err = DecodeList([]byte(`"nope"`), &got, "categories")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeObjectShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "bare", raw: `{"id":7,"name":"Go","price":"1500"}`},
		{name: "data", raw: `{"data":{"id":7,"name":"Go","price":1500}}`},
		{name: "named", raw: `{"subcategory":{"_id":"7","name":"Go","price":1500}}`},
		{name: "list of one", raw: `{"data":[{"id":"7","name":"Go","price":1500}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.Subcategory
			require.NoError(t, DecodeObject([]byte(tt.raw), &got, "subcategory"))
			assert.Equal(t, models.ID("7"), got.ID)
			assert.Equal(t, "Go", got.Name)
			assert.Equal(t, 1500.0, got.Price.Float())
		})
	}
}

func TestDecodeObjectEmpty(t *testing.T) {
	var got models.Subcategory
	assert.ErrorIs(t, DecodeObject([]byte(``), &got), ErrMalformed)
	assert.ErrorIs(t, DecodeObject([]byte(`[]`), &got), ErrMalformed)
}

func TestFailureEnvelope(t *testing.T) {
	assert.True(t, failureEnvelope([]byte(`{"success":false,"message":"bad"}`)))
	assert.True(t, failureEnvelope([]byte(`{"status":"error","message":"bad"}`)))
	assert.False(t, failureEnvelope([]byte(`{"success":true}`)))
	assert.False(t, failureEnvelope([]byte(`{"status":"approved"}`)))
	assert.False(t, failureEnvelope([]byte(`[]`)))
}
