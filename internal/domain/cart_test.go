package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines_Totals(t *testing.T) {
	lines := Lines{
		{ProductID: 1, Price: 45000, Quantity: 2, Selected: true},
		{ProductID: 2, Price: 8000, Quantity: 1, Selected: false},
	}

	assert.Equal(t, int64(90000), lines.Total())
	assert.Equal(t, 3, lines.Count())
	assert.Equal(t, 1, lines.SelectedCount())
	require.Len(t, lines.Selected(), 1)
	assert.Equal(t, ProductID(1), lines.Selected()[0].ProductID)
}

func TestLines_Empty(t *testing.T) {
	var lines Lines
	assert.Zero(t, lines.Total())
	assert.Zero(t, lines.Count())
	assert.Zero(t, lines.SelectedCount())
	assert.Empty(t, lines.Selected())
	assert.Equal(t, -1, lines.Index(1))
}

func TestNewCartLine_Selected(t *testing.T) {
	line := NewCartLine(Product{ID: 4, Title: "ESP32 DevKit", Price: 45000, Stock: 45}, 2)
	assert.True(t, line.Selected)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 45, line.Stock)
	assert.Equal(t, int64(90000), line.Subtotal())
}

func TestCartLine_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantID       ProductID
		wantSelected bool
	}{
		{"missing selected defaults to true", `{"product_id":1,"quantity":2}`, 1, true},
		{"explicit false kept", `{"product_id":1,"quantity":2,"selected":false}`, 1, false},
		{"explicit true kept", `{"product_id":1,"selected":true}`, 1, true},
		{"string id", `{"product_id":"12"}`, 12, true},
		{"legacy id field", `{"id":9,"title":"Relay","quantity":1}`, 9, true},
		{"product_id wins over id", `{"id":9,"product_id":3}`, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var line CartLine
			require.NoError(t, json.Unmarshal([]byte(tt.input), &line))
			assert.Equal(t, tt.wantID, line.ProductID)
			assert.Equal(t, tt.wantSelected, line.Selected)
		})
	}
}

func TestCartLine_UnmarshalJSON_Invalid(t *testing.T) {
	var line CartLine
	assert.Error(t, json.Unmarshal([]byte(`{"product_id":"abc"}`), &line))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &line))
}
