package checkout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
	apperrors "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/errors"
)

func line(id int64, price int64, qty int, selected bool) domain.CartLine {
	return domain.CartLine{
		ProductID: domain.ProductID(id),
		Title:     "item",
		Price:     price,
		Stock:     10,
		Quantity:  qty,
		Selected:  selected,
	}
}

func TestGST(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		want     int64
	}{
		{"zero", 0, 0},
		{"whole rupees", 90000, 16200},
		{"rounds up", 9950, 1800},    // 99.50 * 0.18 = 17.91
		{"rounds down", 1000, 200},   // 10.00 * 0.18 = 1.80
		{"exact half", 2500, 500},    // 25.00 * 0.18 = 4.50
		{"below one rupee", 250, 0},  // 2.50 * 0.18 = 0.45
		{"near whole", 27778, 5000},  // 277.78 * 0.18 = 50.0004
		{"tenths", 30500, 5500},      // 305.00 * 0.18 = 54.90
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GST(tt.subtotal))
		})
	}
}

func TestSummarize(t *testing.T) {
	cart := domain.Lines{
		line(1, 45000, 2, true),
		line(2, 9950, 1, false),
		line(3, 8000, 3, true),
	}

	s, err := Summarize(cart)
	require.NoError(t, err)

	require.Len(t, s.Items, 2)
	assert.Equal(t, 2, s.ItemCount())
	assert.Equal(t, int64(114000), s.Subtotal)
	assert.Equal(t, int64(20500), s.GST) // 1140 * 0.18 = 205.2
	assert.Zero(t, s.Shipping)
	assert.Equal(t, int64(134500), s.Total)
}

func TestSummarize_NothingSelected(t *testing.T) {
	_, err := Summarize(domain.Lines{line(1, 45000, 1, false)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "Please select items to checkout")

	_, err = Summarize(nil)
	assert.Error(t, err)
}
