// Package checkout prices the selected cart lines and starts payment with
// the storefront backend.
package checkout

import (
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
	apperrors "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/errors"
)

// GSTPercent is the flat goods and services tax applied at checkout.
const GSTPercent = 18

// Summary is the priced order for the selected cart lines. Amounts are paise.
type Summary struct {
	Items    []domain.CartLine `json:"items"`
	Subtotal int64             `json:"subtotal"`
	GST      int64             `json:"gst"`
	Shipping int64             `json:"shipping"`
	Total    int64             `json:"total"`
}

// ItemCount is the number of distinct products in the order.
func (s Summary) ItemCount() int {
	return len(s.Items)
}

// Summarize prices the selected lines of cart. An order with nothing
// selected is rejected.
func Summarize(cart domain.Lines) (Summary, error) {
	selected := cart.Selected()
	if len(selected) == 0 {
		return Summary{}, apperrors.InvalidInput("Please select items to checkout")
	}

	subtotal := selected.Total()
	gst := GST(subtotal)
	return Summary{
		Items:    selected,
		Subtotal: subtotal,
		GST:      gst,
		Shipping: 0,
		Total:    subtotal + gst,
	}, nil
}

// GST returns the tax on subtotal rounded half up to whole rupees, in paise.
func GST(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	rupees := (subtotal*GSTPercent + 5000) / 10000
	return rupees * 100
}
