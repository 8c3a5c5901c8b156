package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ProductID identifies a product in the catalog.
type ProductID int64

// String returns the decimal form of the id.
func (id ProductID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseProductID parses a decimal product id. Non-positive ids are rejected.
func ParseProductID(s string) (ProductID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return ProductID(n), nil
}

// UnmarshalJSON accepts both 7 and "7". Any other shape is an error, so every
// id that reaches a store has the same type.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseProductID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid product id %s", data)
	}
	*id = ProductID(n)
	return nil
}

// Product is a snapshot of catalog attributes. Amounts are in paise.
type Product struct {
	ID          ProductID         `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Price       int64             `json:"price"`
	MRP         *int64            `json:"mrp,omitempty"`
	SalePrice   *int64            `json:"sale_price,omitempty"`
	Image       string            `json:"image"`
	Category    string            `json:"category"`
	Stock       int               `json:"stock"`
	Specs       map[string]string `json:"specs,omitempty"`
	Features    []string          `json:"features,omitempty"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// DiscountPercent returns the sale discount against MRP rounded to the
// nearest whole percent, or 0 unless both MRP and a lower sale price are set.
func (p Product) DiscountPercent() int {
	if p.MRP == nil || p.SalePrice == nil || *p.MRP <= 0 || *p.SalePrice >= *p.MRP {
		return 0
	}
	mrp := *p.MRP
	return int(((mrp-*p.SalePrice)*100 + mrp/2) / mrp)
}

// Paise converts a rupee amount as the backend reports it to paise.
func Paise(rupees float64) int64 {
	return int64(math.Round(rupees * 100))
}

// Wishlist is the set of saved product snapshots, in insertion order.
type Wishlist []Product

// Index returns the position of id, or -1.
func (w Wishlist) Index(id ProductID) int {
	for i := range w {
		if w[i].ID == id {
			return i
		}
	}
	return -1
}
