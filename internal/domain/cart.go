package domain

import "encoding/json"

// CartLine is one product's presence in the cart. Product attributes are a
// snapshot taken when the line was created.
type CartLine struct {
	ProductID ProductID `json:"product_id"`
	Title     string    `json:"title"`
	Price     int64     `json:"price"`
	Image     string    `json:"image"`
	Category  string    `json:"category"`
	Stock     int       `json:"stock"`
	Quantity  int       `json:"quantity"`
	Selected  bool      `json:"selected"`
}

// NewCartLine creates a selected line for p.
func NewCartLine(p Product, quantity int) CartLine {
	return CartLine{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Image:     p.Image,
		Category:  p.Category,
		Stock:     p.Stock,
		Quantity:  quantity,
		Selected:  true,
	}
}

// Subtotal is price times quantity.
func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// UnmarshalJSON defaults a missing selected flag to true and accepts the
// older "id" field in place of "product_id".
func (l *CartLine) UnmarshalJSON(data []byte) error {
	type plain CartLine
	aux := struct {
		*plain
		ID       *ProductID `json:"id"`
		Selected *bool      `json:"selected"`
	}{plain: (*plain)(l)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if l.ProductID == 0 && aux.ID != nil {
		l.ProductID = *aux.ID
	}
	l.Selected = aux.Selected == nil || *aux.Selected
	return nil
}

// Lines is the cart collection.
type Lines []CartLine

// Index returns the position of the line for id, or -1.
func (ls Lines) Index(id ProductID) int {
	for i := range ls {
		if ls[i].ProductID == id {
			return i
		}
	}
	return -1
}

// Total sums price times quantity over selected lines.
func (ls Lines) Total() int64 {
	var total int64
	for _, l := range ls {
		if l.Selected {
			total += l.Subtotal()
		}
	}
	return total
}

// Count sums quantities over all lines, selected or not.
func (ls Lines) Count() int {
	var count int
	for _, l := range ls {
		count += l.Quantity
	}
	return count
}

// SelectedCount returns the number of selected lines.
func (ls Lines) SelectedCount() int {
	var n int
	for _, l := range ls {
		if l.Selected {
			n++
		}
	}
	return n
}

// Selected returns a copy of the selected lines.
func (ls Lines) Selected() Lines {
	out := make(Lines, 0, len(ls))
	for _, l := range ls {
		if l.Selected {
			out = append(out, l)
		}
	}
	return out
}
