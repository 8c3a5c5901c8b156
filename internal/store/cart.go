package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
)

// Outcome is the result of UpdateQuantity.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	// OutcomeIgnored covers quantities below 1 and unknown products.
	OutcomeIgnored
	OutcomeStockExceeded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeStockExceeded:
		return "stock_exceeded"
	default:
		return "unknown"
	}
}

// Cart owns one session's cart lines. Every mutation writes the full
// collection through the persister before returning. A failed write is
// logged and the in-memory state is kept.
type Cart struct {
	mu       sync.Mutex
	key      string
	lines    domain.Lines
	persist  Persister[domain.CartLine]
	notifier Notifier
	logger   *slog.Logger
}

// NewCart creates a cart stored under key and hydrates it from p.
func NewCart(ctx context.Context, key string, p Persister[domain.CartLine], n Notifier, logger *slog.Logger) *Cart {
	c := &Cart{
		key:      key,
		persist:  p,
		notifier: n,
		logger:   logger,
	}
	c.lines = c.sanitize(ctx, p.Load(ctx, key))
	return c
}

// sanitize drops lines that break the cart invariants, which can only come
// from hand-edited or very old stored data.
func (c *Cart) sanitize(ctx context.Context, loaded []domain.CartLine) domain.Lines {
	lines := make(domain.Lines, 0, len(loaded))
	for _, l := range loaded {
		switch {
		case l.ProductID < 1, l.Quantity < 1, l.Stock < 1:
		case lines.Index(l.ProductID) >= 0:
		default:
			if l.Quantity > l.Stock {
				l.Quantity = l.Stock
			}
			lines = append(lines, l)
			continue
		}
		c.logger.WarnContext(ctx, "dropping invalid stored cart line",
			slog.String("key", c.key),
			slog.String("product_id", l.ProductID.String()),
			slog.Int("quantity", l.Quantity),
			slog.Int("stock", l.Stock),
		)
	}
	return lines
}

func (c *Cart) save(ctx context.Context, op string) {
	mutationsTotal.WithLabelValues("cart", op).Inc()
	if err := c.persist.Save(ctx, c.key, slices.Clone(c.lines)); err != nil {
		persistFailuresTotal.WithLabelValues("cart").Inc()
		c.logger.ErrorContext(ctx, "failed to persist cart",
			slog.String("key", c.key),
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	}
}

// AddItem adds qty units of p. It returns false without changing the cart
// when qty is below 1 or the resulting quantity would exceed p.Stock; the
// latter also notifies. Repeat adds accumulate on the existing line.
func (c *Cart) AddItem(ctx context.Context, p domain.Product, qty int) bool {
	if qty < 1 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.lines.Index(p.ID)
	existing := 0
	if i >= 0 {
		existing = c.lines[i].Quantity
	}

	if existing+qty > p.Stock {
		c.notifier.StockExceeded(ctx, StockExceeded{
			ProductID: p.ID,
			Title:     p.Title,
			Requested: existing + qty,
			Available: p.Stock,
		})
		return false
	}

	if i >= 0 {
		c.lines[i].Quantity += qty
		c.lines[i].Stock = p.Stock
	} else {
		c.lines = append(c.lines, domain.NewCartLine(p, qty))
	}
	c.save(ctx, "add")
	return true
}

// RemoveItem deletes the line for id if present.
func (c *Cart) RemoveItem(ctx context.Context, id domain.ProductID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.lines.Index(id); i >= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
	}
	c.save(ctx, "remove")
}

// UpdateQuantity sets the quantity of an existing line.
func (c *Cart) UpdateQuantity(ctx context.Context, id domain.ProductID, q int) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	outcome := c.updateQuantity(ctx, id, q)
	c.save(ctx, "update_quantity")
	return outcome
}

func (c *Cart) updateQuantity(ctx context.Context, id domain.ProductID, q int) Outcome {
	if q < 1 {
		return OutcomeIgnored
	}
	i := c.lines.Index(id)
	if i < 0 {
		return OutcomeIgnored
	}
	line := &c.lines[i]
	if q > line.Stock {
		c.notifier.StockExceeded(ctx, StockExceeded{
			ProductID: id,
			Title:     line.Title,
			Requested: q,
			Available: line.Stock,
		})
		return OutcomeStockExceeded
	}
	line.Quantity = q
	return OutcomeApplied
}

// ToggleSelection flips the selected flag of the line for id.
func (c *Cart) ToggleSelection(ctx context.Context, id domain.ProductID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.lines.Index(id); i >= 0 {
		c.lines[i].Selected = !c.lines[i].Selected
	}
	c.save(ctx, "toggle_selection")
}

// SelectAll sets every line's selected flag to selected.
func (c *Cart) SelectAll(ctx context.Context, selected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		c.lines[i].Selected = selected
	}
	c.save(ctx, "select_all")
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = domain.Lines{}
	c.save(ctx, "clear")
}

// Items returns a copy of all lines in insertion order.
func (c *Cart) Items() domain.Lines {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.lines)
}

// Line returns the line for id.
func (c *Cart) Line(id domain.ProductID) (domain.CartLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.lines.Index(id); i >= 0 {
		return c.lines[i], true
	}
	return domain.CartLine{}, false
}

// SelectedItems returns the lines that take part in totals and checkout.
func (c *Cart) SelectedItems() domain.Lines {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines.Selected()
}

// Total is the sum of price times quantity over selected lines, in paise.
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines.Total()
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines.Count()
}

// SelectedCount is the number of selected lines.
func (c *Cart) SelectedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines.SelectedCount()
}

// Snapshot returns lines and derived values read under one lock.
func (c *Cart) Snapshot() CartSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CartSnapshot{
		Items:         slices.Clone(c.lines),
		Total:         c.lines.Total(),
		Count:         c.lines.Count(),
		SelectedCount: c.lines.SelectedCount(),
	}
}

// CartSnapshot is a consistent view of the cart.
type CartSnapshot struct {
	Items         domain.Lines
	Total         int64
	Count         int
	SelectedCount int
}
