package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
)

// Wishlist owns one session's saved products, at most one per id.
type Wishlist struct {
	mu      sync.Mutex
	key     string
	items   domain.Wishlist
	persist Persister[domain.Product]
	logger  *slog.Logger
}

// NewWishlist creates a wishlist stored under key and hydrates it from p.
// Stored duplicates are collapsed to their first occurrence.
func NewWishlist(ctx context.Context, key string, p Persister[domain.Product], logger *slog.Logger) *Wishlist {
	w := &Wishlist{key: key, persist: p, logger: logger}

	loaded := p.Load(ctx, key)
	w.items = make(domain.Wishlist, 0, len(loaded))
	for _, item := range loaded {
		if item.ID < 1 || w.items.Index(item.ID) >= 0 {
			continue
		}
		w.items = append(w.items, item)
	}
	return w
}

func (w *Wishlist) save(ctx context.Context, op string) {
	mutationsTotal.WithLabelValues("wishlist", op).Inc()
	if err := w.persist.Save(ctx, w.key, slices.Clone(w.items)); err != nil {
		persistFailuresTotal.WithLabelValues("wishlist").Inc()
		w.logger.ErrorContext(ctx, "failed to persist wishlist",
			slog.String("key", w.key),
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	}
}

// Add inserts p unless an entry with its id exists.
func (w *Wishlist) Add(ctx context.Context, p domain.Product) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.items.Index(p.ID) < 0 {
		w.items = append(w.items, p)
	}
	w.save(ctx, "add")
}

// Remove deletes the entry for id if present.
func (w *Wishlist) Remove(ctx context.Context, id domain.ProductID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if i := w.items.Index(id); i >= 0 {
		w.items = slices.Delete(w.items, i, i+1)
	}
	w.save(ctx, "remove")
}

// Toggle removes p if present and adds it otherwise. It reports whether p
// is in the wishlist afterwards.
func (w *Wishlist) Toggle(ctx context.Context, p domain.Product) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	in := true
	if i := w.items.Index(p.ID); i >= 0 {
		w.items = slices.Delete(w.items, i, i+1)
		in = false
	} else {
		w.items = append(w.items, p)
	}
	w.save(ctx, "toggle")
	return in
}

// Contains reports whether id is in the wishlist.
func (w *Wishlist) Contains(id domain.ProductID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.items.Index(id) >= 0
}

// Get returns the saved snapshot for id.
func (w *Wishlist) Get(id domain.ProductID) (domain.Product, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if i := w.items.Index(id); i >= 0 {
		return w.items[i], true
	}
	return domain.Product{}, false
}

// Clear empties the wishlist.
func (w *Wishlist) Clear(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.items = domain.Wishlist{}
	w.save(ctx, "clear")
}

// Items returns a copy of the entries in insertion order.
func (w *Wishlist) Items() domain.Wishlist {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.items)
}

// Len returns the number of entries.
func (w *Wishlist) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}
