// Package service implements the storefront operations on top of the
// per-session cart and wishlist stores.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/catalog"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/checkout"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/event"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/store"
	apperrors "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/errors"
)

// Catalog resolves product snapshots. *catalog.Client satisfies it.
type Catalog interface {
	List(ctx context.Context, f catalog.Filter) ([]domain.Product, error)
	Get(ctx context.Context, id domain.ProductID) (domain.Product, error)
}

// Payments starts payments. *checkout.PaymentClient satisfies it.
type Payments interface {
	Initiate(ctx context.Context, summary checkout.Summary, addr checkout.Address) (*checkout.Redirect, error)
}

// Storefront implements the business logic behind the storefront API.
type Storefront struct {
	sessions *Registry
	catalog  Catalog
	payments Payments
	events   event.Publisher
	logger   *slog.Logger
}

// NewStorefront creates a new storefront service.
func NewStorefront(sessions *Registry, cat Catalog, payments Payments, events event.Publisher, logger *slog.Logger) *Storefront {
	return &Storefront{
		sessions: sessions,
		catalog:  cat,
		payments: payments,
		events:   events,
		logger:   logger,
	}
}

func (s *Storefront) session(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	return s.sessions.Get(ctx, sessionID), nil
}

// --- Catalog ---

// ListProducts returns the catalog products matching f.
func (s *Storefront) ListProducts(ctx context.Context, f catalog.Filter) ([]domain.Product, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	products, err := s.catalog.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct returns one catalog product.
func (s *Storefront) GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	p, err := s.catalog.Get(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// --- Cart ---

// GetCart returns the session's cart with its derived totals.
func (s *Storefront) GetCart(ctx context.Context, sessionID string) (store.CartSnapshot, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return store.CartSnapshot{}, err
	}
	return sess.Cart.Snapshot(), nil
}

// AddToCart adds qty units of a product, priced from a fresh catalog
// snapshot. Adds that would take the line above stock are rejected with
// a StockExceeded error and leave the cart unchanged.
func (s *Storefront) AddToCart(ctx context.Context, sessionID string, id domain.ProductID, qty int) (store.CartSnapshot, error) {
	if qty < 1 {
		return store.CartSnapshot{}, apperrors.InvalidInput("quantity must be at least 1")
	}
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return store.CartSnapshot{}, err
	}

	p, err := s.catalog.Get(ctx, id)
	if err != nil {
		return store.CartSnapshot{}, fmt.Errorf("resolve product for cart: %w", err)
	}

	if !sess.Cart.AddItem(ctx, p, qty) {
		return store.CartSnapshot{}, apperrors.StockExceeded(p.Title, p.Stock)
	}

	s.publishCart(ctx, sess)
	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sess.ID),
		slog.String("product_id", id.String()),
		slog.Int("quantity", qty),
	)
	return sess.Cart.Snapshot(), nil
}

// UpdateQuantity sets the quantity of a cart line. Quantities below 1 and
// lines not in the cart leave the cart unchanged.
func (s *Storefront) UpdateQuantity(ctx context.Context, sessionID string, id domain.ProductID, qty int) (store.CartSnapshot, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return store.CartSnapshot{}, err
	}

	switch sess.Cart.UpdateQuantity(ctx, id, qty) {
	case store.OutcomeIgnored:
		return sess.Cart.Snapshot(), nil
	case store.OutcomeStockExceeded:
		line, _ := sess.Cart.Line(id)
		return store.CartSnapshot{}, apperrors.StockExceeded(line.Title, line.Stock)
	}

	s.publishCart(ctx, sess)
	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("session_id", sess.ID),
		slog.String("product_id", id.String()),
		slog.Int("quantity", qty),
	)
	return sess.Cart.Snapshot(), nil
}

// RemoveFromCart deletes a cart line. Removing an absent line is a no-op.
func (s *Storefront) RemoveFromCart(ctx context.Context, sessionID string, id domain.ProductID) (store.CartSnapshot, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return store.CartSnapshot{}, err
	}

	sess.Cart.RemoveItem(ctx, id)
	s.publishCart(ctx, sess)
	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", sess.ID),
		slog.String("product_id", id.String()),
	)
	return sess.Cart.Snapshot(), nil
}

// ToggleSelection flips whether a line takes part in totals and checkout.
// Toggling an absent line is a no-op.
func (s *Storefront) ToggleSelection(ctx context.Context, sessionID string, id domain.ProductID) (store.CartSnapshot, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return store.CartSnapshot{}, err
	}
	if _, ok := sess.Cart.Line(id); !ok {
		return sess.Cart.Snapshot(), nil
	}

	sess.Cart.ToggleSelection(ctx, id)
	s.publishCart(ctx, sess)
	return sess.Cart.Snapshot(), nil
}

// SelectAll selects or deselects every line.
func (s *Storefront) SelectAll(ctx context.Context, sessionID string, selected bool) (store.CartSnapshot, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return store.CartSnapshot{}, err
	}

	sess.Cart.SelectAll(ctx, selected)
	s.publishCart(ctx, sess)
	return sess.Cart.Snapshot(), nil
}

// ClearCart empties the cart at the shopper's request.
func (s *Storefront) ClearCart(ctx context.Context, sessionID string) error {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	s.clearCart(ctx, sess, event.ClearedByUser, "")
	return nil
}

func (s *Storefront) clearCart(ctx context.Context, sess *Session, reason, txnID string) {
	sess.Cart.Clear(ctx)

	if err := s.events.PublishCartCleared(ctx, sess.ID, reason, txnID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", sess.ID),
		slog.String("reason", reason),
	)
}

// --- Wishlist ---

// GetWishlist returns the session's saved products.
func (s *Storefront) GetWishlist(ctx context.Context, sessionID string) (domain.Wishlist, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Wishlist.Items(), nil
}

// AddToWishlist saves a product. Saving it again changes nothing.
func (s *Storefront) AddToWishlist(ctx context.Context, sessionID string, id domain.ProductID) (domain.Wishlist, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Wishlist.Contains(id) {
		return sess.Wishlist.Items(), nil
	}

	p, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve product for wishlist: %w", err)
	}

	sess.Wishlist.Add(ctx, p)
	s.publishWishlist(ctx, sess)
	return sess.Wishlist.Items(), nil
}

// RemoveFromWishlist drops a saved product if present.
func (s *Storefront) RemoveFromWishlist(ctx context.Context, sessionID string, id domain.ProductID) (domain.Wishlist, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.Wishlist.Remove(ctx, id)
	s.publishWishlist(ctx, sess)
	return sess.Wishlist.Items(), nil
}

// ToggleWishlist saves the product when absent and drops it when present.
// It reports whether the product is saved afterwards.
func (s *Storefront) ToggleWishlist(ctx context.Context, sessionID string, id domain.ProductID) (bool, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return false, err
	}

	p, ok := sess.Wishlist.Get(id)
	if !ok {
		if p, err = s.catalog.Get(ctx, id); err != nil {
			return false, fmt.Errorf("resolve product for wishlist: %w", err)
		}
	}

	saved := sess.Wishlist.Toggle(ctx, p)
	s.publishWishlist(ctx, sess)
	return saved, nil
}

// ClearWishlist removes every saved product.
func (s *Storefront) ClearWishlist(ctx context.Context, sessionID string) error {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}

	sess.Wishlist.Clear(ctx)
	s.publishWishlist(ctx, sess)
	return nil
}

// InWishlist reports whether a product is saved.
func (s *Storefront) InWishlist(ctx context.Context, sessionID string, id domain.ProductID) (bool, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return sess.Wishlist.Contains(id), nil
}

// MoveToCart adds one unit of a saved product to the cart, using the saved
// snapshot, and drops it from the wishlist only once the add succeeded.
func (s *Storefront) MoveToCart(ctx context.Context, sessionID string, id domain.ProductID) (store.CartSnapshot, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return store.CartSnapshot{}, err
	}

	p, ok := sess.Wishlist.Get(id)
	if !ok {
		return store.CartSnapshot{}, apperrors.NotFound("wishlist item", id.String())
	}

	if !sess.Cart.AddItem(ctx, p, 1) {
		return store.CartSnapshot{}, apperrors.StockExceeded(p.Title, p.Stock)
	}
	sess.Wishlist.Remove(ctx, id)

	s.publishCart(ctx, sess)
	s.publishWishlist(ctx, sess)
	s.logger.InfoContext(ctx, "wishlist item moved to cart",
		slog.String("session_id", sess.ID),
		slog.String("product_id", id.String()),
	)
	return sess.Cart.Snapshot(), nil
}

// --- Checkout ---

// CheckoutSummary prices the selected cart lines.
func (s *Storefront) CheckoutSummary(ctx context.Context, sessionID string) (checkout.Summary, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return checkout.Summary{}, err
	}
	return checkout.Summarize(sess.Cart.Items())
}

// InitiateCheckout validates the delivery address and asks the backend to
// start payment for the selected lines. The cart is left untouched until
// the payment is confirmed.
func (s *Storefront) InitiateCheckout(ctx context.Context, sessionID string, addr checkout.Address) (*checkout.Redirect, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	addr.Normalize()
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	summary, err := checkout.Summarize(sess.Cart.Items())
	if err != nil {
		return nil, err
	}

	redirect, err := s.payments.Initiate(ctx, summary, addr)
	if err != nil {
		return nil, fmt.Errorf("initiate payment: %w", err)
	}

	s.logger.InfoContext(ctx, "checkout initiated",
		slog.String("session_id", sess.ID),
		slog.String("txnid", redirect.TxnID),
		slog.Int64("total", summary.Total),
	)
	return redirect, nil
}

// ConfirmPayment records the gateway outcome. A successful payment clears
// the cart; a failed one leaves it for another attempt.
func (s *Storefront) ConfirmPayment(ctx context.Context, sessionID, txnID, status string) (store.CartSnapshot, error) {
	if txnID == "" {
		return store.CartSnapshot{}, apperrors.InvalidInput("txnid is required")
	}
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return store.CartSnapshot{}, err
	}

	switch status {
	case checkout.StatusSuccess:
		s.clearCart(ctx, sess, event.ClearedByPayment, txnID)
	case checkout.StatusFailure:
		s.logger.WarnContext(ctx, "payment failed, cart kept",
			slog.String("session_id", sess.ID),
			slog.String("txnid", txnID),
		)
	default:
		return store.CartSnapshot{}, apperrors.InvalidInput(fmt.Sprintf("unknown payment status %q", status))
	}
	return sess.Cart.Snapshot(), nil
}

func (s *Storefront) publishCart(ctx context.Context, sess *Session) {
	if err := s.events.PublishCartUpdated(ctx, sess.ID, sess.Cart.Items()); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Storefront) publishWishlist(ctx context.Context, sess *Session) {
	if err := s.events.PublishWishlistUpdated(ctx, sess.ID, sess.Wishlist.Items()); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.updated event",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()),
		)
	}
}
