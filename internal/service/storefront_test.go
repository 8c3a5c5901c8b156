package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/catalog"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/checkout"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/event"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/storage"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/store"
	apperrors "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/errors"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/logger"
)

// --- Mock Catalog ---

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) List(ctx context.Context, f catalog.Filter) ([]domain.Product, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalog) Get(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

// --- Mock Payments ---

type mockPayments struct {
	mock.Mock
}

func (m *mockPayments) Initiate(ctx context.Context, summary checkout.Summary, addr checkout.Address) (*checkout.Redirect, error) {
	args := m.Called(ctx, summary, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Redirect), args.Error(1)
}

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishCartUpdated(ctx context.Context, sessionID string, lines domain.Lines) error {
	return m.Called(ctx, sessionID, lines).Error(0)
}

func (m *mockPublisher) PublishCartCleared(ctx context.Context, sessionID, reason, txnID string) error {
	return m.Called(ctx, sessionID, reason, txnID).Error(0)
}

func (m *mockPublisher) PublishWishlistUpdated(ctx context.Context, sessionID string, items domain.Wishlist) error {
	return m.Called(ctx, sessionID, items).Error(0)
}

// --- Test Helpers ---

const sid = "sess-1"

var (
	uno = domain.Product{ID: 1, Title: "Arduino Uno R3", Price: 45000, Category: "Boards", Stock: 3}
	dht = domain.Product{ID: 2, Title: "DHT11 Sensor", Price: 9950, Category: "Sensors", Stock: 10}
)

type fixture struct {
	svc      *Storefront
	kv       *storage.MemoryKV
	catalog  *mockCatalog
	payments *mockPayments
	events   *mockPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		kv:       storage.NewMemoryKV(),
		catalog:  new(mockCatalog),
		payments: new(mockPayments),
		events:   new(mockPublisher),
	}
	f.svc = NewStorefront(newTestRegistry(f.kv), f.catalog, f.payments, f.events, logger.Discard())
	f.events.On("PublishCartUpdated", mock.Anything, sid, mock.Anything).Return(nil).Maybe()
	f.events.On("PublishWishlistUpdated", mock.Anything, sid, mock.Anything).Return(nil).Maybe()
	return f
}

func newTestRegistry(kv storage.KV) *Registry {
	log := logger.Discard()
	return NewRegistry(
		storage.NewAdapter[domain.CartLine](kv, log),
		storage.NewAdapter[domain.Product](kv, log),
		store.LogNotifier{Logger: log},
		log,
	)
}

// ============================================================================
// Cart
// ============================================================================

func TestAddToCart_ResolvesSnapshotAndPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.On("Get", mock.Anything, uno.ID).Return(uno, nil)

	snap, err := f.svc.AddToCart(ctx, sid, uno.ID, 2)
	require.NoError(t, err)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Arduino Uno R3", snap.Items[0].Title)
	assert.True(t, snap.Items[0].Selected)
	assert.Equal(t, int64(90000), snap.Total)
	assert.Equal(t, 2, snap.Count)

	stored := storage.NewAdapter[domain.CartLine](f.kv, logger.Discard()).
		Load(ctx, storage.SessionKey(sid, storage.CartKey))
	require.Len(t, stored, 1)
	assert.Equal(t, 2, stored[0].Quantity)

	f.events.AssertCalled(t, "PublishCartUpdated", mock.Anything, sid, mock.Anything)
}

func TestAddToCart_StockExceeded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.On("Get", mock.Anything, uno.ID).Return(uno, nil)

	_, err := f.svc.AddToCart(ctx, sid, uno.ID, 2)
	require.NoError(t, err)

	_, err = f.svc.AddToCart(ctx, sid, uno.ID, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStockExceeded))
	assert.Contains(t, err.Error(), "Only 3 of Arduino Uno R3 left in stock")

	snap, err := f.svc.GetCart(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Items[0].Quantity)
}

func TestAddToCart_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddToCart(context.Background(), sid, uno.ID, 0)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = f.svc.AddToCart(context.Background(), "", uno.ID, 1)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	f.catalog.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("Get", mock.Anything, domain.ProductID(99)).
		Return(domain.Product{}, apperrors.NotFound("product", "99"))

	_, err := f.svc.AddToCart(context.Background(), sid, 99, 1)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestAddToCart_PublishFailureIsNotSurfaced(t *testing.T) {
	f := &fixture{
		kv:      storage.NewMemoryKV(),
		catalog: new(mockCatalog),
		events:  new(mockPublisher),
	}
	f.svc = NewStorefront(newTestRegistry(f.kv), f.catalog, nil, f.events, logger.Discard())
	f.catalog.On("Get", mock.Anything, dht.ID).Return(dht, nil)
	f.events.On("PublishCartUpdated", mock.Anything, sid, mock.Anything).Return(errors.New("broker down"))

	snap, err := f.svc.AddToCart(context.Background(), sid, dht.ID, 1)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)
	f.events.AssertExpectations(t)
}

func TestUpdateQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.On("Get", mock.Anything, uno.ID).Return(uno, nil)
	_, err := f.svc.AddToCart(ctx, sid, uno.ID, 1)
	require.NoError(t, err)

	snap, err := f.svc.UpdateQuantity(ctx, sid, uno.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Count)

	_, err = f.svc.UpdateQuantity(ctx, sid, uno.ID, 4)
	assert.True(t, errors.Is(err, apperrors.ErrStockExceeded))

	snap, err = f.svc.UpdateQuantity(ctx, sid, uno.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Count)

	snap, err = f.svc.UpdateQuantity(ctx, sid, dht.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Count)
	assert.Len(t, snap.Items, 1)

	snap, err = f.svc.GetCart(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Count)
}

func TestSelectionAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.On("Get", mock.Anything, uno.ID).Return(uno, nil)
	f.catalog.On("Get", mock.Anything, dht.ID).Return(dht, nil)
	_, _ = f.svc.AddToCart(ctx, sid, uno.ID, 1)
	_, _ = f.svc.AddToCart(ctx, sid, dht.ID, 2)

	snap, err := f.svc.ToggleSelection(ctx, sid, uno.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(19900), snap.Total)
	assert.Equal(t, 1, snap.SelectedCount)
	assert.Equal(t, 3, snap.Count)

	snap, err = f.svc.ToggleSelection(ctx, sid, 42)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.SelectedCount)
	assert.Len(t, snap.Items, 2)

	snap, err = f.svc.SelectAll(ctx, sid, false)
	require.NoError(t, err)
	assert.Zero(t, snap.Total)
	assert.Zero(t, snap.SelectedCount)

	snap, err = f.svc.RemoveFromCart(ctx, sid, dht.ID)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, uno.ID, snap.Items[0].ProductID)

	// Removing an absent line is not an error.
	_, err = f.svc.RemoveFromCart(ctx, sid, dht.ID)
	assert.NoError(t, err)
}

func TestClearCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.On("Get", mock.Anything, uno.ID).Return(uno, nil)
	f.events.On("PublishCartCleared", mock.Anything, sid, event.ClearedByUser, "").Return(nil).Once()
	_, _ = f.svc.AddToCart(ctx, sid, uno.ID, 1)

	require.NoError(t, f.svc.ClearCart(ctx, sid))

	snap, err := f.svc.GetCart(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	f.events.AssertExpectations(t)
}

func TestSessionsAreIsolated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.On("Get", mock.Anything, uno.ID).Return(uno, nil)
	_, err := f.svc.AddToCart(ctx, sid, uno.ID, 1)
	require.NoError(t, err)

	other, err := f.svc.GetCart(ctx, "sess-2")
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}

// ============================================================================
// Wishlist
// ============================================================================

func TestWishlist_AddIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.On("Get", mock.Anything, dht.ID).Return(dht, nil).Once()

	items, err := f.svc.AddToWishlist(ctx, sid, dht.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = f.svc.AddToWishlist(ctx, sid, dht.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	in, err := f.svc.InWishlist(ctx, sid, dht.ID)
	require.NoError(t, err)
	assert.True(t, in)
	f.catalog.AssertExpectations(t)
}

func TestWishlist_Toggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.On("Get", mock.Anything, dht.ID).Return(dht, nil).Once()

	saved, err := f.svc.ToggleWishlist(ctx, sid, dht.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	// The second toggle uses the saved snapshot and does not hit the catalog.
	saved, err = f.svc.ToggleWishlist(ctx, sid, dht.ID)
	require.NoError(t, err)
	assert.False(t, saved)

	items, err := f.svc.GetWishlist(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, items)
	f.catalog.AssertExpectations(t)
}

func TestWishlist_RemoveAndClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.On("Get", mock.Anything, uno.ID).Return(uno, nil)
	f.catalog.On("Get", mock.Anything, dht.ID).Return(dht, nil)
	_, _ = f.svc.AddToWishlist(ctx, sid, uno.ID)
	_, _ = f.svc.AddToWishlist(ctx, sid, dht.ID)

	items, err := f.svc.RemoveFromWishlist(ctx, sid, uno.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, dht.ID, items[0].ID)

	require.NoError(t, f.svc.ClearWishlist(ctx, sid))
	items, err = f.svc.GetWishlist(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMoveToCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.On("Get", mock.Anything, dht.ID).Return(dht, nil).Once()
	_, err := f.svc.AddToWishlist(ctx, sid, dht.ID)
	require.NoError(t, err)

	snap, err := f.svc.MoveToCart(ctx, sid, dht.ID)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 1, snap.Items[0].Quantity)

	in, _ := f.svc.InWishlist(ctx, sid, dht.ID)
	assert.False(t, in)

	_, err = f.svc.MoveToCart(ctx, sid, dht.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestMoveToCart_KeepsWishlistEntryWhenStockExceeded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	single := domain.Product{ID: 5, Title: "Servo SG90", Price: 12000, Stock: 1}
	f.catalog.On("Get", mock.Anything, single.ID).Return(single, nil)

	_, err := f.svc.AddToCart(ctx, sid, single.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.AddToWishlist(ctx, sid, single.ID)
	require.NoError(t, err)

	_, err = f.svc.MoveToCart(ctx, sid, single.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStockExceeded))

	in, _ := f.svc.InWishlist(ctx, sid, single.ID)
	assert.True(t, in)
}

// ============================================================================
// Checkout
// ============================================================================

func validAddress() checkout.Address {
	return checkout.Address{
		FullName:    "Asha Rao",
		Email:       "asha@example.in",
		Mobile:      "9876543210",
		AddressLine: "12 MG Road",
		Pincode:     "411001",
	}
}

func TestCheckoutSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckoutSummary(ctx, sid)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	f.catalog.On("Get", mock.Anything, uno.ID).Return(uno, nil)
	_, _ = f.svc.AddToCart(ctx, sid, uno.ID, 2)

	summary, err := f.svc.CheckoutSummary(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, int64(90000), summary.Subtotal)
	assert.Equal(t, int64(16200), summary.GST)
	assert.Equal(t, int64(106200), summary.Total)
}

func TestInitiateCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.On("Get", mock.Anything, uno.ID).Return(uno, nil)
	_, _ = f.svc.AddToCart(ctx, sid, uno.ID, 1)

	addr := validAddress()
	addr.FullName = "  Asha Rao  "
	f.payments.On("Initiate", mock.Anything, mock.MatchedBy(func(s checkout.Summary) bool {
		return s.Total == 53100
	}), mock.MatchedBy(func(a checkout.Address) bool {
		return a.FullName == "Asha Rao"
	})).Return(&checkout.Redirect{Action: "https://pay", TxnID: "TXN1"}, nil)

	redirect, err := f.svc.InitiateCheckout(ctx, sid, addr)
	require.NoError(t, err)
	assert.Equal(t, "TXN1", redirect.TxnID)

	// Initiation alone does not clear the cart.
	snap, _ := f.svc.GetCart(ctx, sid)
	assert.Len(t, snap.Items, 1)
	f.payments.AssertExpectations(t)
}

func TestInitiateCheckout_InvalidAddress(t *testing.T) {
	f := newFixture(t)
	addr := validAddress()
	addr.Mobile = ""

	_, err := f.svc.InitiateCheckout(context.Background(), sid, addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please fill in all address details.")
	f.payments.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything, mock.Anything)
}

func TestInitiateCheckout_BackendRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.On("Get", mock.Anything, uno.ID).Return(uno, nil)
	_, _ = f.svc.AddToCart(ctx, sid, uno.ID, 1)
	f.payments.On("Initiate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.InvalidInput("Insufficient stock for Arduino Uno R3. Only 0 left."))

	_, err := f.svc.InitiateCheckout(ctx, sid, validAddress())
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestConfirmPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.On("Get", mock.Anything, uno.ID).Return(uno, nil)
	_, _ = f.svc.AddToCart(ctx, sid, uno.ID, 1)

	snap, err := f.svc.ConfirmPayment(ctx, sid, "TXN1", checkout.StatusFailure)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)

	_, err = f.svc.ConfirmPayment(ctx, sid, "TXN1", "pending")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = f.svc.ConfirmPayment(ctx, sid, "", checkout.StatusSuccess)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	f.events.On("PublishCartCleared", mock.Anything, sid, event.ClearedByPayment, "TXN1").Return(nil).Once()
	snap, err = f.svc.ConfirmPayment(ctx, sid, "TXN1", checkout.StatusSuccess)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	f.events.AssertExpectations(t)
}

// ============================================================================
// Catalog
// ============================================================================

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	filter := catalog.Filter{Category: "Sensors"}
	f.catalog.On("List", mock.Anything, filter).Return([]domain.Product{dht}, nil)

	products, err := f.svc.ListProducts(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	_, err = f.svc.ListProducts(context.Background(), catalog.Filter{Sort: "random"})
	assert.Error(t, err)
}

func TestGetProduct(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("Get", mock.Anything, uno.ID).Return(uno, nil)

	p, err := f.svc.GetProduct(context.Background(), uno.ID)
	require.NoError(t, err)
	assert.Equal(t, uno.Title, p.Title)
}
