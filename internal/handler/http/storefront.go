package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/catalog"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/checkout"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/service"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/store"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/httputil"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/validator"
)

// StorefrontHandler handles HTTP requests for catalog, cart, wishlist and
// checkout endpoints.
type StorefrontHandler struct {
	service *service.Storefront
	logger  *slog.Logger
}

// NewStorefrontHandler creates a new storefront HTTP handler.
func NewStorefrontHandler(svc *service.Storefront, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddToCartRequest is the JSON request body for adding a product to the cart.
// Quantity defaults to 1.
type AddToCartRequest struct {
	ProductID domain.ProductID `json:"product_id" validate:"required,gte=1"`
	Quantity  int              `json:"quantity" validate:"omitempty,gte=1"`
}

// UpdateQuantityRequest is the JSON request body for changing a line's quantity.
// Quantities below 1 leave the line unchanged.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SelectAllRequest is the JSON request body for selecting or clearing every line.
type SelectAllRequest struct {
	Selected *bool `json:"selected" validate:"required"`
}

// WishlistRequest is the JSON request body for saving a product.
type WishlistRequest struct {
	ProductID domain.ProductID `json:"product_id" validate:"required,gte=1"`
}

// CheckoutRequest is the JSON request body for starting payment. The
// address is validated by the service so shoppers get checkout messages.
type CheckoutRequest struct {
	Address checkout.Address `json:"address" validate:"-"`
}

// ConfirmPaymentRequest is the JSON request body reporting a gateway outcome.
type ConfirmPaymentRequest struct {
	TxnID  string `json:"txnid" validate:"required"`
	Status string `json:"status" validate:"required,oneof=success failure"`
}

// --- Response DTOs ---

type cartResponse struct {
	Items         domain.Lines `json:"items"`
	Total         int64        `json:"total"`
	Count         int          `json:"count"`
	SelectedCount int          `json:"selected_count"`
}

func toCartResponse(s store.CartSnapshot) cartResponse {
	items := s.Items
	if items == nil {
		items = domain.Lines{}
	}
	return cartResponse{
		Items:         items,
		Total:         s.Total,
		Count:         s.Count,
		SelectedCount: s.SelectedCount,
	}
}

type wishlistResponse struct {
	Items domain.Wishlist `json:"items"`
	Count int             `json:"count"`
}

func toWishlistResponse(items domain.Wishlist) wishlistResponse {
	if items == nil {
		items = domain.Wishlist{}
	}
	return wishlistResponse{Items: items, Count: len(items)}
}

type wishlistStatusResponse struct {
	ProductID  domain.ProductID `json:"product_id"`
	InWishlist bool             `json:"in_wishlist"`
}

// --- Catalog ---

type productResponse struct {
	domain.Product
	DiscountPercent int `json:"discount_percent,omitempty"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{Product: p, DiscountPercent: p.DiscountPercent()}
}

// ListProducts handles GET /api/v1/products
func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := catalog.ParseFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	products, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}

	httputil.WriteData(w, http.StatusOK, resp)
}

// GetProduct handles GET /api/v1/products/{productId}
func (h *StorefrontHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, toProductResponse(product))
}

// --- Cart ---

// GetCart handles GET /api/v1/cart
func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.GetCart(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, toCartResponse(snap))
}

// AddToCart handles POST /api/v1/cart/items
func (h *StorefrontHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	snap, err := h.service.AddToCart(r.Context(), sessionIDFromContext(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, toCartResponse(snap))
}

// UpdateQuantity handles PUT /api/v1/cart/items/{productId}
func (h *StorefrontHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	snap, err := h.service.UpdateQuantity(r.Context(), sessionIDFromContext(r.Context()), id, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, toCartResponse(snap))
}

// RemoveFromCart handles DELETE /api/v1/cart/items/{productId}
func (h *StorefrontHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	snap, err := h.service.RemoveFromCart(r.Context(), sessionIDFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, toCartResponse(snap))
}

// ToggleSelection handles POST /api/v1/cart/items/{productId}/toggle
func (h *StorefrontHandler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	snap, err := h.service.ToggleSelection(r.Context(), sessionIDFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, toCartResponse(snap))
}

// SelectAll handles POST /api/v1/cart/select
func (h *StorefrontHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	var req SelectAllRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	snap, err := h.service.SelectAll(r.Context(), sessionIDFromContext(r.Context()), *req.Selected)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, toCartResponse(snap))
}

// ClearCart handles DELETE /api/v1/cart
func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCart(r.Context(), sessionIDFromContext(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// --- Wishlist ---

// GetWishlist handles GET /api/v1/wishlist
func (h *StorefrontHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetWishlist(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, toWishlistResponse(items))
}

// AddToWishlist handles POST /api/v1/wishlist/items
func (h *StorefrontHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var req WishlistRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	items, err := h.service.AddToWishlist(r.Context(), sessionIDFromContext(r.Context()), req.ProductID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, toWishlistResponse(items))
}

// WishlistStatus handles GET /api/v1/wishlist/items/{productId}
func (h *StorefrontHandler) WishlistStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	in, err := h.service.InWishlist(r.Context(), sessionIDFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, wishlistStatusResponse{ProductID: id, InWishlist: in})
}

// ToggleWishlist handles POST /api/v1/wishlist/items/{productId}/toggle
func (h *StorefrontHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	in, err := h.service.ToggleWishlist(r.Context(), sessionIDFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, wishlistStatusResponse{ProductID: id, InWishlist: in})
}

// RemoveFromWishlist handles DELETE /api/v1/wishlist/items/{productId}
func (h *StorefrontHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	items, err := h.service.RemoveFromWishlist(r.Context(), sessionIDFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, toWishlistResponse(items))
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *StorefrontHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearWishlist(r.Context(), sessionIDFromContext(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// MoveToCart handles POST /api/v1/wishlist/items/{productId}/move-to-cart
func (h *StorefrontHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	snap, err := h.service.MoveToCart(r.Context(), sessionIDFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, toCartResponse(snap))
}

// --- Checkout ---

// CheckoutSummary handles GET /api/v1/checkout/summary
func (h *StorefrontHandler) CheckoutSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.CheckoutSummary(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, summary)
}

// InitiateCheckout handles POST /api/v1/checkout
func (h *StorefrontHandler) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	redirect, err := h.service.InitiateCheckout(r.Context(), sessionIDFromContext(r.Context()), req.Address)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusCreated, redirect)
}

// ConfirmPayment handles POST /api/v1/checkout/confirm
func (h *StorefrontHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req ConfirmPaymentRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	snap, err := h.service.ConfirmPayment(r.Context(), sessionIDFromContext(r.Context()), req.TxnID, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, toCartResponse(snap))
}

// --- Helpers ---

func (h *StorefrontHandler) productID(w http.ResponseWriter, r *http.Request) (domain.ProductID, bool) {
	id, err := domain.ParseProductID(chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteBadRequest(w, r, "invalid product id")
		return 0, false
	}
	return id, true
}

func (h *StorefrontHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err, h.logger)
}
