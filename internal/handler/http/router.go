package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/service"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/health"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/middleware"
)

// RouterConfig carries the HTTP-facing settings of the storefront.
type RouterConfig struct {
	Session SessionConfig
	CORS    middleware.CORSConfig

	// CatalogCacheSeconds is the max-age sent with product listings.
	CatalogCacheSeconds int

	// Tokens validates bearer tokens. Nil disables signed-in sessions.
	Tokens middleware.TokenValidator

	RateLimit middleware.RateLimitConfig
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	svc *service.Storefront,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	h := NewStorefrontHandler(svc, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, logger))
		r.Use(ContentTypeJSON)
		if cfg.Tokens != nil {
			r.Use(middleware.OptionalAuth(cfg.Tokens, logger))
		}

		// Catalog reads are shared between shoppers and may be cached.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestLogger(logger))
			r.Use(middleware.CacheControl(cfg.CatalogCacheSeconds))

			r.Get("/products", h.ListProducts)
			r.Get("/products/{productId}", h.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(Session(cfg.Session))
			r.Use(middleware.RequestLogger(logger))
			r.Use(middleware.NoStore)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)
				r.Post("/select", h.SelectAll)

				r.Post("/items", h.AddToCart)
				r.Put("/items/{productId}", h.UpdateQuantity)
				r.Delete("/items/{productId}", h.RemoveFromCart)
				r.Post("/items/{productId}/toggle", h.ToggleSelection)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", h.GetWishlist)
				r.Delete("/", h.ClearWishlist)

				r.Post("/items", h.AddToWishlist)
				r.Get("/items/{productId}", h.WishlistStatus)
				r.Delete("/items/{productId}", h.RemoveFromWishlist)
				r.Post("/items/{productId}/toggle", h.ToggleWishlist)
				r.Post("/items/{productId}/move-to-cart", h.MoveToCart)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/summary", h.CheckoutSummary)
				r.Post("/", h.InitiateCheckout)
				r.Post("/confirm", h.ConfirmPayment)
			})
		})
	})

	return r
}
