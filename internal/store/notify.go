// Package store holds the in-memory cart and wishlist of one session.
package store

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
)

var (
	stockExceededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_stock_exceeded_total",
		Help: "Cart mutations rejected because they would exceed available stock.",
	})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_store_mutations_total",
		Help: "Applied cart and wishlist mutations.",
	}, []string{"store", "op"})

	persistFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_store_persist_failures_total",
		Help: "Collections that could not be written to the state substrate.",
	}, []string{"store"})
)

// StockExceeded describes a rejected quantity change.
type StockExceeded struct {
	ProductID domain.ProductID
	Title     string
	Requested int
	Available int
}

// Notifier receives stock notices. Implementations must not block.
type Notifier interface {
	StockExceeded(ctx context.Context, n StockExceeded)
}

// LogNotifier logs each notice and counts it.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) StockExceeded(ctx context.Context, n StockExceeded) {
	stockExceededTotal.Inc()
	l.Logger.InfoContext(ctx, "cart quantity exceeds stock",
		slog.String("product_id", n.ProductID.String()),
		slog.String("title", n.Title),
		slog.Int("requested", n.Requested),
		slog.Int("available", n.Available),
	)
}

// Persister loads and saves whole collections. *storage.Adapter satisfies it.
type Persister[T any] interface {
	Load(ctx context.Context, key string) []T
	Save(ctx context.Context, key string, items []T) error
}
