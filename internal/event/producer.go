package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
	pkgkafka "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/kafka"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/logger"
)

// Kafka topic constants for storefront domain events.
const (
	TopicCartUpdated     = "storefront.cart.updated"
	TopicCartCleared     = "storefront.cart.cleared"
	TopicWishlistUpdated = "storefront.wishlist.updated"
)

// Aggregate types.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront-service"

// Reasons carried by cart.cleared.
const (
	ClearedByUser    = "user"
	ClearedByPayment = "payment"
)

// Currency of all amounts in event payloads.
const Currency = "INR"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID     string         `json:"session_id"`
	Items         []CartLineData `json:"items"`
	ItemCount     int            `json:"item_count"`
	SelectedCount int            `json:"selected_count"`
	TotalAmount   int64          `json:"total_amount"`
	Currency      string         `json:"currency"`
}

// CartLineData is the line payload within cart events.
type CartLineData struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Selected  bool   `json:"selected"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
	TxnID     string `json:"txnid,omitempty"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID  string  `json:"session_id"`
	ProductIDs []int64 `json:"product_ids"`
	Count      int     `json:"count"`
}

// Publisher is what the service layer needs from an event sink.
type Publisher interface {
	PublishCartUpdated(ctx context.Context, sessionID string, lines domain.Lines) error
	PublishCartCleared(ctx context.Context, sessionID, reason, txnID string) error
	PublishWishlistUpdated(ctx context.Context, sessionID string, items domain.Wishlist) error
}

// EventWriter publishes an envelope to a topic. *pkgkafka.Producer
// satisfies it.
type EventWriter interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	writer EventWriter
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront service.
func NewProducer(writer EventWriter, logger *slog.Logger) *Producer {
	return &Producer{
		writer: writer,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, pkgkafka.Aggregate{ID: aggregateID, Type: aggregateType}, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.writer.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published storefront event",
		slog.String("topic", topic),
		slog.String("session_id", aggregateID),
	)
	return nil
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, lines domain.Lines) error {
	items := make([]CartLineData, len(lines))
	for i, l := range lines {
		items[i] = CartLineData{
			ProductID: int64(l.ProductID),
			Title:     l.Title,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Selected:  l.Selected,
		}
	}

	return p.publish(ctx, TopicCartUpdated, sessionID, AggregateTypeCart, CartUpdatedData{
		SessionID:     sessionID,
		Items:         items,
		ItemCount:     lines.Count(),
		SelectedCount: lines.SelectedCount(),
		TotalAmount:   lines.Total(),
		Currency:      Currency,
	})
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID, reason, txnID string) error {
	return p.publish(ctx, TopicCartCleared, sessionID, AggregateTypeCart, CartClearedData{
		SessionID: sessionID,
		Reason:    reason,
		TxnID:     txnID,
	})
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, sessionID string, items domain.Wishlist) error {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = int64(item.ID)
	}

	return p.publish(ctx, TopicWishlistUpdated, sessionID, AggregateTypeWishlist, WishlistUpdatedData{
		SessionID:  sessionID,
		ProductIDs: ids,
		Count:      len(items),
	})
}

// Nop discards every event. It is used when no brokers are configured.
type Nop struct{}

func (Nop) PublishCartUpdated(context.Context, string, domain.Lines) error         { return nil }
func (Nop) PublishCartCleared(context.Context, string, string, string) error       { return nil }
func (Nop) PublishWishlistUpdated(context.Context, string, domain.Wishlist) error { return nil }
