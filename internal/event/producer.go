package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/utafrali/giftcard-catalog/internal/domain"
	pkgkafka "github.com/utafrali/giftcard-catalog/pkg/kafka"
	"github.com/utafrali/giftcard-catalog/pkg/logger"
)

// Event types for product domain events.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// Kafka topics for product domain events.
var (
	TopicProductCreated = pkgkafka.Topic("product", "created")
	TopicProductUpdated = pkgkafka.Topic("product", "updated")
	TopicProductDeleted = pkgkafka.Topic("product", "deleted")
)

// Aggregate type constant.
const AggregateTypeProduct = "product"

// SourceCatalogService identifies events originating from this service.
const SourceCatalogService = "catalog-service"

// ProductDeletedData is the payload for a product.deleted event.
type ProductDeletedData struct {
	ID int64 `json:"id"`
}

// Publisher sends product domain events.
type Publisher interface {
	PublishProductCreated(ctx context.Context, product domain.Product) error
	PublishProductUpdated(ctx context.Context, product domain.Product) error
	PublishProductDeleted(ctx context.Context, id int64) error
}

type eventSender interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes product domain events to Kafka. Created and updated
// events carry the full product record.
type Producer struct {
	kafka  eventSender
	logger *slog.Logger
}

var _ Publisher = (*Producer)(nil)

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product domain.Product) error {
	return p.publish(ctx, TopicProductCreated, EventProductCreated, product.ID, product)
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, EventProductUpdated, product.ID, product)
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id int64) error {
	return p.publish(ctx, TopicProductDeleted, EventProductDeleted, id, ProductDeletedData{ID: id})
}

func (p *Producer) publish(ctx context.Context, topic, eventType string, id int64, data any) error {
	aggregateID := strconv.FormatInt(id, 10)

	event, err := pkgkafka.NewEvent(eventType, aggregateID, AggregateTypeProduct, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published "+eventType+" event",
		slog.Int64("product_id", id),
	)

	return nil
}

// NopPublisher drops every event. It is used when Kafka is disabled.
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

func (NopPublisher) PublishProductCreated(context.Context, domain.Product) error { return nil }
func (NopPublisher) PublishProductUpdated(context.Context, domain.Product) error { return nil }
func (NopPublisher) PublishProductDeleted(context.Context, int64) error          { return nil }
