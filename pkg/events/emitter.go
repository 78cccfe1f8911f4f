package events

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/petal/pkg/kafka"
	"github.com/Ramsey-B/petal/pkg/models"
)

// Publisher is the producer surface the emitter depends on
type Publisher interface {
	PublishCatalogEvent(ctx context.Context, event *kafka.CatalogEvent) error
}

// Emitter publishes typed catalog events. A nil producer turns every emit
// into a no-op, used when Kafka is disabled.
type Emitter struct {
	producer Publisher
	logger   ectologger.Logger
}

// NewEmitter creates a new catalog event emitter
func NewEmitter(producer Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

func (e *Emitter) publish(ctx context.Context, event *kafka.CatalogEvent) error {
	if e.producer == nil {
		return nil
	}
	return e.producer.PublishCatalogEvent(ctx, event)
}

// AttributesAssigned reports that an assignment batch replaced the given
// attributes on an owner.
func (e *Emitter) AttributesAssigned(ctx context.Context, tenantID string, ownerKind models.OwnerKind, ownerID string, attributeIDs []string) error {
	return e.publish(ctx, &kafka.CatalogEvent{
		EventType:    TypeAttributeAssigned,
		TenantID:     tenantID,
		EntityKind:   string(ownerKind),
		EntityID:     ownerID,
		AttributeIDs: attributeIDs,
	})
}

// AttributeDeleted reports that an attribute definition was deleted, so its
// values and assignment rows must be cleaned up.
func (e *Emitter) AttributeDeleted(ctx context.Context, tenantID, attributeID string) error {
	return e.publish(ctx, &kafka.CatalogEvent{
		EventType:  TypeAttributeDeleted,
		TenantID:   tenantID,
		EntityKind: KindAttribute,
		EntityID:   attributeID,
	})
}

// AttributeValueCreated reports that a new value row joined an attribute's
// pool, usually as a side effect of an assignment batch.
func (e *Emitter) AttributeValueCreated(ctx context.Context, tenantID, valueID string) error {
	return e.publish(ctx, &kafka.CatalogEvent{
		EventType:  TypeAttributeValueCreated,
		TenantID:   tenantID,
		EntityKind: KindAttributeValue,
		EntityID:   valueID,
	})
}

// AttributeValueDeleted reports that a single value was removed from an
// attribute's pool.
func (e *Emitter) AttributeValueDeleted(ctx context.Context, tenantID, valueID string) error {
	return e.publish(ctx, &kafka.CatalogEvent{
		EventType:  TypeAttributeValueDeleted,
		TenantID:   tenantID,
		EntityKind: KindAttributeValue,
		EntityID:   valueID,
	})
}

// ProductCreated reports a product creation
func (e *Emitter) ProductCreated(ctx context.Context, tenantID, productID string) error {
	return e.publish(ctx, &kafka.CatalogEvent{
		EventType:  TypeProductCreated,
		TenantID:   tenantID,
		EntityKind: KindProduct,
		EntityID:   productID,
	})
}

// ProductUpdated reports a product update
func (e *Emitter) ProductUpdated(ctx context.Context, tenantID, productID string) error {
	return e.publish(ctx, &kafka.CatalogEvent{
		EventType:  TypeProductUpdated,
		TenantID:   tenantID,
		EntityKind: KindProduct,
		EntityID:   productID,
	})
}

// ProductDeleted reports a product deletion
func (e *Emitter) ProductDeleted(ctx context.Context, tenantID, productID string) error {
	return e.publish(ctx, &kafka.CatalogEvent{
		EventType:  TypeProductDeleted,
		TenantID:   tenantID,
		EntityKind: KindProduct,
		EntityID:   productID,
	})
}

// VariantCreated reports a variant creation
func (e *Emitter) VariantCreated(ctx context.Context, tenantID, variantID string) error {
	return e.publish(ctx, &kafka.CatalogEvent{
		EventType:  TypeVariantCreated,
		TenantID:   tenantID,
		EntityKind: KindVariant,
		EntityID:   variantID,
	})
}

// VariantUpdated reports a variant update
func (e *Emitter) VariantUpdated(ctx context.Context, tenantID, variantID string) error {
	return e.publish(ctx, &kafka.CatalogEvent{
		EventType:  TypeVariantUpdated,
		TenantID:   tenantID,
		EntityKind: KindVariant,
		EntityID:   variantID,
	})
}

// VariantDeleted reports a variant deletion
func (e *Emitter) VariantDeleted(ctx context.Context, tenantID, variantID string) error {
	return e.publish(ctx, &kafka.CatalogEvent{
		EventType:  TypeVariantDeleted,
		TenantID:   tenantID,
		EntityKind: KindVariant,
		EntityID:   variantID,
	})
}

// PageDeleted reports a page deletion
func (e *Emitter) PageDeleted(ctx context.Context, tenantID, pageID string) error {
	return e.publish(ctx, &kafka.CatalogEvent{
		EventType:  TypePageDeleted,
		TenantID:   tenantID,
		EntityKind: KindPage,
		EntityID:   pageID,
	})
}
