package events

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/petal/pkg/kafka"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	events []*kafka.CatalogEvent
}

func (p *capturingPublisher) PublishCatalogEvent(ctx context.Context, event *kafka.CatalogEvent) error {
	p.events = append(p.events, event)
	return nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestEmitterNilProducerIsNoOp(t *testing.T) {
	e := NewEmitter(nil, testLogger())

	assert.NoError(t, e.AttributeDeleted(context.Background(), "t1", "attr-1"))
	assert.NoError(t, e.ProductDeleted(context.Background(), "t1", "prod-1"))
}

func TestEmitterAttributesAssigned(t *testing.T) {
	p := &capturingPublisher{}
	e := NewEmitter(p, testLogger())

	err := e.AttributesAssigned(context.Background(), "t1", models.OwnerKindVariant, "var-1", []string{"a", "b"})

	require.NoError(t, err)
	require.Len(t, p.events, 1)
	assert.Equal(t, TypeAttributeAssigned, p.events[0].EventType)
	assert.Equal(t, "t1", p.events[0].TenantID)
	assert.Equal(t, "variant", p.events[0].EntityKind)
	assert.Equal(t, "var-1", p.events[0].EntityID)
	assert.Equal(t, []string{"a", "b"}, p.events[0].AttributeIDs)
}

func TestEmitterDeletionEvents(t *testing.T) {
	p := &capturingPublisher{}
	e := NewEmitter(p, testLogger())

	require.NoError(t, e.AttributeDeleted(context.Background(), "t1", "attr-1"))
	require.NoError(t, e.AttributeValueDeleted(context.Background(), "t1", "val-1"))
	require.NoError(t, e.PageDeleted(context.Background(), "t1", "page-1"))

	require.Len(t, p.events, 3)
	assert.Equal(t, TypeAttributeDeleted, p.events[0].EventType)
	assert.Equal(t, KindAttribute, p.events[0].EntityKind)
	assert.Equal(t, TypeAttributeValueDeleted, p.events[1].EventType)
	assert.Equal(t, "val-1", p.events[1].EntityID)
	assert.Equal(t, TypePageDeleted, p.events[2].EventType)
	assert.Equal(t, KindPage, p.events[2].EntityKind)
}

func TestEmitterLifecycleEvents(t *testing.T) {
	p := &capturingPublisher{}
	e := NewEmitter(p, testLogger())

	require.NoError(t, e.AttributeValueCreated(context.Background(), "t1", "val-1"))
	require.NoError(t, e.ProductCreated(context.Background(), "t1", "prod-1"))
	require.NoError(t, e.ProductUpdated(context.Background(), "t1", "prod-1"))
	require.NoError(t, e.VariantCreated(context.Background(), "t1", "var-1"))
	require.NoError(t, e.VariantUpdated(context.Background(), "t1", "var-1"))

	require.Len(t, p.events, 5)
	assert.Equal(t, TypeAttributeValueCreated, p.events[0].EventType)
	assert.Equal(t, KindAttributeValue, p.events[0].EntityKind)
	assert.Equal(t, TypeProductCreated, p.events[1].EventType)
	assert.Equal(t, TypeProductUpdated, p.events[2].EventType)
	assert.Equal(t, TypeVariantCreated, p.events[3].EventType)
	assert.Equal(t, TypeVariantUpdated, p.events[4].EventType)
	assert.Equal(t, "var-1", p.events[4].EntityID)
}
