package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalogEvent(t *testing.T) {
	msg := &IncomingMessage{
		Value: []byte(`{"event_type":"attribute.deleted","tenant_id":"t1","entity_kind":"attribute","entity_id":"attr-1"}`),
	}

	require.NoError(t, msg.ParseCatalogEvent())
	assert.Equal(t, "attribute.deleted", msg.Event.EventType)
	assert.Equal(t, "t1", msg.Event.TenantID)
	assert.Equal(t, "attr-1", msg.Event.EntityID)
}

func TestParseCatalogEventBadJSON(t *testing.T) {
	msg := &IncomingMessage{Value: []byte("not json")}

	assert.Error(t, msg.ParseCatalogEvent())
	assert.Nil(t, msg.Event)
}

func TestEventTypeFallsBackToHeader(t *testing.T) {
	msg := &IncomingMessage{
		Headers: map[string]string{"event_type": "product.deleted"},
	}
	assert.Equal(t, "product.deleted", msg.EventType())

	msg.Event = &CatalogEvent{EventType: "variant.deleted"}
	assert.Equal(t, "variant.deleted", msg.EventType())
}

func TestGetTenantIDFallsBackToHeader(t *testing.T) {
	msg := &IncomingMessage{
		Headers: map[string]string{"tenant_id": "t2"},
		Event:   &CatalogEvent{},
	}
	assert.Equal(t, "t2", msg.GetTenantID())

	msg.Event.TenantID = "t1"
	assert.Equal(t, "t1", msg.GetTenantID())
}
