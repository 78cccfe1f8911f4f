package kafka

import (
	"encoding/json"
	"time"
)

// CatalogEvent is the wire format for every event petal produces and consumes
type CatalogEvent struct {
	EventType    string    `json:"event_type"`
	TenantID     string    `json:"tenant_id"`
	EntityKind   string    `json:"entity_kind,omitempty"`
	EntityID     string    `json:"entity_id"`
	AttributeIDs []string  `json:"attribute_ids,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Trace context (extracted from Kafka headers)
	TraceParent string
	TraceState  string

	Event *CatalogEvent
}

// ParseCatalogEvent parses the message value as a catalog event
func (m *IncomingMessage) ParseCatalogEvent() error {
	var event CatalogEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return err
	}
	m.Event = &event
	return nil
}

// EventType returns the event type from the parsed event, falling back to the
// message header.
func (m *IncomingMessage) EventType() string {
	if m.Event != nil && m.Event.EventType != "" {
		return m.Event.EventType
	}
	return m.Headers["event_type"]
}

// GetTenantID returns the tenant the event belongs to
func (m *IncomingMessage) GetTenantID() string {
	if m.Event != nil && m.Event.TenantID != "" {
		return m.Event.TenantID
	}
	return m.Headers["tenant_id"]
}
