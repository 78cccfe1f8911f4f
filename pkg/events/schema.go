// Package events is the typed surface over the catalog events topic.
package events

// Event types published to the catalog topic
const (
	TypeAttributeAssigned     = "attribute.assigned"
	TypeAttributeDeleted      = "attribute.deleted"
	TypeAttributeValueCreated = "attribute_value.created"
	TypeAttributeValueDeleted = "attribute_value.deleted"
	TypeProductCreated        = "product.created"
	TypeProductUpdated        = "product.updated"
	TypeProductDeleted        = "product.deleted"
	TypeVariantCreated        = "variant.created"
	TypeVariantUpdated        = "variant.updated"
	TypeVariantDeleted        = "variant.deleted"
	TypePageDeleted           = "page.deleted"
)

// Entity kinds carried on catalog events
const (
	KindProduct        = "product"
	KindVariant        = "variant"
	KindPage           = "page"
	KindAttribute      = "attribute"
	KindAttributeValue = "attribute_value"
)
