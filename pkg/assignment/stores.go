package assignment

import (
	"context"

	"github.com/Ramsey-B/petal/pkg/models"
)

// Definitions looks up attribute definitions regardless of product type
// membership. Used to tell an unknown id apart from an out-of-scope one.
type Definitions interface {
	GetByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Attribute, error)
}

// Registry lists the attributes applicable to one scope of a product type
type Registry interface {
	Entries(ctx context.Context, tenantID, productTypeID string, scope models.AttributeScope) ([]models.RegistryEntry, error)
}

// ValueStore is the attribute value pool. Create resolves slug races against
// the unique constraint by re-reading the winning row.
type ValueStore interface {
	GetBySlug(ctx context.Context, tenantID, attributeID, slug string) (*models.AttributeValue, error)
	GetByName(ctx context.Context, tenantID, attributeID, name string) (*models.AttributeValue, error)
	GetByFileURL(ctx context.Context, tenantID, attributeID, fileURL string) (*models.AttributeValue, error)
	GetByIDs(ctx context.Context, tenantID string, ids []string) ([]models.AttributeValue, error)
	ListSlugsByPrefix(ctx context.Context, tenantID, attributeID, prefix string) ([]string, error)
	Create(ctx context.Context, tenantID string, value *models.AttributeValue) (*models.AttributeValue, error)
	Update(ctx context.Context, tenantID string, value *models.AttributeValue) (*models.AttributeValue, error)
}

// AssignmentStore persists the owner-to-value join rows
type AssignmentStore interface {
	ListForOwner(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID string) ([]models.AssignedValue, error)
	ReplaceForAttribute(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID, attributeID string, valueIDs []string) error
	DeleteForAttribute(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID, attributeID string) error
}

// ReferenceTarget is a catalog entity a REFERENCE attribute may point at
type ReferenceTarget struct {
	ID   string
	Kind models.ReferenceEntity
	Name string
}

// EntityStore resolves reference target ids across products, variants and pages
type EntityStore interface {
	GetReference(ctx context.Context, tenantID, id string) (*ReferenceTarget, error)
}

// Emitter publishes catalog events after a successful assignment
type Emitter interface {
	AttributesAssigned(ctx context.Context, tenantID string, ownerKind models.OwnerKind, ownerID string, attributeIDs []string) error
	AttributeValueCreated(ctx context.Context, tenantID, valueID string) error
}
