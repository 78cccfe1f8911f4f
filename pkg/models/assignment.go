package models

import "time"

// OwnerKind is the kind of entity an attribute value is assigned to
type OwnerKind string

const (
	OwnerKindProduct OwnerKind = "product"
	OwnerKindVariant OwnerKind = "variant"
)

func (k OwnerKind) IsValid() bool {
	return k == OwnerKindProduct || k == OwnerKindVariant
}

// Scope maps the owner kind to the registry scope it draws attributes from
func (k OwnerKind) Scope() AttributeScope {
	if k == OwnerKindVariant {
		return AttributeScopeVariant
	}
	return AttributeScopeProduct
}

// AssignedValue is one join row tying an owner's attribute to one value.
// Rows for the same (owner, attribute) are ordered by SortOrder, which is the
// submission order.
type AssignedValue struct {
	ID          string    `json:"id" db:"id"`
	TenantID    string    `json:"tenant_id" db:"tenant_id"`
	OwnerKind   OwnerKind `json:"owner_kind" db:"owner_kind"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	AttributeID string    `json:"attribute_id" db:"attribute_id"`
	ValueID     string    `json:"value_id" db:"value_id"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// OwnerAttribute is one attribute of an owner with its assigned values in
// assignment order.
type OwnerAttribute struct {
	Attribute Attribute        `json:"attribute"`
	Values    []AttributeValue `json:"values"`
}

// OwnerAttributesResponse is the API response for assignment operations and
// owner attribute listings.
type OwnerAttributesResponse struct {
	OwnerKind  OwnerKind        `json:"owner_kind"`
	OwnerID    string           `json:"owner_id"`
	Attributes []OwnerAttribute `json:"attributes"`
}
