package models

import "time"

// AttributeScope says whether an attribute applies to the product itself or
// to its variants.
type AttributeScope string

const (
	AttributeScopeProduct AttributeScope = "product"
	AttributeScopeVariant AttributeScope = "variant"
)

func (s AttributeScope) IsValid() bool {
	return s == AttributeScopeProduct || s == AttributeScopeVariant
}

// ProductType groups products sharing the same attribute sets
type ProductType struct {
	ID          string     `json:"id" db:"id"`
	TenantID    string     `json:"tenant_id" db:"tenant_id"`
	Slug        string     `json:"slug" db:"slug"`
	Name        string     `json:"name" db:"name"`
	HasVariants bool       `json:"has_variants" db:"has_variants"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ProductTypeAttribute is one registry entry: attribute X applies to
// products (or variants) of product type Y.
type ProductTypeAttribute struct {
	ID            string         `json:"id" db:"id"`
	ProductTypeID string         `json:"product_type_id" db:"product_type_id"`
	AttributeID   string         `json:"attribute_id" db:"attribute_id"`
	Scope         AttributeScope `json:"scope" db:"scope"`
	SortOrder     int            `json:"sort_order" db:"sort_order"`
}

// RegistryEntry is an attribute definition joined with its registry row,
// as returned by the attribute registry lookups.
type RegistryEntry struct {
	Attribute
	Scope     AttributeScope `json:"scope" db:"scope"`
	SortOrder int            `json:"sort_order" db:"sort_order"`
}

// CreateProductTypeRequest is the request body for creating a product type
type CreateProductTypeRequest struct {
	Slug        string `json:"slug" validate:"required"`
	Name        string `json:"name" validate:"required"`
	HasVariants bool   `json:"has_variants"`
}

// UpdateProductTypeRequest is the request body for updating a product type
type UpdateProductTypeRequest struct {
	Name        *string `json:"name,omitempty"`
	HasVariants *bool   `json:"has_variants,omitempty"`
}

// AttachAttributeRequest attaches an attribute to a product type's
// product-level or variant-level attribute set.
type AttachAttributeRequest struct {
	AttributeID string         `json:"attribute_id" validate:"required"`
	Scope       AttributeScope `json:"scope" validate:"required"`
	SortOrder   int            `json:"sort_order"`
}

// ProductTypeResponse is the API response for product type operations
type ProductTypeResponse struct {
	ProductType
}

// ProductTypeListResponse is the API response for listing product types
type ProductTypeListResponse struct {
	Items      []ProductType `json:"items"`
	TotalCount int           `json:"total_count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
}

// RegistryResponse lists the attributes applicable to one scope of a product type
type RegistryResponse struct {
	ProductTypeID string          `json:"product_type_id"`
	Scope         AttributeScope  `json:"scope"`
	Items         []RegistryEntry `json:"items"`
}
