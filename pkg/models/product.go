package models

import "time"

// Product is a catalog product, the product-scoped attribute owner
type Product struct {
	ID            string     `json:"id" db:"id"`
	TenantID      string     `json:"tenant_id" db:"tenant_id"`
	ProductTypeID string     `json:"product_type_id" db:"product_type_id"`
	Slug          string     `json:"slug" db:"slug"`
	Name          string     `json:"name" db:"name"`
	Description   string     `json:"description,omitempty" db:"description"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ProductVariant is a sellable variant of a product, the variant-scoped
// attribute owner
type ProductVariant struct {
	ID        string     `json:"id" db:"id"`
	TenantID  string     `json:"tenant_id" db:"tenant_id"`
	ProductID string     `json:"product_id" db:"product_id"`
	SKU       string     `json:"sku" db:"sku"`
	Name      string     `json:"name" db:"name"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Page is a content page; it exists here as a reference-attribute target
type Page struct {
	ID        string     `json:"id" db:"id"`
	TenantID  string     `json:"tenant_id" db:"tenant_id"`
	Slug      string     `json:"slug" db:"slug"`
	Title     string     `json:"title" db:"title"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CreateProductRequest is the request body for creating a product
type CreateProductRequest struct {
	ProductTypeID string `json:"product_type_id" validate:"required"`
	Slug          string `json:"slug" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description,omitempty"`
}

// UpdateProductRequest is the request body for updating a product
type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateVariantRequest is the request body for creating a product variant
type CreateVariantRequest struct {
	SKU  string `json:"sku" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// UpdateVariantRequest is the request body for updating a product variant
type UpdateVariantRequest struct {
	SKU  *string `json:"sku,omitempty"`
	Name *string `json:"name,omitempty"`
}

// CreatePageRequest is the request body for creating a page
type CreatePageRequest struct {
	Slug  string `json:"slug" validate:"required"`
	Title string `json:"title" validate:"required"`
}

// ProductResponse is the API response for product operations
type ProductResponse struct {
	Product
}

// ProductListResponse is the API response for listing products
type ProductListResponse struct {
	Items      []Product `json:"items"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}

// VariantResponse is the API response for variant operations
type VariantResponse struct {
	ProductVariant
}

// VariantListResponse is the API response for listing a product's variants
type VariantListResponse struct {
	Items      []ProductVariant `json:"items"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}

// PageResponse is the API response for page operations
type PageResponse struct {
	Page
}

// PageListResponse is the API response for listing pages
type PageListResponse struct {
	Items      []Page `json:"items"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}
