package models

import "time"

// InputType describes the shape of data an attribute accepts
type InputType string

const (
	InputTypePlainText   InputType = "PLAIN_TEXT"
	InputTypeRichText    InputType = "RICH_TEXT"
	InputTypeNumeric     InputType = "NUMERIC"
	InputTypeBoolean     InputType = "BOOLEAN"
	InputTypeDate        InputType = "DATE"
	InputTypeDateTime    InputType = "DATE_TIME"
	InputTypeDropdown    InputType = "DROPDOWN"
	InputTypeMultiselect InputType = "MULTISELECT"
	InputTypeSwatch      InputType = "SWATCH"
	InputTypeFile        InputType = "FILE"
	InputTypeReference   InputType = "REFERENCE"
)

// ReferenceEntity is the kind of catalog entity a REFERENCE attribute points at
type ReferenceEntity string

const (
	ReferenceEntityProduct ReferenceEntity = "PRODUCT"
	ReferenceEntityVariant ReferenceEntity = "VARIANT"
	ReferenceEntityPage    ReferenceEntity = "PAGE"
)

// IsValid reports whether the input type is one of the supported kinds
func (t InputType) IsValid() bool {
	switch t {
	case InputTypePlainText, InputTypeRichText, InputTypeNumeric, InputTypeBoolean,
		InputTypeDate, InputTypeDateTime, InputTypeDropdown, InputTypeMultiselect,
		InputTypeSwatch, InputTypeFile, InputTypeReference:
		return true
	}
	return false
}

// IsMultiValue reports whether the input type may carry more than one value
// per owner. Everything else is capped at a single value.
func (t InputType) IsMultiValue() bool {
	switch t {
	case InputTypeMultiselect, InputTypeReference:
		return true
	}
	return false
}

// IsSelectable reports whether values are drawn from a reusable, user-named
// pool (slugified from the literal) rather than derived deterministically.
func (t InputType) IsSelectable() bool {
	switch t {
	case InputTypeDropdown, InputTypeMultiselect, InputTypeSwatch:
		return true
	}
	return false
}

// IsOwnerScoped reports whether the value slug is keyed by the owning entity,
// so re-assignment overwrites the same row instead of creating another.
func (t InputType) IsOwnerScoped() bool {
	switch t {
	case InputTypeNumeric, InputTypeDate, InputTypeDateTime, InputTypeRichText:
		return true
	}
	return false
}

func (e ReferenceEntity) IsValid() bool {
	switch e {
	case ReferenceEntityProduct, ReferenceEntityVariant, ReferenceEntityPage:
		return true
	}
	return false
}

// Attribute is a typed, reusable field definition attachable to product types
type Attribute struct {
	ID              string           `json:"id" db:"id"`
	TenantID        string           `json:"tenant_id" db:"tenant_id"`
	Slug            string           `json:"slug" db:"slug"`
	Name            string           `json:"name" db:"name"`
	InputType       InputType        `json:"input_type" db:"input_type"`
	ReferenceEntity *ReferenceEntity `json:"reference_entity,omitempty" db:"reference_entity"`
	ValueRequired   bool             `json:"value_required" db:"value_required"`
	Unit            *string          `json:"unit,omitempty" db:"unit"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time       `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CreateAttributeRequest is the request body for creating an attribute
type CreateAttributeRequest struct {
	Slug            string           `json:"slug" validate:"required"`
	Name            string           `json:"name" validate:"required"`
	InputType       InputType        `json:"input_type" validate:"required"`
	ReferenceEntity *ReferenceEntity `json:"reference_entity,omitempty"`
	ValueRequired   bool             `json:"value_required"`
	Unit            *string          `json:"unit,omitempty"`
}

// UpdateAttributeRequest is the request body for updating an attribute.
// Input type and reference entity are immutable once values exist, so they
// are not updatable here.
type UpdateAttributeRequest struct {
	Name          *string `json:"name,omitempty"`
	ValueRequired *bool   `json:"value_required,omitempty"`
	Unit          *string `json:"unit,omitempty"`
}

// AttributeResponse is the API response for attribute operations
type AttributeResponse struct {
	Attribute
}

// AttributeListResponse is the API response for listing attributes
type AttributeListResponse struct {
	Items      []Attribute `json:"items"`
	TotalCount int         `json:"total_count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
}
