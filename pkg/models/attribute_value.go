package models

import (
	"encoding/json"
	"time"
)

// AttributeValue is one concrete value of an attribute. Exactly one payload
// column is populated, matching the attribute's input type.
type AttributeValue struct {
	ID          string `json:"id" db:"id"`
	TenantID    string `json:"tenant_id" db:"tenant_id"`
	AttributeID string `json:"attribute_id" db:"attribute_id"`
	Slug        string `json:"slug" db:"slug"`
	Name        string `json:"name" db:"name"`

	PlainText     *string         `json:"plain_text,omitempty" db:"plain_text"`
	RichText      json.RawMessage `json:"rich_text,omitempty" db:"rich_text"`
	Boolean       *bool           `json:"boolean,omitempty" db:"boolean"`
	DateValue     *string         `json:"date,omitempty" db:"date_value"`
	DateTimeValue *time.Time      `json:"date_time,omitempty" db:"datetime_value"`
	FileURL       *string         `json:"file_url,omitempty" db:"file_url"`
	ContentType   *string         `json:"content_type,omitempty" db:"content_type"`
	ReferenceID   *string         `json:"reference_id,omitempty" db:"reference_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AttributeValueListResponse is the API response for listing an attribute's values
type AttributeValueListResponse struct {
	Items      []AttributeValue `json:"items"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}
