package assignment

import (
	"encoding/json"
	"strings"

	"github.com/Ramsey-B/petal/pkg/models"
)

// PayloadKind identifies which payload field of an AttributeInput is populated
type PayloadKind string

const (
	KindValues     PayloadKind = "values"
	KindPlainText  PayloadKind = "plain_text"
	KindRichText   PayloadKind = "rich_text"
	KindBoolean    PayloadKind = "boolean"
	KindDate       PayloadKind = "date"
	KindDateTime   PayloadKind = "date_time"
	KindFile       PayloadKind = "file"
	KindReferences PayloadKind = "references"
	KindEmpty      PayloadKind = "empty"
)

// FileInput is the payload for FILE attributes
type FileInput struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
}

// AttributeInput is one item of an assignment batch. Exactly one payload
// field must be populated; an entirely empty payload clears the attribute.
type AttributeInput struct {
	ID         string          `json:"id"`
	Values     []string        `json:"values,omitempty"`
	PlainText  *string         `json:"plain_text,omitempty"`
	RichText   json.RawMessage `json:"rich_text,omitempty"`
	Boolean    *bool           `json:"boolean,omitempty"`
	Date       *string         `json:"date,omitempty"`
	DateTime   *string         `json:"date_time,omitempty"`
	File       *FileInput      `json:"file,omitempty"`
	References []string        `json:"references,omitempty"`
}

// Kinds lists every populated payload kind. Empty slices and JSON null do not
// count as populated.
func (in AttributeInput) Kinds() []PayloadKind {
	var kinds []PayloadKind
	if len(in.Values) > 0 {
		kinds = append(kinds, KindValues)
	}
	if in.PlainText != nil {
		kinds = append(kinds, KindPlainText)
	}
	if len(in.RichText) > 0 && string(in.RichText) != "null" {
		kinds = append(kinds, KindRichText)
	}
	if in.Boolean != nil {
		kinds = append(kinds, KindBoolean)
	}
	if in.Date != nil {
		kinds = append(kinds, KindDate)
	}
	if in.DateTime != nil {
		kinds = append(kinds, KindDateTime)
	}
	if in.File != nil {
		kinds = append(kinds, KindFile)
	}
	if len(in.References) > 0 {
		kinds = append(kinds, KindReferences)
	}
	return kinds
}

// Kind returns the single populated payload kind, or KindEmpty for the
// clear-this-attribute form. Call Kinds first to reject multi-kind inputs.
func (in AttributeInput) Kind() PayloadKind {
	kinds := in.Kinds()
	if len(kinds) == 0 {
		return KindEmpty
	}
	return kinds[0]
}

// kindForInputType maps an attribute's input type to the payload kind its
// inputs must use.
func kindForInputType(t models.InputType) PayloadKind {
	switch t {
	case models.InputTypePlainText:
		return KindPlainText
	case models.InputTypeRichText:
		return KindRichText
	case models.InputTypeBoolean:
		return KindBoolean
	case models.InputTypeDate:
		return KindDate
	case models.InputTypeDateTime:
		return KindDateTime
	case models.InputTypeFile:
		return KindFile
	case models.InputTypeReference:
		return KindReferences
	default:
		return KindValues
	}
}

// nonBlank filters whitespace-only literals, preserving order
func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
