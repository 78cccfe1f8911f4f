package assignment

import (
	"fmt"
	"sort"
	"strings"
)

// Code classifies an assignment batch violation
type Code string

const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeRequired         Code = "REQUIRED"
	CodeInvalid          Code = "INVALID"
	CodeDuplicatedInput  Code = "DUPLICATED_INPUT_ITEM"
	CodeCannotBeAssigned Code = "ATTRIBUTE_CANNOT_BE_ASSIGNED"
)

// Error is one batch violation. Attributes carries every attribute id that
// shares this violation, so callers fix all of them in one round-trip.
type Error struct {
	Field      string   `json:"field"`
	Code       Code     `json:"code"`
	Message    string   `json:"message"`
	Attributes []string `json:"attributes,omitempty"`
}

func (e Error) Error() string {
	if len(e.Attributes) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(e.Attributes, ", "))
}

// NewError builds a violation for the "attributes" input field
func NewError(code Code, message string, attributeIDs ...string) Error {
	sort.Strings(attributeIDs)
	return Error{
		Field:      "attributes",
		Code:       code,
		Message:    message,
		Attributes: attributeIDs,
	}
}

// List is the full set of violations found in one batch
type List []Error

func (l List) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// HasErrors reports whether any violation was collected
func (l List) HasErrors() bool {
	return len(l) > 0
}

// group collects ids per message so that ids sharing one violation kind land
// in a single error entry.
type group struct {
	code  Code
	order []string
	ids   map[string][]string
}

func newGroup(code Code) *group {
	return &group{code: code, ids: map[string][]string{}}
}

func (g *group) add(message string, attributeIDs ...string) {
	if _, ok := g.ids[message]; !ok {
		g.order = append(g.order, message)
	}
	g.ids[message] = append(g.ids[message], attributeIDs...)
}

func (g *group) appendTo(list List) List {
	for _, message := range g.order {
		list = append(list, NewError(g.code, message, g.ids[message]...))
	}
	return list
}
