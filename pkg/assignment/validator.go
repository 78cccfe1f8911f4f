package assignment

import (
	"strconv"
	"strings"
	"time"

	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/Ramsey-B/petal/pkg/slug"
)

const (
	msgNotFound        = "Attribute does not exist"
	msgCannotAssign    = "Attribute cannot be assigned to this owner"
	msgDuplicatedID    = "Attribute is duplicated in the input"
	msgDuplicatedValue = "Duplicated values given for attribute"
	msgMultipleKinds   = "Attribute input must populate exactly one value field"
	msgWrongKind       = "Attribute input does not match the attribute input type"
	msgSingleValue     = "Attribute must take only one value"
	msgNotNumeric      = "Value must be a number"
	msgBadDate         = "Value must be a date in YYYY-MM-DD format"
	msgBadDateTime     = "Value must be an RFC 3339 date-time"
	msgRequired        = "Attribute requires a value"
)

// CheckedInput is a batch item that passed validation. Values holds the
// blank-filtered literals (or reference ids) in submission order; Clear marks
// the explicit empty payload that removes the attribute's assignment.
type CheckedInput struct {
	Entry  models.RegistryEntry
	Input  AttributeInput
	Values []string
	Clear  bool
}

// Validator checks a whole batch eagerly and collects every violation before
// anything is written.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate resolves each input against the registry entries for the owner's
// scope and checks payloads. known holds ids that exist as attributes at all,
// so an out-of-scope id fails with ATTRIBUTE_CANNOT_BE_ASSIGNED rather than
// NOT_FOUND. prior is the owner's current assignment rows, consulted for the
// value_required check.
func (v *Validator) Validate(entries []models.RegistryEntry, known map[string]bool, prior []models.AssignedValue, inputs []AttributeInput) ([]CheckedInput, List) {
	entryByID := make(map[string]models.RegistryEntry, len(entries))
	for _, entry := range entries {
		entryByID[entry.ID] = entry
	}

	priorSet := make(map[string]bool, len(prior))
	for _, row := range prior {
		priorSet[row.AttributeID] = true
	}

	notFound := newGroup(CodeNotFound)
	cannotAssign := newGroup(CodeCannotBeAssigned)
	duplicated := newGroup(CodeDuplicatedInput)
	invalid := newGroup(CodeInvalid)
	required := newGroup(CodeRequired)

	var checked []CheckedInput
	seen := map[string]bool{}
	duplicatedIDs := map[string]bool{}
	satisfied := map[string]bool{}
	cleared := map[string]bool{}

	for _, in := range inputs {
		if seen[in.ID] {
			if !duplicatedIDs[in.ID] {
				duplicatedIDs[in.ID] = true
				duplicated.add(msgDuplicatedID, in.ID)
			}
			continue
		}
		seen[in.ID] = true

		entry, inScope := entryByID[in.ID]
		if !inScope {
			if known[in.ID] {
				cannotAssign.add(msgCannotAssign, in.ID)
			} else {
				notFound.add(msgNotFound, in.ID)
			}
			continue
		}

		kinds := in.Kinds()
		if len(kinds) > 1 {
			invalid.add(msgMultipleKinds, in.ID)
			continue
		}
		if len(kinds) == 0 {
			cleared[in.ID] = true
			checked = append(checked, CheckedInput{Entry: entry, Input: in, Clear: true})
			continue
		}

		if kinds[0] != kindForInputType(entry.InputType) {
			invalid.add(msgWrongKind, in.ID)
			continue
		}

		item, ok := v.checkPayload(entry, in, kinds[0], duplicated, invalid)
		if !ok {
			continue
		}
		if item.Clear {
			cleared[in.ID] = true
		} else {
			satisfied[in.ID] = true
		}
		checked = append(checked, item)
	}

	// A required attribute must end the batch with a value: a blank or clearing
	// submission fails even when a prior assignment exists, an omitted one
	// fails only when nothing was assigned before.
	for _, entry := range entries {
		if !entry.ValueRequired || satisfied[entry.ID] {
			continue
		}
		if cleared[entry.ID] || !priorSet[entry.ID] {
			required.add(msgRequired, entry.ID)
		}
	}

	var errs List
	errs = notFound.appendTo(errs)
	errs = cannotAssign.appendTo(errs)
	errs = duplicated.appendTo(errs)
	errs = invalid.appendTo(errs)
	errs = required.appendTo(errs)

	if errs.HasErrors() {
		return nil, errs
	}
	return checked, nil
}

func (v *Validator) checkPayload(entry models.RegistryEntry, in AttributeInput, kind PayloadKind, duplicated, invalid *group) (CheckedInput, bool) {
	item := CheckedInput{Entry: entry, Input: in}

	switch kind {
	case KindValues:
		values := nonBlank(in.Values)
		if len(values) == 0 {
			item.Clear = true
			return item, true
		}
		if !entry.InputType.IsMultiValue() && len(values) > 1 {
			invalid.add(msgSingleValue, in.ID)
			return item, false
		}
		if hasDuplicates(values) {
			duplicated.add(msgDuplicatedValue, in.ID)
			return item, false
		}
		if entry.InputType == models.InputTypeNumeric {
			if _, err := strconv.ParseFloat(strings.TrimSpace(values[0]), 64); err != nil {
				invalid.add(msgNotNumeric, in.ID)
				return item, false
			}
		}
		item.Values = values
	case KindPlainText:
		if strings.TrimSpace(*in.PlainText) == "" {
			item.Clear = true
		}
	case KindRichText, KindBoolean:
		// populated is enough
	case KindDate:
		value := strings.TrimSpace(*in.Date)
		if value == "" {
			item.Clear = true
			return item, true
		}
		if _, err := time.Parse("2006-01-02", value); err != nil {
			invalid.add(msgBadDate, in.ID)
			return item, false
		}
	case KindDateTime:
		value := strings.TrimSpace(*in.DateTime)
		if value == "" {
			item.Clear = true
			return item, true
		}
		if _, err := time.Parse(time.RFC3339, value); err != nil {
			invalid.add(msgBadDateTime, in.ID)
			return item, false
		}
	case KindFile:
		if strings.TrimSpace(in.File.URL) == "" {
			item.Clear = true
		}
	case KindReferences:
		refs := nonBlank(in.References)
		if len(refs) == 0 {
			item.Clear = true
			return item, true
		}
		if hasDuplicates(refs) {
			duplicated.add(msgDuplicatedValue, in.ID)
			return item, false
		}
		item.Values = refs
	}

	return item, true
}

func hasDuplicates(values []string) bool {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		norm := slug.Normalize(v)
		if seen[norm] {
			return true
		}
		seen[norm] = true
	}
	return false
}
