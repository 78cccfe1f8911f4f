package assignment

import (
	"testing"

	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, inputType models.InputType) models.RegistryEntry {
	return models.RegistryEntry{
		Attribute: models.Attribute{
			ID:        id,
			Slug:      id,
			Name:      id,
			InputType: inputType,
		},
		Scope: models.AttributeScopeProduct,
	}
}

func requiredEntry(id string, inputType models.InputType) models.RegistryEntry {
	e := entry(id, inputType)
	e.ValueRequired = true
	return e
}

func strptr(s string) *string { return &s }

func boolptr(b bool) *bool { return &b }

func findError(t *testing.T, errs List, code Code) Error {
	t.Helper()
	for _, e := range errs {
		if e.Code == code {
			return e
		}
	}
	t.Fatalf("no %s error in %v", code, errs)
	return Error{}
}

func TestValidateUnknownAttributeIsNotFound(t *testing.T) {
	v := NewValidator()

	checked, errs := v.Validate(nil, map[string]bool{}, nil, []AttributeInput{
		{ID: "ghost-1", Values: []string{"x"}},
		{ID: "ghost-2", Values: []string{"y"}},
	})

	assert.Nil(t, checked)
	require.Len(t, errs, 1)
	assert.Equal(t, CodeNotFound, errs[0].Code)
	assert.Equal(t, "attributes", errs[0].Field)
	assert.Equal(t, []string{"ghost-1", "ghost-2"}, errs[0].Attributes)
}

func TestValidateOutOfScopeAttributeCannotBeAssigned(t *testing.T) {
	v := NewValidator()

	// The attribute exists, it just is not in the owner's registry scope.
	known := map[string]bool{"variant-only": true}
	_, errs := v.Validate(nil, known, nil, []AttributeInput{
		{ID: "variant-only", Values: []string{"x"}},
	})

	require.Len(t, errs, 1)
	assert.Equal(t, CodeCannotBeAssigned, errs[0].Code)
	assert.Equal(t, []string{"variant-only"}, errs[0].Attributes)
}

func TestValidateDuplicateAttributeIDs(t *testing.T) {
	v := NewValidator()
	entries := []models.RegistryEntry{entry("color", models.InputTypeDropdown)}

	_, errs := v.Validate(entries, map[string]bool{}, nil, []AttributeInput{
		{ID: "color", Values: []string{"red"}},
		{ID: "color", Values: []string{"blue"}},
		{ID: "color", Values: []string{"green"}},
	})

	require.Len(t, errs, 1)
	assert.Equal(t, CodeDuplicatedInput, errs[0].Code)
	assert.Equal(t, []string{"color"}, errs[0].Attributes)
}

func TestValidateDuplicateValuesCaseInsensitive(t *testing.T) {
	v := NewValidator()
	entries := []models.RegistryEntry{entry("tags", models.InputTypeMultiselect)}

	_, errs := v.Validate(entries, map[string]bool{}, nil, []AttributeInput{
		{ID: "tags", Values: []string{"Red", "red"}},
	})

	require.Len(t, errs, 1)
	assert.Equal(t, CodeDuplicatedInput, errs[0].Code)
}

func TestValidateSingleValueCardinality(t *testing.T) {
	v := NewValidator()
	entries := []models.RegistryEntry{entry("size", models.InputTypeDropdown)}

	_, errs := v.Validate(entries, map[string]bool{}, nil, []AttributeInput{
		{ID: "size", Values: []string{"S", "M"}},
	})

	require.Len(t, errs, 1)
	assert.Equal(t, CodeInvalid, errs[0].Code)
	assert.Equal(t, "Attribute must take only one value", errs[0].Message)
}

func TestValidateNumericParse(t *testing.T) {
	v := NewValidator()
	entries := []models.RegistryEntry{entry("weight", models.InputTypeNumeric)}

	_, errs := v.Validate(entries, map[string]bool{}, nil, []AttributeInput{
		{ID: "weight", Values: []string{"heavy"}},
	})
	require.Len(t, errs, 1)
	assert.Equal(t, CodeInvalid, errs[0].Code)

	checked, errs := v.Validate(entries, map[string]bool{}, nil, []AttributeInput{
		{ID: "weight", Values: []string{"12.5"}},
	})
	assert.False(t, errs.HasErrors())
	require.Len(t, checked, 1)
	assert.Equal(t, []string{"12.5"}, checked[0].Values)
}

func TestValidateDateFormats(t *testing.T) {
	v := NewValidator()
	entries := []models.RegistryEntry{
		entry("released", models.InputTypeDate),
		entry("restocked", models.InputTypeDateTime),
	}

	_, errs := v.Validate(entries, map[string]bool{}, nil, []AttributeInput{
		{ID: "released", Date: strptr("31-12-2024")},
		{ID: "restocked", DateTime: strptr("2024-12-31")},
	})

	require.Len(t, errs, 2)
	assert.Equal(t, CodeInvalid, errs[0].Code)
	assert.Equal(t, CodeInvalid, errs[1].Code)

	checked, errs := v.Validate(entries, map[string]bool{}, nil, []AttributeInput{
		{ID: "released", Date: strptr("2024-12-31")},
		{ID: "restocked", DateTime: strptr("2024-12-31T10:30:00Z")},
	})
	assert.False(t, errs.HasErrors())
	assert.Len(t, checked, 2)
}

func TestValidateWrongPayloadKind(t *testing.T) {
	v := NewValidator()
	entries := []models.RegistryEntry{entry("active", models.InputTypeBoolean)}

	_, errs := v.Validate(entries, map[string]bool{}, nil, []AttributeInput{
		{ID: "active", Values: []string{"true"}},
	})

	require.Len(t, errs, 1)
	assert.Equal(t, CodeInvalid, errs[0].Code)
	assert.Equal(t, "Attribute input does not match the attribute input type", errs[0].Message)
}

func TestValidateMultiplePayloadKinds(t *testing.T) {
	v := NewValidator()
	entries := []models.RegistryEntry{entry("desc", models.InputTypePlainText)}

	_, errs := v.Validate(entries, map[string]bool{}, nil, []AttributeInput{
		{ID: "desc", PlainText: strptr("hello"), Boolean: boolptr(true)},
	})

	require.Len(t, errs, 1)
	assert.Equal(t, CodeInvalid, errs[0].Code)
	assert.Equal(t, "Attribute input must populate exactly one value field", errs[0].Message)
}

func TestValidateEmptyPayloadClears(t *testing.T) {
	v := NewValidator()
	entries := []models.RegistryEntry{entry("color", models.InputTypeDropdown)}

	checked, errs := v.Validate(entries, map[string]bool{}, nil, []AttributeInput{
		{ID: "color"},
	})

	assert.False(t, errs.HasErrors())
	require.Len(t, checked, 1)
	assert.True(t, checked[0].Clear)
}

func TestValidateBlankValuesClear(t *testing.T) {
	v := NewValidator()
	entries := []models.RegistryEntry{entry("color", models.InputTypeDropdown)}

	checked, errs := v.Validate(entries, map[string]bool{}, nil, []AttributeInput{
		{ID: "color", Values: []string{"  ", ""}},
	})

	assert.False(t, errs.HasErrors())
	require.Len(t, checked, 1)
	assert.True(t, checked[0].Clear)
}

func TestValidateRequiredOmittedWithoutPrior(t *testing.T) {
	v := NewValidator()
	entries := []models.RegistryEntry{
		requiredEntry("material", models.InputTypeDropdown),
		entry("color", models.InputTypeDropdown),
	}

	_, errs := v.Validate(entries, map[string]bool{}, nil, []AttributeInput{
		{ID: "color", Values: []string{"red"}},
	})

	require.Len(t, errs, 1)
	assert.Equal(t, CodeRequired, errs[0].Code)
	assert.Equal(t, []string{"material"}, errs[0].Attributes)
}

func TestValidateRequiredOmittedWithPrior(t *testing.T) {
	v := NewValidator()
	entries := []models.RegistryEntry{requiredEntry("material", models.InputTypeDropdown)}
	prior := []models.AssignedValue{{AttributeID: "material", ValueID: "v1"}}

	checked, errs := v.Validate(entries, map[string]bool{}, prior, nil)

	assert.False(t, errs.HasErrors())
	assert.Empty(t, checked)
}

func TestValidateRequiredClearedDespitePrior(t *testing.T) {
	v := NewValidator()
	entries := []models.RegistryEntry{requiredEntry("material", models.InputTypeDropdown)}
	prior := []models.AssignedValue{{AttributeID: "material", ValueID: "v1"}}

	_, errs := v.Validate(entries, map[string]bool{}, prior, []AttributeInput{
		{ID: "material"},
	})

	require.Len(t, errs, 1)
	assert.Equal(t, CodeRequired, errs[0].Code)
}

func TestValidateErrorsAreGroupedAndOrdered(t *testing.T) {
	v := NewValidator()
	entries := []models.RegistryEntry{
		entry("size", models.InputTypeDropdown),
		requiredEntry("material", models.InputTypeDropdown),
	}
	known := map[string]bool{"variant-attr": true}

	_, errs := v.Validate(entries, known, nil, []AttributeInput{
		{ID: "missing-b", Values: []string{"x"}},
		{ID: "missing-a", Values: []string{"x"}},
		{ID: "variant-attr", Values: []string{"x"}},
		{ID: "size", Values: []string{"S", "M"}},
	})

	require.Len(t, errs, 4)
	assert.Equal(t, CodeNotFound, errs[0].Code)
	assert.Equal(t, []string{"missing-a", "missing-b"}, errs[0].Attributes)
	assert.Equal(t, CodeCannotBeAssigned, errs[1].Code)
	assert.Equal(t, CodeInvalid, errs[2].Code)
	assert.Equal(t, CodeRequired, errs[3].Code)
	assert.Equal(t, []string{"material"}, errs[3].Attributes)
}
