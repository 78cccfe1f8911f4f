package assignment

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValueStore struct {
	values  map[string]*models.AttributeValue
	seq     int
	creates int
	updates int
}

func newFakeValueStore() *fakeValueStore {
	return &fakeValueStore{values: map[string]*models.AttributeValue{}}
}

func (f *fakeValueStore) seed(value models.AttributeValue) *models.AttributeValue {
	f.seq++
	value.ID = fmt.Sprintf("val-%d", f.seq)
	stored := value
	f.values[value.ID] = &stored
	return &stored
}

func (f *fakeValueStore) GetBySlug(ctx context.Context, tenantID, attributeID, slug string) (*models.AttributeValue, error) {
	for _, v := range f.values {
		if v.AttributeID == attributeID && v.Slug == slug {
			copied := *v
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeValueStore) GetByName(ctx context.Context, tenantID, attributeID, name string) (*models.AttributeValue, error) {
	for _, v := range f.values {
		if v.AttributeID == attributeID && strings.EqualFold(v.Name, name) {
			copied := *v
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeValueStore) GetByFileURL(ctx context.Context, tenantID, attributeID, fileURL string) (*models.AttributeValue, error) {
	for _, v := range f.values {
		if v.AttributeID == attributeID && v.FileURL != nil && *v.FileURL == fileURL {
			copied := *v
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeValueStore) GetByIDs(ctx context.Context, tenantID string, ids []string) ([]models.AttributeValue, error) {
	var out []models.AttributeValue
	for _, id := range ids {
		if v, ok := f.values[id]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeValueStore) ListSlugsByPrefix(ctx context.Context, tenantID, attributeID, prefix string) ([]string, error) {
	var out []string
	for _, v := range f.values {
		if v.AttributeID == attributeID && strings.HasPrefix(v.Slug, prefix) {
			out = append(out, v.Slug)
		}
	}
	return out, nil
}

func (f *fakeValueStore) Create(ctx context.Context, tenantID string, value *models.AttributeValue) (*models.AttributeValue, error) {
	f.creates++
	return f.seed(*value), nil
}

func (f *fakeValueStore) Update(ctx context.Context, tenantID string, value *models.AttributeValue) (*models.AttributeValue, error) {
	f.updates++
	stored := *value
	f.values[value.ID] = &stored
	return &stored, nil
}

type fakeEntityStore struct {
	targets map[string]*ReferenceTarget
}

func (f *fakeEntityStore) GetReference(ctx context.Context, tenantID, id string) (*ReferenceTarget, error) {
	return f.targets[id], nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestResolveNamedValueReusesCaseInsensitively(t *testing.T) {
	store := newFakeValueStore()
	existing := store.seed(models.AttributeValue{AttributeID: "color", Slug: "red", Name: "Red"})
	r := NewResolver(store, &fakeEntityStore{})

	resolved, errs, err := r.Resolve(context.Background(), "t1", "owner-1", CheckedInput{
		Entry:  entry("color", models.InputTypeDropdown),
		Values: []string{"red"},
	})

	require.NoError(t, err)
	assert.False(t, errs.HasErrors())
	assert.Equal(t, []string{existing.ID}, resolved.ValueIDs)
	assert.Equal(t, 0, store.creates)
}

func TestResolveNamedValueSlugCollisionGetsSuffix(t *testing.T) {
	store := newFakeValueStore()
	store.seed(models.AttributeValue{AttributeID: "color", Slug: "deep-red", Name: "DEEP.RED"})
	r := NewResolver(store, &fakeEntityStore{})

	// Same slug form, different name: a new row with a suffixed slug.
	resolved, _, err := r.Resolve(context.Background(), "t1", "owner-1", CheckedInput{
		Entry:  entry("color", models.InputTypeDropdown),
		Values: []string{"Deep Red"},
	})

	require.NoError(t, err)
	require.Len(t, resolved.ValueIDs, 1)
	created := store.values[resolved.ValueIDs[0]]
	assert.Equal(t, "deep-red-2", created.Slug)
	assert.Equal(t, "Deep Red", created.Name)
}

func TestResolveMultiselectPreservesOrder(t *testing.T) {
	store := newFakeValueStore()
	r := NewResolver(store, &fakeEntityStore{})

	resolved, _, err := r.Resolve(context.Background(), "t1", "owner-1", CheckedInput{
		Entry:  entry("tags", models.InputTypeMultiselect),
		Values: []string{"zeta", "alpha", "mid"},
	})

	require.NoError(t, err)
	require.Len(t, resolved.ValueIDs, 3)
	assert.Equal(t, "zeta", store.values[resolved.ValueIDs[0]].Name)
	assert.Equal(t, "alpha", store.values[resolved.ValueIDs[1]].Name)
	assert.Equal(t, "mid", store.values[resolved.ValueIDs[2]].Name)
}

func TestResolveBooleanValuesAreShared(t *testing.T) {
	store := newFakeValueStore()
	r := NewResolver(store, &fakeEntityStore{})
	item := CheckedInput{
		Entry: entry("active", models.InputTypeBoolean),
		Input: AttributeInput{ID: "active", Boolean: boolptr(true)},
	}

	first, _, err := r.Resolve(context.Background(), "t1", "owner-1", item)
	require.NoError(t, err)
	second, _, err := r.Resolve(context.Background(), "t1", "owner-2", item)
	require.NoError(t, err)

	assert.Equal(t, first.ValueIDs, second.ValueIDs)
	assert.Equal(t, 1, store.creates)

	created := store.values[first.ValueIDs[0]]
	assert.Equal(t, "active_true", created.Slug)
	assert.Equal(t, "Boolean: Yes", created.Name)
}

func TestResolveNumericIsOwnerScoped(t *testing.T) {
	store := newFakeValueStore()
	r := NewResolver(store, &fakeEntityStore{})
	weight := entry("weight", models.InputTypeNumeric)

	first, _, err := r.Resolve(context.Background(), "t1", "owner-1", CheckedInput{Entry: weight, Values: []string{"12.5"}})
	require.NoError(t, err)
	second, _, err := r.Resolve(context.Background(), "t1", "owner-2", CheckedInput{Entry: weight, Values: []string{"12.5"}})
	require.NoError(t, err)

	// Same literal on two owners yields two rows.
	assert.NotEqual(t, first.ValueIDs, second.ValueIDs)
	assert.Equal(t, 2, store.creates)
	assert.Equal(t, "owner-1_weight", store.values[first.ValueIDs[0]].Slug)

	// Re-assigning the same owner overwrites the row in place.
	again, _, err := r.Resolve(context.Background(), "t1", "owner-1", CheckedInput{Entry: weight, Values: []string{"99"}})
	require.NoError(t, err)
	assert.Equal(t, first.ValueIDs, again.ValueIDs)
	assert.Equal(t, 2, store.creates)
	assert.Equal(t, 1, store.updates)
	assert.Equal(t, "99", store.values[first.ValueIDs[0]].Name)
}

func TestResolveReferenceKindMismatch(t *testing.T) {
	store := newFakeValueStore()
	entities := &fakeEntityStore{targets: map[string]*ReferenceTarget{
		"prod-1": {ID: "prod-1", Kind: models.ReferenceEntityProduct, Name: "Some Product"},
	}}
	r := NewResolver(store, entities)

	pageRef := models.ReferenceEntityPage
	e := entry("related-page", models.InputTypeReference)
	e.ReferenceEntity = &pageRef

	_, errs, err := r.Resolve(context.Background(), "t1", "owner-1", CheckedInput{
		Entry:  e,
		Values: []string{"prod-1"},
	})

	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, CodeInvalid, errs[0].Code)
	assert.Equal(t, "Invalid reference type", errs[0].Message)
	assert.Equal(t, 0, store.creates)
}

func TestResolveReferenceCreatesOwnerScopedValue(t *testing.T) {
	store := newFakeValueStore()
	entities := &fakeEntityStore{targets: map[string]*ReferenceTarget{
		"prod-1": {ID: "prod-1", Kind: models.ReferenceEntityProduct, Name: "Some Product"},
	}}
	r := NewResolver(store, entities)

	productRef := models.ReferenceEntityProduct
	e := entry("related", models.InputTypeReference)
	e.ReferenceEntity = &productRef

	resolved, errs, err := r.Resolve(context.Background(), "t1", "owner-1", CheckedInput{
		Entry:  e,
		Values: []string{"prod-1"},
	})

	require.NoError(t, err)
	assert.False(t, errs.HasErrors())
	require.Len(t, resolved.ValueIDs, 1)

	created := store.values[resolved.ValueIDs[0]]
	assert.Equal(t, "owner-1_prod-1", created.Slug)
	assert.Equal(t, "Some Product", created.Name)
	require.NotNil(t, created.ReferenceID)
	assert.Equal(t, "prod-1", *created.ReferenceID)
}

func TestResolveFileReusesByURL(t *testing.T) {
	store := newFakeValueStore()
	url := "https://cdn.example.com/docs/manual.pdf"
	existing := store.seed(models.AttributeValue{AttributeID: "doc", Slug: "manual", Name: "manual.pdf", FileURL: &url})
	r := NewResolver(store, &fakeEntityStore{})

	resolved, _, err := r.Resolve(context.Background(), "t1", "owner-1", CheckedInput{
		Entry: entry("doc", models.InputTypeFile),
		Input: AttributeInput{ID: "doc", File: &FileInput{URL: url}},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{existing.ID}, resolved.ValueIDs)
	assert.Equal(t, 0, store.creates)
}

func TestResolveReferenceReorderReusesRows(t *testing.T) {
	store := newFakeValueStore()
	entities := &fakeEntityStore{targets: map[string]*ReferenceTarget{
		"prod-a": {ID: "prod-a", Kind: models.ReferenceEntityProduct, Name: "Product A"},
		"prod-b": {ID: "prod-b", Kind: models.ReferenceEntityProduct, Name: "Product B"},
	}}
	r := NewResolver(store, entities)

	productRef := models.ReferenceEntityProduct
	e := entry("related", models.InputTypeReference)
	e.ReferenceEntity = &productRef

	first, _, err := r.Resolve(context.Background(), "t1", "owner-1", CheckedInput{
		Entry:  e,
		Values: []string{"prod-a", "prod-b"},
	})
	require.NoError(t, err)
	require.Len(t, first.ValueIDs, 2)
	assert.Equal(t, first.ValueIDs, first.CreatedValueIDs)

	// Same set, reversed: both rows are reused by slug, order follows the
	// submission exactly.
	second, _, err := r.Resolve(context.Background(), "t1", "owner-1", CheckedInput{
		Entry:  e,
		Values: []string{"prod-b", "prod-a"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{first.ValueIDs[1], first.ValueIDs[0]}, second.ValueIDs)
	assert.Empty(t, second.CreatedValueIDs)
	assert.Equal(t, 2, store.creates)
}

func TestResolveTracksCreatedValues(t *testing.T) {
	store := newFakeValueStore()
	existing := store.seed(models.AttributeValue{AttributeID: "tags", Slug: "alpha", Name: "alpha"})
	r := NewResolver(store, &fakeEntityStore{})

	resolved, _, err := r.Resolve(context.Background(), "t1", "owner-1", CheckedInput{
		Entry:  entry("tags", models.InputTypeMultiselect),
		Values: []string{"alpha", "beta"},
	})

	require.NoError(t, err)
	require.Len(t, resolved.ValueIDs, 2)
	assert.Equal(t, existing.ID, resolved.ValueIDs[0])
	assert.Equal(t, []string{resolved.ValueIDs[1]}, resolved.CreatedValueIDs)
}

func TestResolveRichTextNameTruncatesOnRunes(t *testing.T) {
	store := newFakeValueStore()
	r := NewResolver(store, &fakeEntityStore{})

	// One leading ASCII char puts a two-byte rune astride the truncation point.
	raw := []byte(`"a` + strings.Repeat("é", 60) + `"`)
	resolved, _, err := r.Resolve(context.Background(), "t1", "owner-1", CheckedInput{
		Entry: entry("notes", models.InputTypeRichText),
		Input: AttributeInput{ID: "notes", RichText: raw},
	})

	require.NoError(t, err)
	require.Len(t, resolved.ValueIDs, 1)
	name := store.values[resolved.ValueIDs[0]].Name
	assert.True(t, utf8.ValidString(name))
	assert.Equal(t, 50, utf8.RuneCountInString(name))
}
