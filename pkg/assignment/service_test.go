package assignment

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Ramsey-B/petal/pkg/database"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (f *fakeTx) IsOpen() bool { return !f.committed && !f.rolledBack }

func (f *fakeTx) Commit(ctx context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	if f.committed {
		return nil
	}
	f.rolledBack = true
	return nil
}

func (f *fakeTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, nil
}

func (f *fakeTx) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}

func (f *fakeTx) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	return nil, nil
}

func (f *fakeTx) QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row {
	return nil
}

func (f *fakeTx) QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	return nil, nil
}

func (f *fakeTx) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}

type fakeDB struct{}

func (f *fakeDB) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, nil
}
func (f *fakeDB) Close() error { return nil }
func (f *fakeDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, nil
}
func (f *fakeDB) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}
func (f *fakeDB) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	return nil, nil
}
func (f *fakeDB) PingContext(ctx context.Context) error { return nil }
func (f *fakeDB) QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row {
	return nil
}
func (f *fakeDB) QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	return nil, nil
}
func (f *fakeDB) Rebind(query string) string { return query }
func (f *fakeDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}
func (f *fakeDB) SetConnMaxLifetime(d time.Duration) {}
func (f *fakeDB) SetMaxIdleConns(n int)              {}
func (f *fakeDB) SetMaxOpenConns(n int)              {}
func (f *fakeDB) Stats() sql.DBStats                 { return sql.DBStats{} }

type fakeRegistry struct {
	entries []models.RegistryEntry
}

func (f *fakeRegistry) Entries(ctx context.Context, tenantID, productTypeID string, scope models.AttributeScope) ([]models.RegistryEntry, error) {
	return f.entries, nil
}

type fakeDefinitions struct {
	known map[string]bool
}

func (f *fakeDefinitions) GetByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Attribute, error) {
	var out []models.Attribute
	for _, id := range ids {
		if f.known[id] {
			out = append(out, models.Attribute{ID: id})
		}
	}
	return out, nil
}

type fakeAssignments struct {
	rows     []models.AssignedValue
	replaced []string
	deleted  []string
}

func (f *fakeAssignments) ListForOwner(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID string) ([]models.AssignedValue, error) {
	return f.rows, nil
}

func (f *fakeAssignments) ReplaceForAttribute(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID, attributeID string, valueIDs []string) error {
	f.replaced = append(f.replaced, attributeID)
	f.dropAttribute(attributeID)
	for _, id := range valueIDs {
		f.rows = append(f.rows, models.AssignedValue{AttributeID: attributeID, ValueID: id})
	}
	return nil
}

func (f *fakeAssignments) DeleteForAttribute(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID, attributeID string) error {
	f.deleted = append(f.deleted, attributeID)
	f.dropAttribute(attributeID)
	return nil
}

func (f *fakeAssignments) dropAttribute(attributeID string) {
	kept := f.rows[:0]
	for _, row := range f.rows {
		if row.AttributeID != attributeID {
			kept = append(kept, row)
		}
	}
	f.rows = kept
}

type fakeEmitter struct {
	assigned      [][]string
	createdValues []string
}

func (f *fakeEmitter) AttributesAssigned(ctx context.Context, tenantID string, ownerKind models.OwnerKind, ownerID string, attributeIDs []string) error {
	f.assigned = append(f.assigned, attributeIDs)
	return nil
}

func (f *fakeEmitter) AttributeValueCreated(ctx context.Context, tenantID, valueID string) error {
	f.createdValues = append(f.createdValues, valueID)
	return nil
}

type serviceFixture struct {
	service     *Service
	tx          *fakeTx
	values      *fakeValueStore
	assignments *fakeAssignments
	emitter     *fakeEmitter
}

func newServiceFixture(entries []models.RegistryEntry, entities EntityStore) *serviceFixture {
	f := &serviceFixture{
		tx:          &fakeTx{},
		values:      newFakeValueStore(),
		assignments: &fakeAssignments{},
		emitter:     &fakeEmitter{},
	}
	if entities == nil {
		entities = &fakeEntityStore{}
	}
	db := &serviceDB{fakeDB: &fakeDB{}, tx: f.tx}
	f.service = NewService(db, &fakeDefinitions{}, &fakeRegistry{entries: entries}, f.values, f.assignments, entities, f.emitter, testLogger())
	return f
}

// serviceDB hands Assign a fake transaction without touching sqlx.
type serviceDB struct {
	*fakeDB
	tx *fakeTx
}

func (f *serviceDB) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error) {
	return ctx, f.tx, nil
}

func testOwner() Owner {
	return Owner{Kind: models.OwnerKindProduct, ID: "prod-1", ProductTypeID: "pt-1"}
}

func TestAssignHappyPath(t *testing.T) {
	fx := newServiceFixture([]models.RegistryEntry{
		entry("color", models.InputTypeDropdown),
		entry("tags", models.InputTypeMultiselect),
	}, nil)

	resp, errs, err := fx.service.Assign(context.Background(), "t1", testOwner(), []AttributeInput{
		{ID: "tags", Values: []string{"zeta", "alpha"}},
		{ID: "color", Values: []string{"Red"}},
	})

	require.NoError(t, err)
	assert.False(t, errs.HasErrors())

	// Writes happen in submission order, inside the committed transaction.
	assert.Equal(t, []string{"tags", "color"}, fx.assignments.replaced)
	assert.True(t, fx.tx.committed)
	assert.False(t, fx.tx.rolledBack)

	require.Len(t, fx.emitter.assigned, 1)
	assert.Equal(t, []string{"tags", "color"}, fx.emitter.assigned[0])

	// All three values were minted fresh, so each gets a created event.
	assert.Len(t, fx.emitter.createdValues, 3)

	// The response follows registry order, each attribute's values in
	// submission order.
	require.NotNil(t, resp)
	require.Len(t, resp.Attributes, 2)
	assert.Equal(t, "color", resp.Attributes[0].Attribute.ID)
	assert.Equal(t, "tags", resp.Attributes[1].Attribute.ID)
	require.Len(t, resp.Attributes[1].Values, 2)
	assert.Equal(t, "zeta", resp.Attributes[1].Values[0].Name)
	assert.Equal(t, "alpha", resp.Attributes[1].Values[1].Name)
}

func TestAssignValidationErrorsWriteNothing(t *testing.T) {
	fx := newServiceFixture([]models.RegistryEntry{
		entry("color", models.InputTypeDropdown),
	}, nil)

	resp, errs, err := fx.service.Assign(context.Background(), "t1", testOwner(), []AttributeInput{
		{ID: "color", Values: []string{"red"}},
		{ID: "ghost", Values: []string{"x"}},
	})

	require.NoError(t, err)
	assert.Nil(t, resp)
	require.Len(t, errs, 1)
	assert.Equal(t, CodeNotFound, errs[0].Code)

	assert.Empty(t, fx.assignments.replaced)
	assert.Equal(t, 0, fx.values.creates)
	assert.Empty(t, fx.emitter.assigned)
	assert.False(t, fx.tx.committed)
}

func TestAssignReferenceErrorRollsBack(t *testing.T) {
	productRef := models.ReferenceEntityProduct
	related := entry("related", models.InputTypeReference)
	related.ReferenceEntity = &productRef

	// No targets registered, so every reference lookup misses.
	fx := newServiceFixture([]models.RegistryEntry{related}, &fakeEntityStore{})

	resp, errs, err := fx.service.Assign(context.Background(), "t1", testOwner(), []AttributeInput{
		{ID: "related", References: []string{"missing-target"}},
	})

	require.NoError(t, err)
	assert.Nil(t, resp)
	require.Len(t, errs, 1)
	assert.Equal(t, CodeInvalid, errs[0].Code)

	assert.Empty(t, fx.assignments.replaced)
	assert.True(t, fx.tx.rolledBack)
	assert.False(t, fx.tx.committed)
}

func TestAssignClearDeletesRows(t *testing.T) {
	fx := newServiceFixture([]models.RegistryEntry{
		entry("color", models.InputTypeDropdown),
	}, nil)
	fx.assignments.rows = []models.AssignedValue{{AttributeID: "color", ValueID: "v1"}}

	resp, errs, err := fx.service.Assign(context.Background(), "t1", testOwner(), []AttributeInput{
		{ID: "color"},
	})

	require.NoError(t, err)
	assert.False(t, errs.HasErrors())

	assert.Equal(t, []string{"color"}, fx.assignments.deleted)
	assert.Empty(t, fx.assignments.replaced)
	assert.True(t, fx.tx.committed)

	require.NotNil(t, resp)
	assert.Empty(t, resp.Attributes)
}

func TestAssignUntouchedAttributesSurvive(t *testing.T) {
	fx := newServiceFixture([]models.RegistryEntry{
		entry("color", models.InputTypeDropdown),
		entry("size", models.InputTypeDropdown),
	}, nil)
	existing := fx.values.seed(models.AttributeValue{AttributeID: "size", Slug: "m", Name: "M"})
	fx.assignments.rows = []models.AssignedValue{{AttributeID: "size", ValueID: existing.ID}}

	resp, errs, err := fx.service.Assign(context.Background(), "t1", testOwner(), []AttributeInput{
		{ID: "color", Values: []string{"red"}},
	})

	require.NoError(t, err)
	assert.False(t, errs.HasErrors())
	assert.Equal(t, []string{"color"}, fx.assignments.replaced)

	require.NotNil(t, resp)
	require.Len(t, resp.Attributes, 2)
	assert.Equal(t, "color", resp.Attributes[0].Attribute.ID)
	assert.Equal(t, "size", resp.Attributes[1].Attribute.ID)
	assert.Equal(t, "M", resp.Attributes[1].Values[0].Name)
}

func TestAssignReferenceReorderFlipsResponseOrder(t *testing.T) {
	productRef := models.ReferenceEntityProduct
	related := entry("related", models.InputTypeReference)
	related.ReferenceEntity = &productRef

	fx := newServiceFixture([]models.RegistryEntry{related}, &fakeEntityStore{
		targets: map[string]*ReferenceTarget{
			"prod-a": {ID: "prod-a", Kind: models.ReferenceEntityProduct, Name: "Product A"},
			"prod-b": {ID: "prod-b", Kind: models.ReferenceEntityProduct, Name: "Product B"},
		},
	})

	resp, errs, err := fx.service.Assign(context.Background(), "t1", testOwner(), []AttributeInput{
		{ID: "related", References: []string{"prod-a", "prod-b"}},
	})
	require.NoError(t, err)
	require.False(t, errs.HasErrors())
	require.Len(t, resp.Attributes, 1)
	require.Len(t, resp.Attributes[0].Values, 2)
	assert.Equal(t, "Product A", resp.Attributes[0].Values[0].Name)
	assert.Equal(t, "Product B", resp.Attributes[0].Values[1].Name)
	assert.Equal(t, 2, fx.values.creates)

	// Re-submitting the same set reversed flips the order without minting
	// new value rows.
	resp, errs, err = fx.service.Assign(context.Background(), "t1", testOwner(), []AttributeInput{
		{ID: "related", References: []string{"prod-b", "prod-a"}},
	})
	require.NoError(t, err)
	require.False(t, errs.HasErrors())
	require.Len(t, resp.Attributes, 1)
	require.Len(t, resp.Attributes[0].Values, 2)
	assert.Equal(t, "Product B", resp.Attributes[0].Values[0].Name)
	assert.Equal(t, "Product A", resp.Attributes[0].Values[1].Name)
	assert.Equal(t, 2, fx.values.creates)
	assert.Len(t, fx.emitter.createdValues, 2)
}
