package producttype

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/petal/pkg/database"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/Ramsey-B/petal/pkg/tracing"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
)

// ProductTypeRepository defines the interface for product type and attribute
// registry operations
type ProductTypeRepository interface {
	Create(ctx context.Context, tenantID string, req models.CreateProductTypeRequest) (*models.ProductType, error)
	GetByID(ctx context.Context, tenantID string, id string) (*models.ProductType, error)
	List(ctx context.Context, tenantID string, page, pageSize int) ([]models.ProductType, int, error)
	Update(ctx context.Context, tenantID string, id string, req models.UpdateProductTypeRequest) (*models.ProductType, error)
	Delete(ctx context.Context, tenantID string, id string) error
	AttachAttribute(ctx context.Context, tenantID, productTypeID string, req models.AttachAttributeRequest) (*models.ProductTypeAttribute, error)
	DetachAttribute(ctx context.Context, tenantID, productTypeID, attributeID string) error
	Registry(ctx context.Context, tenantID, productTypeID string, scope models.AttributeScope) ([]models.RegistryEntry, error)
}

// Repository implements ProductTypeRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new product type repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "product_types"
const registryTable = "product_type_attributes"

// Create creates a new product type
func (r *Repository) Create(ctx context.Context, tenantID string, req models.CreateProductTypeRequest) (*models.ProductType, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductTypeRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "tenant_id", "slug", "name", "has_variants", "created_at", "updated_at")
	sb.Values(id, tenantID, req.Slug, req.Name, req.HasVariants, now, now)

	query, args := sb.Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create product type")
		return nil, fmt.Errorf("failed to create product type: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":        id,
		"tenant_id": tenantID,
		"slug":      req.Slug,
	}).Info("created product type")

	return r.GetByID(ctx, tenantID, id)
}

// GetByID gets a product type by ID
func (r *Repository) GetByID(ctx context.Context, tenantID string, id string) (*models.ProductType, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductTypeRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "slug", "name", "has_variants", "created_at", "updated_at", "deleted_at")
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	var pt models.ProductType
	err := r.db.GetContext(ctx, &pt, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get product type by ID")
		return nil, fmt.Errorf("failed to get product type: %w", err)
	}

	return &pt, nil
}

// List lists product types for a tenant with pagination
func (r *Repository) List(ctx context.Context, tenantID string, page, pageSize int) ([]models.ProductType, int, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductTypeRepository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(tableName)
	countSb.Where(
		countSb.Equal("tenant_id", tenantID),
		countSb.IsNull("deleted_at"),
	)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count product types")
		return nil, 0, fmt.Errorf("failed to count product types: %w", err)
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "slug", "name", "has_variants", "created_at", "updated_at", "deleted_at")
	sb.From(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("name ASC")
	sb.Limit(pageSize)
	sb.Offset(offset)

	query, args := sb.Build()

	var items []models.ProductType
	err = r.db.SelectContext(ctx, &items, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list product types")
		return nil, 0, fmt.Errorf("failed to list product types: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a product type
func (r *Repository) Update(ctx context.Context, tenantID string, id string, req models.UpdateProductTypeRequest) (*models.ProductType, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductTypeRepository.Update")
	defer span.End()

	existing, err := r.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(sb.Assign("updated_at", time.Now()))

	if req.Name != nil {
		sb.Set(sb.Assign("name", *req.Name))
	}
	if req.HasVariants != nil {
		sb.Set(sb.Assign("has_variants", *req.HasVariants))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update product type")
		return nil, fmt.Errorf("failed to update product type: %w", err)
	}

	return r.GetByID(ctx, tenantID, id)
}

// Delete soft deletes a product type
func (r *Repository) Delete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "ProductTypeRepository.Delete")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(sb.Assign("deleted_at", time.Now()))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete product type")
		return fmt.Errorf("failed to delete product type: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"tenant_id":     tenantID,
		"rows_affected": rowsAffected,
	}).Info("deleted product type")

	return nil
}

// AttachAttribute adds an attribute to one scope of a product type's registry
func (r *Repository) AttachAttribute(ctx context.Context, tenantID, productTypeID string, req models.AttachAttributeRequest) (*models.ProductTypeAttribute, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductTypeRepository.AttachAttribute")
	defer span.End()

	id := uuid.New().String()

	sb := database.NewInsertBuilder()
	sb.InsertInto(registryTable)
	sb.Cols("id", "product_type_id", "attribute_id", "scope", "sort_order")
	sb.Values(id, productTypeID, req.AttributeID, req.Scope, req.SortOrder)
	ub := sb.OnConflict("product_type_id", "attribute_id", "scope")
	ub.Set(
		ub.Assign("sort_order", req.SortOrder),
	)

	query, args := sb.Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to attach attribute to product type")
		return nil, fmt.Errorf("failed to attach attribute: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"product_type_id": productTypeID,
		"attribute_id":    req.AttributeID,
		"scope":           req.Scope,
	}).Info("attached attribute to product type")

	gb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	gb.Select("id", "product_type_id", "attribute_id", "scope", "sort_order")
	gb.From(registryTable)
	gb.Where(
		gb.Equal("product_type_id", productTypeID),
		gb.Equal("attribute_id", req.AttributeID),
		gb.Equal("scope", req.Scope),
	)
	query, args = gb.Build()

	var row models.ProductTypeAttribute
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load attached attribute: %w", err)
	}
	return &row, nil
}

// DetachAttribute removes an attribute from every scope of a product type
func (r *Repository) DetachAttribute(ctx context.Context, tenantID, productTypeID, attributeID string) error {
	ctx, span := tracing.StartSpan(ctx, "ProductTypeRepository.DetachAttribute")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom(registryTable)
	sb.Where(
		sb.Equal("product_type_id", productTypeID),
		sb.Equal("attribute_id", attributeID),
	)

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to detach attribute from product type")
		return fmt.Errorf("failed to detach attribute: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"product_type_id": productTypeID,
		"attribute_id":    attributeID,
		"rows_affected":   rowsAffected,
	}).Info("detached attribute from product type")

	return nil
}

// Registry returns the live attribute definitions of one scope, in sort order
func (r *Repository) Registry(ctx context.Context, tenantID, productTypeID string, scope models.AttributeScope) ([]models.RegistryEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductTypeRepository.Registry")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"a.id", "a.tenant_id", "a.slug", "a.name", "a.input_type", "a.reference_entity",
		"a.value_required", "a.unit", "a.created_at", "a.updated_at", "a.deleted_at",
		"pta.scope", "pta.sort_order",
	)
	sb.From(registryTable + " pta")
	sb.JoinWithOption(sqlbuilder.InnerJoin, "attributes a", "a.id = pta.attribute_id")
	sb.Where(
		sb.Equal("pta.product_type_id", productTypeID),
		sb.Equal("pta.scope", scope),
		sb.Equal("a.tenant_id", tenantID),
		sb.IsNull("a.deleted_at"),
	)
	sb.OrderBy("pta.sort_order ASC", "a.name ASC")

	query, args := sb.Build()

	var entries []models.RegistryEntry
	err := r.db.SelectContext(ctx, &entries, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to load product type registry")
		return nil, fmt.Errorf("failed to load product type registry: %w", err)
	}

	return entries, nil
}
