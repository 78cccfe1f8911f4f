package variant

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

// VariantWithType is a variant row joined with its parent product's type,
// needed to scope attribute assignments.
type VariantWithType struct {
	models.ProductVariant
	ProductTypeID string `db:"product_type_id"`
}

// VariantRepository defines the interface for product variant operations
type VariantRepository interface {
	Create(ctx context.Context, tenantID, productID string, req models.CreateVariantRequest) (*models.ProductVariant, error)
	GetByID(ctx context.Context, tenantID string, id string) (*models.ProductVariant, error)
	GetWithType(ctx context.Context, tenantID string, id string) (*VariantWithType, error)
	ListByProduct(ctx context.Context, tenantID, productID string, page, pageSize int) ([]models.ProductVariant, int, error)
	Update(ctx context.Context, tenantID string, id string, req models.UpdateVariantRequest) (*models.ProductVariant, error)
	Delete(ctx context.Context, tenantID string, id string) error
	DeleteByProduct(ctx context.Context, tenantID, productID string) ([]string, error)
}

// Repository implements VariantRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new variant repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "product_variants"

var columns = []string{"id", "tenant_id", "product_id", "sku", "name", "created_at", "updated_at", "deleted_at"}

// Create creates a new variant under a product
func (r *Repository) Create(ctx context.Context, tenantID, productID string, req models.CreateVariantRequest) (*models.ProductVariant, error) {
	ctx, span := tracing.StartSpan(ctx, "VariantRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "tenant_id", "product_id", "sku", "name", "created_at", "updated_at")
	sb.Values(id, tenantID, productID, req.SKU, req.Name, now, now)

	query, args := sb.Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create variant")
		return nil, fmt.Errorf("failed to create variant: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":         id,
		"tenant_id":  tenantID,
		"product_id": productID,
		"sku":        req.SKU,
	}).Info("created variant")

	return r.GetByID(ctx, tenantID, id)
}

// GetByID gets a variant by ID
func (r *Repository) GetByID(ctx context.Context, tenantID string, id string) (*models.ProductVariant, error) {
	ctx, span := tracing.StartSpan(ctx, "VariantRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	var v models.ProductVariant
	err := r.db.GetContext(ctx, &v, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get variant by ID")
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}

	return &v, nil
}

// GetWithType gets a variant joined with its parent product's type ID
func (r *Repository) GetWithType(ctx context.Context, tenantID string, id string) (*VariantWithType, error) {
	ctx, span := tracing.StartSpan(ctx, "VariantRepository.GetWithType")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"v.id", "v.tenant_id", "v.product_id", "v.sku", "v.name",
		"v.created_at", "v.updated_at", "v.deleted_at", "p.product_type_id",
	)
	sb.From(tableName + " v")
	sb.JoinWithOption(sqlbuilder.InnerJoin, "products p", "p.id = v.product_id")
	sb.Where(
		sb.Equal("v.id", id),
		sb.Equal("v.tenant_id", tenantID),
		sb.IsNull("v.deleted_at"),
		sb.IsNull("p.deleted_at"),
	)

	query, args := sb.Build()

	var v VariantWithType
	err := r.db.GetContext(ctx, &v, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get variant with type")
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}

	return &v, nil
}

// ListByProduct lists a product's variants with pagination
func (r *Repository) ListByProduct(ctx context.Context, tenantID, productID string, page, pageSize int) ([]models.ProductVariant, int, error) {
	ctx, span := tracing.StartSpan(ctx, "VariantRepository.ListByProduct")
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
		countSb.Equal("product_id", productID),
		countSb.IsNull("deleted_at"),
	)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count variants")
		return nil, 0, fmt.Errorf("failed to count variants: %w", err)
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("product_id", productID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("sku ASC")
	sb.Limit(pageSize)
	sb.Offset(offset)

	query, args := sb.Build()

	var items []models.ProductVariant
	err = r.db.SelectContext(ctx, &items, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list variants")
		return nil, 0, fmt.Errorf("failed to list variants: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a variant
func (r *Repository) Update(ctx context.Context, tenantID string, id string, req models.UpdateVariantRequest) (*models.ProductVariant, error) {
	ctx, span := tracing.StartSpan(ctx, "VariantRepository.Update")
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

	if req.SKU != nil {
		sb.Set(sb.Assign("sku", *req.SKU))
	}
	if req.Name != nil {
		sb.Set(sb.Assign("name", *req.Name))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update variant")
		return nil, fmt.Errorf("failed to update variant: %w", err)
	}

	return r.GetByID(ctx, tenantID, id)
}

// Delete soft deletes a variant
func (r *Repository) Delete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "VariantRepository.Delete")
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
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete variant")
		return fmt.Errorf("failed to delete variant: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"tenant_id":     tenantID,
		"rows_affected": rowsAffected,
	}).Info("deleted variant")

	return nil
}

// DeleteByProduct soft deletes every variant of a product and returns the
// deleted ids so their assignments can be cleaned up.
func (r *Repository) DeleteByProduct(ctx context.Context, tenantID, productID string) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "VariantRepository.DeleteByProduct")
	defer span.End()

	query := "UPDATE product_variants SET deleted_at = $1 WHERE tenant_id = $2 AND product_id = $3 AND deleted_at IS NULL RETURNING id"

	var ids []string
	err := r.db.SelectContext(ctx, &ids, query, time.Now(), tenantID, productID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete variants by product")
		return nil, fmt.Errorf("failed to delete variants: %w", err)
	}

	return ids, nil
}
