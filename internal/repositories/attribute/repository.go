package attribute

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
	"github.com/jmoiron/sqlx"
)

// AttributeRepository defines the interface for attribute definition operations
type AttributeRepository interface {
	Create(ctx context.Context, tenantID string, req models.CreateAttributeRequest) (*models.Attribute, error)
	GetByID(ctx context.Context, tenantID string, id string) (*models.Attribute, error)
	GetBySlug(ctx context.Context, tenantID string, slug string) (*models.Attribute, error)
	GetByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Attribute, error)
	List(ctx context.Context, tenantID string, page, pageSize int) ([]models.Attribute, int, error)
	Update(ctx context.Context, tenantID string, id string, req models.UpdateAttributeRequest) (*models.Attribute, error)
	Delete(ctx context.Context, tenantID string, id string) error
}

// Repository implements AttributeRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new attribute repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "attributes"

var columns = []string{"id", "tenant_id", "slug", "name", "input_type", "reference_entity", "value_required", "unit", "created_at", "updated_at", "deleted_at"}

// Create creates a new attribute definition
func (r *Repository) Create(ctx context.Context, tenantID string, req models.CreateAttributeRequest) (*models.Attribute, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "tenant_id", "slug", "name", "input_type", "reference_entity", "value_required", "unit", "created_at", "updated_at")
	sb.Values(id, tenantID, req.Slug, req.Name, req.InputType, req.ReferenceEntity, req.ValueRequired, req.Unit, now, now)

	query, args := sb.Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create attribute")
		return nil, fmt.Errorf("failed to create attribute: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":         id,
		"tenant_id":  tenantID,
		"slug":       req.Slug,
		"input_type": req.InputType,
	}).Info("created attribute")

	return r.GetByID(ctx, tenantID, id)
}

// GetByID gets an attribute by ID
func (r *Repository) GetByID(ctx context.Context, tenantID string, id string) (*models.Attribute, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeRepository.GetByID")
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

	var attr models.Attribute
	err := r.db.GetContext(ctx, &attr, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get attribute by ID")
		return nil, fmt.Errorf("failed to get attribute: %w", err)
	}

	return &attr, nil
}

// GetBySlug gets an attribute by slug
func (r *Repository) GetBySlug(ctx context.Context, tenantID string, slug string) (*models.Attribute, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeRepository.GetBySlug")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("slug", slug),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	var attr models.Attribute
	err := r.db.GetContext(ctx, &attr, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get attribute by slug")
		return nil, fmt.Errorf("failed to get attribute: %w", err)
	}

	return &attr, nil
}

// GetByIDs loads attributes for the given ids, skipping soft-deleted ones
func (r *Repository) GetByIDs(ctx context.Context, tenantID string, ids []string) ([]models.Attribute, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeRepository.GetByIDs")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
	  SELECT id, tenant_id, slug, name, input_type, reference_entity, value_required, unit, created_at, updated_at, deleted_at
	  FROM attributes
	  WHERE tenant_id = ? AND id IN (?) AND deleted_at IS NULL
	`, tenantID, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var attrs []models.Attribute
	err = r.db.SelectContext(ctx, &attrs, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to get attributes by IDs")
		return nil, fmt.Errorf("failed to get attributes: %w", err)
	}

	return attrs, nil
}

// List lists attributes for a tenant with pagination
func (r *Repository) List(ctx context.Context, tenantID string, page, pageSize int) ([]models.Attribute, int, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeRepository.List")
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
		r.logger.WithContext(ctx).WithError(err).Error("failed to count attributes")
		return nil, 0, fmt.Errorf("failed to count attributes: %w", err)
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("name ASC")
	sb.Limit(pageSize)
	sb.Offset(offset)

	query, args := sb.Build()

	var items []models.Attribute
	err = r.db.SelectContext(ctx, &items, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list attributes")
		return nil, 0, fmt.Errorf("failed to list attributes: %w", err)
	}

	return items, totalCount, nil
}

// Update updates an attribute definition. Input type and reference entity are
// immutable, so only name, value_required and unit can change.
func (r *Repository) Update(ctx context.Context, tenantID string, id string, req models.UpdateAttributeRequest) (*models.Attribute, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeRepository.Update")
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
	if req.ValueRequired != nil {
		sb.Set(sb.Assign("value_required", *req.ValueRequired))
	}
	if req.Unit != nil {
		sb.Set(sb.Assign("unit", *req.Unit))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update attribute")
		return nil, fmt.Errorf("failed to update attribute: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"tenant_id":     tenantID,
		"rows_affected": rowsAffected,
	}).Info("updated attribute")

	return r.GetByID(ctx, tenantID, id)
}

// Delete soft deletes an attribute definition
func (r *Repository) Delete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "AttributeRepository.Delete")
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
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete attribute")
		return fmt.Errorf("failed to delete attribute: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"tenant_id":     tenantID,
		"rows_affected": rowsAffected,
	}).Info("deleted attribute")

	return nil
}
