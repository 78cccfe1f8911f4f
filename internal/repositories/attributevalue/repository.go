package attributevalue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/petal/pkg/database"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/Ramsey-B/petal/pkg/tracing"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

// AttributeValueRepository defines the interface for attribute value operations
type AttributeValueRepository interface {
	Create(ctx context.Context, tenantID string, value *models.AttributeValue) (*models.AttributeValue, error)
	Update(ctx context.Context, tenantID string, value *models.AttributeValue) (*models.AttributeValue, error)
	GetByID(ctx context.Context, tenantID string, id string) (*models.AttributeValue, error)
	GetByIDs(ctx context.Context, tenantID string, ids []string) ([]models.AttributeValue, error)
	GetBySlug(ctx context.Context, tenantID, attributeID, slug string) (*models.AttributeValue, error)
	GetByName(ctx context.Context, tenantID, attributeID, name string) (*models.AttributeValue, error)
	GetByFileURL(ctx context.Context, tenantID, attributeID, fileURL string) (*models.AttributeValue, error)
	ListSlugsByPrefix(ctx context.Context, tenantID, attributeID, prefix string) ([]string, error)
	List(ctx context.Context, tenantID, attributeID string, page, pageSize int) ([]models.AttributeValue, int, error)
	Delete(ctx context.Context, tenantID, attributeID, id string) error
	DeleteByAttribute(ctx context.Context, tenantID, attributeID string) ([]string, error)
	DeleteByReference(ctx context.Context, tenantID, referenceID string) ([]string, error)
}

// Repository implements AttributeValueRepository. Every method runs on the
// context transaction when one is open, so the assignment engine's reads see
// its own writes.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new attribute value repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "attribute_values"

var columns = []string{"id", "tenant_id", "attribute_id", "slug", "name", "plain_text", "rich_text", "boolean", "date_value", "datetime_value", "file_url", "content_type", "reference_id", "created_at", "updated_at"}

func (r *Repository) execer(ctx context.Context) database.Execer {
	return database.Resolve(ctx, r.db)
}

// Create inserts a new value. Two writers racing on the same slug are settled
// by the unique constraint; the loser re-reads and returns the winning row.
func (r *Repository) Create(ctx context.Context, tenantID string, value *models.AttributeValue) (*models.AttributeValue, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeValueRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "tenant_id", "attribute_id", "slug", "name", "plain_text", "rich_text", "boolean", "date_value", "datetime_value", "file_url", "content_type", "reference_id", "created_at", "updated_at")
	sb.Values(id, tenantID, value.AttributeID, value.Slug, value.Name, value.PlainText, value.RichText, value.Boolean, value.DateValue, value.DateTimeValue, value.FileURL, value.ContentType, value.ReferenceID, now, now)

	query, args := sb.Build()

	_, err := r.execer(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return r.GetBySlug(ctx, tenantID, value.AttributeID, value.Slug)
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to create attribute value")
		return nil, fmt.Errorf("failed to create attribute value: %w", err)
	}

	return r.GetByID(ctx, tenantID, id)
}

// Update overwrites the payload columns and name of an existing value
func (r *Repository) Update(ctx context.Context, tenantID string, value *models.AttributeValue) (*models.AttributeValue, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeValueRepository.Update")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(
		sb.Assign("name", value.Name),
		sb.Assign("plain_text", value.PlainText),
		sb.Assign("rich_text", value.RichText),
		sb.Assign("boolean", value.Boolean),
		sb.Assign("date_value", value.DateValue),
		sb.Assign("datetime_value", value.DateTimeValue),
		sb.Assign("file_url", value.FileURL),
		sb.Assign("content_type", value.ContentType),
		sb.Assign("reference_id", value.ReferenceID),
		sb.Assign("updated_at", time.Now()),
	)
	sb.Where(
		sb.Equal("id", value.ID),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()

	_, err := r.execer(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update attribute value")
		return nil, fmt.Errorf("failed to update attribute value: %w", err)
	}

	return r.GetByID(ctx, tenantID, value.ID)
}

// GetByID gets a value by ID
func (r *Repository) GetByID(ctx context.Context, tenantID string, id string) (*models.AttributeValue, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeValueRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()

	var value models.AttributeValue
	err := r.execer(ctx).GetContext(ctx, &value, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get attribute value by ID")
		return nil, fmt.Errorf("failed to get attribute value: %w", err)
	}

	return &value, nil
}

// GetByIDs loads values for the given ids
func (r *Repository) GetByIDs(ctx context.Context, tenantID string, ids []string) ([]models.AttributeValue, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeValueRepository.GetByIDs")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
	  SELECT id, tenant_id, attribute_id, slug, name, plain_text, rich_text, boolean, date_value, datetime_value, file_url, content_type, reference_id, created_at, updated_at
	  FROM attribute_values
	  WHERE tenant_id = ? AND id IN (?)
	`, tenantID, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var values []models.AttributeValue
	err = r.execer(ctx).SelectContext(ctx, &values, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to get attribute values by IDs")
		return nil, fmt.Errorf("failed to get attribute values: %w", err)
	}

	return values, nil
}

// GetBySlug gets a value by its slug within an attribute
func (r *Repository) GetBySlug(ctx context.Context, tenantID, attributeID, slug string) (*models.AttributeValue, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeValueRepository.GetBySlug")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("attribute_id", attributeID),
		sb.Equal("slug", slug),
	)

	query, args := sb.Build()

	var value models.AttributeValue
	err := r.execer(ctx).GetContext(ctx, &value, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get attribute value by slug")
		return nil, fmt.Errorf("failed to get attribute value: %w", err)
	}

	return &value, nil
}

// GetByName gets a value by case-insensitive name match within an attribute
func (r *Repository) GetByName(ctx context.Context, tenantID, attributeID, name string) (*models.AttributeValue, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeValueRepository.GetByName")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("attribute_id", attributeID),
		fmt.Sprintf("LOWER(name) = LOWER(%s)", sb.Var(name)),
	)
	sb.OrderBy("created_at ASC")
	sb.Limit(1)

	query, args := sb.Build()

	var value models.AttributeValue
	err := r.execer(ctx).GetContext(ctx, &value, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get attribute value by name")
		return nil, fmt.Errorf("failed to get attribute value: %w", err)
	}

	return &value, nil
}

// GetByFileURL gets a value by its file URL within an attribute
func (r *Repository) GetByFileURL(ctx context.Context, tenantID, attributeID, fileURL string) (*models.AttributeValue, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeValueRepository.GetByFileURL")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("attribute_id", attributeID),
		sb.Equal("file_url", fileURL),
	)
	sb.OrderBy("created_at ASC")
	sb.Limit(1)

	query, args := sb.Build()

	var value models.AttributeValue
	err := r.execer(ctx).GetContext(ctx, &value, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get attribute value by file URL")
		return nil, fmt.Errorf("failed to get attribute value: %w", err)
	}

	return &value, nil
}

// ListSlugsByPrefix returns every slug of the attribute starting with prefix,
// used for collision suffix resolution.
func (r *Repository) ListSlugsByPrefix(ctx context.Context, tenantID, attributeID, prefix string) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeValueRepository.ListSlugsByPrefix")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("slug")
	sb.From(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("attribute_id", attributeID),
		sb.Like("slug", prefix+"%"),
	)

	query, args := sb.Build()

	var slugs []string
	err := r.execer(ctx).SelectContext(ctx, &slugs, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list attribute value slugs")
		return nil, fmt.Errorf("failed to list attribute value slugs: %w", err)
	}

	return slugs, nil
}

// List lists an attribute's values with pagination
func (r *Repository) List(ctx context.Context, tenantID, attributeID string, page, pageSize int) ([]models.AttributeValue, int, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeValueRepository.List")
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
		countSb.Equal("attribute_id", attributeID),
	)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	err := r.execer(ctx).GetContext(ctx, &totalCount, countQuery, countArgs...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count attribute values")
		return nil, 0, fmt.Errorf("failed to count attribute values: %w", err)
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("attribute_id", attributeID),
	)
	sb.OrderBy("name ASC")
	sb.Limit(pageSize)
	sb.Offset(offset)

	query, args := sb.Build()

	var items []models.AttributeValue
	err = r.execer(ctx).SelectContext(ctx, &items, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list attribute values")
		return nil, 0, fmt.Errorf("failed to list attribute values: %w", err)
	}

	return items, totalCount, nil
}

// Delete removes a single value and its assignment rows
func (r *Repository) Delete(ctx context.Context, tenantID, attributeID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "AttributeValueRepository.Delete")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.Equal("attribute_id", attributeID),
	)

	query, args := sb.Build()

	result, err := r.execer(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete attribute value")
		return fmt.Errorf("failed to delete attribute value: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"tenant_id":     tenantID,
		"attribute_id":  attributeID,
		"rows_affected": rowsAffected,
	}).Info("deleted attribute value")

	return nil
}

// DeleteByAttribute removes every value of an attribute and returns the
// deleted ids so assignment rows can be cleaned up.
func (r *Repository) DeleteByAttribute(ctx context.Context, tenantID, attributeID string) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeValueRepository.DeleteByAttribute")
	defer span.End()

	query := "DELETE FROM attribute_values WHERE tenant_id = $1 AND attribute_id = $2 RETURNING id"

	var ids []string
	err := r.execer(ctx).SelectContext(ctx, &ids, query, tenantID, attributeID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete attribute values by attribute")
		return nil, fmt.Errorf("failed to delete attribute values: %w", err)
	}

	return ids, nil
}

// DeleteByReference removes every value pointing at a deleted reference
// target and returns the deleted ids.
func (r *Repository) DeleteByReference(ctx context.Context, tenantID, referenceID string) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "AttributeValueRepository.DeleteByReference")
	defer span.End()

	query := "DELETE FROM attribute_values WHERE tenant_id = $1 AND reference_id = $2 RETURNING id"

	var ids []string
	err := r.execer(ctx).SelectContext(ctx, &ids, query, tenantID, referenceID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete attribute values by reference")
		return nil, fmt.Errorf("failed to delete attribute values: %w", err)
	}

	return ids, nil
}
