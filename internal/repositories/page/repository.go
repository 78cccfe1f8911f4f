package page

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

// PageRepository defines the interface for content page operations
type PageRepository interface {
	Create(ctx context.Context, tenantID string, req models.CreatePageRequest) (*models.Page, error)
	GetByID(ctx context.Context, tenantID string, id string) (*models.Page, error)
	List(ctx context.Context, tenantID string, page, pageSize int) ([]models.Page, int, error)
	Delete(ctx context.Context, tenantID string, id string) error
}

// Repository implements PageRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new page repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "pages"

var columns = []string{"id", "tenant_id", "slug", "title", "created_at", "updated_at", "deleted_at"}

// Create creates a new page
func (r *Repository) Create(ctx context.Context, tenantID string, req models.CreatePageRequest) (*models.Page, error) {
	ctx, span := tracing.StartSpan(ctx, "PageRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "tenant_id", "slug", "title", "created_at", "updated_at")
	sb.Values(id, tenantID, req.Slug, req.Title, now, now)

	query, args := sb.Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create page")
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":        id,
		"tenant_id": tenantID,
		"slug":      req.Slug,
	}).Info("created page")

	return r.GetByID(ctx, tenantID, id)
}

// GetByID gets a page by ID
func (r *Repository) GetByID(ctx context.Context, tenantID string, id string) (*models.Page, error) {
	ctx, span := tracing.StartSpan(ctx, "PageRepository.GetByID")
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

	var p models.Page
	err := r.db.GetContext(ctx, &p, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get page by ID")
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	return &p, nil
}

// List lists pages for a tenant with pagination
func (r *Repository) List(ctx context.Context, tenantID string, page, pageSize int) ([]models.Page, int, error) {
	ctx, span := tracing.StartSpan(ctx, "PageRepository.List")
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
		r.logger.WithContext(ctx).WithError(err).Error("failed to count pages")
		return nil, 0, fmt.Errorf("failed to count pages: %w", err)
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("title ASC")
	sb.Limit(pageSize)
	sb.Offset(offset)

	query, args := sb.Build()

	var items []models.Page
	err = r.db.SelectContext(ctx, &items, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list pages")
		return nil, 0, fmt.Errorf("failed to list pages: %w", err)
	}

	return items, totalCount, nil
}

// Delete soft deletes a page
func (r *Repository) Delete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "PageRepository.Delete")
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
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete page")
		return fmt.Errorf("failed to delete page: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"tenant_id":     tenantID,
		"rows_affected": rowsAffected,
	}).Info("deleted page")

	return nil
}
