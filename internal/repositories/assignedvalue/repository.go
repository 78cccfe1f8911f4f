package assignedvalue

import (
	"context"
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

// AssignedValueRepository defines the interface for the owner-to-value join rows
type AssignedValueRepository interface {
	ListForOwner(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID string) ([]models.AssignedValue, error)
	ReplaceForAttribute(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID, attributeID string, valueIDs []string) error
	DeleteForAttribute(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID, attributeID string) error
	DeleteForOwner(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID string) error
	DeleteByValueIDs(ctx context.Context, tenantID string, valueIDs []string) error
	DeleteByAttribute(ctx context.Context, tenantID, attributeID string) error
}

// Repository implements AssignedValueRepository. Writes run on the context
// transaction when one is open so a batch replaces rows atomically.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new assigned value repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "assigned_attribute_values"

func (r *Repository) execer(ctx context.Context) database.Execer {
	return database.Resolve(ctx, r.db)
}

// ListForOwner returns the owner's rows ordered per attribute by sort order
func (r *Repository) ListForOwner(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID string) ([]models.AssignedValue, error) {
	ctx, span := tracing.StartSpan(ctx, "AssignedValueRepository.ListForOwner")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "owner_kind", "owner_id", "attribute_id", "value_id", "sort_order", "created_at", "updated_at")
	sb.From(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("owner_kind", kind),
		sb.Equal("owner_id", ownerID),
	)
	sb.OrderBy("attribute_id ASC", "sort_order ASC")

	query, args := sb.Build()

	var rows []models.AssignedValue
	err := r.execer(ctx).SelectContext(ctx, &rows, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list assigned values")
		return nil, fmt.Errorf("failed to list assigned values: %w", err)
	}

	return rows, nil
}

// ReplaceForAttribute replaces the owner's rows for one attribute with the
// given value ids, sort order following slice order.
func (r *Repository) ReplaceForAttribute(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID, attributeID string, valueIDs []string) error {
	ctx, span := tracing.StartSpan(ctx, "AssignedValueRepository.ReplaceForAttribute")
	defer span.End()

	if err := r.DeleteForAttribute(ctx, tenantID, kind, ownerID, attributeID); err != nil {
		return err
	}
	if len(valueIDs) == 0 {
		return nil
	}

	now := time.Now()
	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "tenant_id", "owner_kind", "owner_id", "attribute_id", "value_id", "sort_order", "created_at", "updated_at")
	for i, valueID := range valueIDs {
		sb.Values(uuid.New().String(), tenantID, kind, ownerID, attributeID, valueID, i, now, now)
	}

	query, args := sb.Build()

	if _, err := r.execer(ctx).ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id":    tenantID,
			"owner_id":     ownerID,
			"attribute_id": attributeID,
		}).Error("failed to insert assigned values")
		return fmt.Errorf("failed to insert assigned values: %w", err)
	}

	return nil
}

// DeleteForAttribute drops the owner's rows for one attribute
func (r *Repository) DeleteForAttribute(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID, attributeID string) error {
	ctx, span := tracing.StartSpan(ctx, "AssignedValueRepository.DeleteForAttribute")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("owner_kind", kind),
		sb.Equal("owner_id", ownerID),
		sb.Equal("attribute_id", attributeID),
	)

	query, args := sb.Build()

	if _, err := r.execer(ctx).ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete assigned values")
		return fmt.Errorf("failed to delete assigned values: %w", err)
	}

	return nil
}

// DeleteForOwner drops every row of an owner, used when the owner is deleted
func (r *Repository) DeleteForOwner(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID string) error {
	ctx, span := tracing.StartSpan(ctx, "AssignedValueRepository.DeleteForOwner")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("owner_kind", kind),
		sb.Equal("owner_id", ownerID),
	)

	query, args := sb.Build()

	if _, err := r.execer(ctx).ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete assigned values for owner")
		return fmt.Errorf("failed to delete assigned values: %w", err)
	}

	return nil
}

// DeleteByValueIDs drops every row pointing at the given values, used when
// values are removed by cascade cleanup.
func (r *Repository) DeleteByValueIDs(ctx context.Context, tenantID string, valueIDs []string) error {
	ctx, span := tracing.StartSpan(ctx, "AssignedValueRepository.DeleteByValueIDs")
	defer span.End()

	if len(valueIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In("DELETE FROM assigned_attribute_values WHERE tenant_id = ? AND value_id IN (?)", tenantID, valueIDs)
	if err != nil {
		return err
	}
	query = r.db.Rebind(query)

	if _, err := r.execer(ctx).ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete assigned values by value IDs")
		return fmt.Errorf("failed to delete assigned values: %w", err)
	}

	return nil
}

// DeleteByAttribute drops every row of an attribute, used when the attribute
// definition is deleted.
func (r *Repository) DeleteByAttribute(ctx context.Context, tenantID, attributeID string) error {
	ctx, span := tracing.StartSpan(ctx, "AssignedValueRepository.DeleteByAttribute")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("attribute_id", attributeID),
	)

	query, args := sb.Build()

	if _, err := r.execer(ctx).ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete assigned values by attribute")
		return fmt.Errorf("failed to delete assigned values: %w", err)
	}

	return nil
}
