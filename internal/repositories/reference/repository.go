package reference

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/petal/pkg/assignment"
	"github.com/Ramsey-B/petal/pkg/database"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/Ramsey-B/petal/pkg/tracing"
)

// Repository resolves reference target ids across products, variants and
// pages in one query. It implements assignment.EntityStore.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new reference repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const lookupQuery = `
  SELECT id, 'PRODUCT' AS kind, name FROM products
  WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL
  UNION ALL
  SELECT id, 'VARIANT' AS kind, name FROM product_variants
  WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL
  UNION ALL
  SELECT id, 'PAGE' AS kind, title AS name FROM pages
  WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL
`

// GetReference returns the live entity with the given id, or nil when no
// product, variant or page matches.
func (r *Repository) GetReference(ctx context.Context, tenantID, id string) (*assignment.ReferenceTarget, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferenceRepository.GetReference")
	defer span.End()

	var row struct {
		ID   string `db:"id"`
		Kind string `db:"kind"`
		Name string `db:"name"`
	}
	err := database.Resolve(ctx, r.db).GetContext(ctx, &row, lookupQuery, tenantID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to resolve reference target")
		return nil, fmt.Errorf("failed to resolve reference target: %w", err)
	}

	return &assignment.ReferenceTarget{
		ID:   row.ID,
		Kind: models.ReferenceEntity(row.Kind),
		Name: row.Name,
	}, nil
}
