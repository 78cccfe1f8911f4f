// Package processor consumes catalog events and cascades deletions: when an
// entity disappears, values referencing it and assignment rows pointing at
// those values must go too.
package processor

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/petal/internal/repositories/assignedvalue"
	"github.com/Ramsey-B/petal/internal/repositories/attributevalue"
	"github.com/Ramsey-B/petal/pkg/database"
	"github.com/Ramsey-B/petal/pkg/events"
	"github.com/Ramsey-B/petal/pkg/kafka"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/Ramsey-B/petal/pkg/tracing"
)

// CleanupProcessor handles cascade cleanup for deletion events. Every handler
// is idempotent, so at-least-once delivery is safe.
type CleanupProcessor struct {
	db       database.DB
	values   attributevalue.AttributeValueRepository
	assigned assignedvalue.AssignedValueRepository
	logger   ectologger.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(db database.DB, values attributevalue.AttributeValueRepository, assigned assignedvalue.AssignedValueRepository, logger ectologger.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		db:       db,
		values:   values,
		assigned: assigned,
		logger:   logger,
	}
}

// HandleMessage routes one catalog event to its cleanup
func (p *CleanupProcessor) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.CleanupProcessor.HandleMessage")
	defer span.End()

	event := msg.Event
	if event == nil || event.TenantID == "" {
		return nil
	}

	switch event.EventType {
	case events.TypeProductDeleted:
		return p.cleanupOwner(ctx, event.TenantID, models.OwnerKindProduct, event.EntityID)
	case events.TypeVariantDeleted:
		return p.cleanupOwner(ctx, event.TenantID, models.OwnerKindVariant, event.EntityID)
	case events.TypePageDeleted:
		return p.cleanupReferences(ctx, event.TenantID, event.EntityID)
	case events.TypeAttributeDeleted:
		return p.cleanupAttribute(ctx, event.TenantID, event.EntityID)
	case events.TypeAttributeValueDeleted:
		return p.cleanupValue(ctx, event.TenantID, event.EntityID)
	default:
		// attribute.assigned and future event types need no cleanup
		return nil
	}
}

// cleanupOwner drops a deleted owner's assignment rows, then any reference
// values pointing at it.
func (p *CleanupProcessor) cleanupOwner(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID string) error {
	txCtx, tx, err := p.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := p.assigned.DeleteForOwner(txCtx, tenantID, kind, ownerID); err != nil {
		return err
	}
	if err := p.dropReferenceValues(txCtx, tenantID, ownerID); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id":  tenantID,
		"owner_kind": kind,
		"owner_id":   ownerID,
	}).Info("cleaned up assignments for deleted owner")
	return nil
}

func (p *CleanupProcessor) cleanupReferences(ctx context.Context, tenantID, targetID string) error {
	txCtx, tx, err := p.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := p.dropReferenceValues(txCtx, tenantID, targetID); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id": tenantID,
		"target_id": targetID,
	}).Info("cleaned up reference values for deleted target")
	return nil
}

func (p *CleanupProcessor) cleanupAttribute(ctx context.Context, tenantID, attributeID string) error {
	txCtx, tx, err := p.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := p.assigned.DeleteByAttribute(txCtx, tenantID, attributeID); err != nil {
		return err
	}
	if _, err := p.values.DeleteByAttribute(txCtx, tenantID, attributeID); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id":    tenantID,
		"attribute_id": attributeID,
	}).Info("cleaned up values for deleted attribute")
	return nil
}

func (p *CleanupProcessor) cleanupValue(ctx context.Context, tenantID, valueID string) error {
	return p.assigned.DeleteByValueIDs(ctx, tenantID, []string{valueID})
}

// dropReferenceValues deletes reference values pointing at a deleted target
// along with the assignment rows that used them.
func (p *CleanupProcessor) dropReferenceValues(ctx context.Context, tenantID, targetID string) error {
	valueIDs, err := p.values.DeleteByReference(ctx, tenantID, targetID)
	if err != nil {
		return err
	}
	return p.assigned.DeleteByValueIDs(ctx, tenantID, valueIDs)
}
