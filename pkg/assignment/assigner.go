package assignment

import (
	"context"

	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/Ramsey-B/petal/pkg/tracing"
)

// Assigner writes the resolved batch to the join table. Only submitted
// attributes are touched; each one's rows are replaced wholesale in
// submission order, and a clearing item drops the rows outright.
type Assigner struct {
	assignments AssignmentStore
}

func NewAssigner(assignments AssignmentStore) *Assigner {
	return &Assigner{assignments: assignments}
}

func (a *Assigner) Apply(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID string, resolved []ResolvedInput) error {
	ctx, span := tracing.StartSpan(ctx, "assignment.Assigner.Apply")
	defer span.End()

	for _, item := range resolved {
		if item.Clear {
			if err := a.assignments.DeleteForAttribute(ctx, tenantID, kind, ownerID, item.AttributeID); err != nil {
				return err
			}
			continue
		}
		if err := a.assignments.ReplaceForAttribute(ctx, tenantID, kind, ownerID, item.AttributeID, item.ValueIDs); err != nil {
			return err
		}
	}

	return nil
}
