package assignment

import (
	"context"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/petal/pkg/database"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/Ramsey-B/petal/pkg/tracing"
)

// Owner identifies the entity receiving attribute values. ProductTypeID is the
// type whose registry scopes the batch; for a variant owner it is the parent
// product's type.
type Owner struct {
	Kind          models.OwnerKind
	ID            string
	ProductTypeID string
}

// Service runs assignment batches: validate everything, resolve inputs to
// value rows, replace the owner's join rows, all inside one transaction.
type Service struct {
	db          database.DB
	definitions Definitions
	registry    Registry
	values      ValueStore
	assignments AssignmentStore
	validator   *Validator
	resolver    *Resolver
	assigner    *Assigner
	emitter     Emitter
	logger      ectologger.Logger
}

func NewService(db database.DB, definitions Definitions, registry Registry, values ValueStore, assignments AssignmentStore, entities EntityStore, emitter Emitter, logger ectologger.Logger) *Service {
	return &Service{
		db:          db,
		definitions: definitions,
		registry:    registry,
		values:      values,
		assignments: assignments,
		validator:   NewValidator(),
		resolver:    NewResolver(values, entities),
		assigner:    NewAssigner(assignments),
		emitter:     emitter,
		logger:      logger,
	}
}

// Validate checks a batch against the owner's registry without writing
// anything. The returned List holds every violation found; err is reserved
// for infrastructure failures.
func (s *Service) Validate(ctx context.Context, tenantID string, owner Owner, inputs []AttributeInput) ([]CheckedInput, List, error) {
	ctx, span := tracing.StartSpan(ctx, "assignment.Service.Validate")
	defer span.End()

	entries, err := s.registry.Entries(ctx, tenantID, owner.ProductTypeID, owner.Kind.Scope())
	if err != nil {
		return nil, nil, err
	}

	prior, err := s.assignments.ListForOwner(ctx, tenantID, owner.Kind, owner.ID)
	if err != nil {
		return nil, nil, err
	}

	known, err := s.lookupUnknown(ctx, tenantID, entries, inputs)
	if err != nil {
		return nil, nil, err
	}

	checked, errs := s.validator.Validate(entries, known, prior, inputs)
	return checked, errs, nil
}

// Assign validates, resolves and persists a batch. On violations the List is
// returned and nothing is written.
func (s *Service) Assign(ctx context.Context, tenantID string, owner Owner, inputs []AttributeInput) (*models.OwnerAttributesResponse, List, error) {
	ctx, span := tracing.StartSpan(ctx, "assignment.Service.Assign")
	defer span.End()

	checked, errs, err := s.Validate(ctx, tenantID, owner, inputs)
	if err != nil {
		return nil, nil, err
	}
	if errs.HasErrors() {
		return nil, errs, nil
	}

	txCtx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	resolved := make([]ResolvedInput, 0, len(checked))
	var resolveErrs List
	for _, item := range checked {
		if item.Clear {
			resolved = append(resolved, ResolvedInput{AttributeID: item.Entry.ID, Clear: true})
			continue
		}

		res, itemErrs, err := s.resolver.Resolve(txCtx, tenantID, owner.ID, item)
		if err != nil {
			return nil, nil, err
		}
		if itemErrs.HasErrors() {
			resolveErrs = append(resolveErrs, itemErrs...)
			continue
		}
		resolved = append(resolved, res)
	}
	if resolveErrs.HasErrors() {
		return nil, resolveErrs, nil
	}

	if err := s.assigner.Apply(txCtx, tenantID, owner.Kind, owner.ID, resolved); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, nil, err
	}

	attributeIDs := ectolinq.Map(resolved, func(item ResolvedInput) string {
		return item.AttributeID
	})
	if err := s.emitter.AttributesAssigned(ctx, tenantID, owner.Kind, owner.ID, attributeIDs); err != nil {
		s.logger.WithContext(ctx).WithError(err).Errorf("failed to publish attribute assignment event")
	}
	for _, item := range resolved {
		for _, valueID := range item.CreatedValueIDs {
			if err := s.emitter.AttributeValueCreated(ctx, tenantID, valueID); err != nil {
				s.logger.WithContext(ctx).WithError(err).Errorf("failed to publish attribute value created event")
			}
		}
	}

	response, err := s.ListOwnerAttributes(ctx, tenantID, owner)
	if err != nil {
		return nil, nil, err
	}
	return response, nil, nil
}

// ListOwnerAttributes returns the owner's assigned attributes in registry
// order, each with its values in assignment order.
func (s *Service) ListOwnerAttributes(ctx context.Context, tenantID string, owner Owner) (*models.OwnerAttributesResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "assignment.Service.ListOwnerAttributes")
	defer span.End()

	entries, err := s.registry.Entries(ctx, tenantID, owner.ProductTypeID, owner.Kind.Scope())
	if err != nil {
		return nil, err
	}

	rows, err := s.assignments.ListForOwner(ctx, tenantID, owner.Kind, owner.ID)
	if err != nil {
		return nil, err
	}

	rowsByAttribute := map[string][]models.AssignedValue{}
	valueIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		rowsByAttribute[row.AttributeID] = append(rowsByAttribute[row.AttributeID], row)
		valueIDs = append(valueIDs, row.ValueID)
	}

	valueByID := map[string]models.AttributeValue{}
	if len(valueIDs) > 0 {
		values, err := s.values.GetByIDs(ctx, tenantID, valueIDs)
		if err != nil {
			return nil, err
		}
		for _, value := range values {
			valueByID[value.ID] = value
		}
	}

	response := &models.OwnerAttributesResponse{
		OwnerKind:  owner.Kind,
		OwnerID:    owner.ID,
		Attributes: []models.OwnerAttribute{},
	}
	for _, entry := range entries {
		attrRows := rowsByAttribute[entry.ID]
		if len(attrRows) == 0 {
			continue
		}

		values := make([]models.AttributeValue, 0, len(attrRows))
		for _, row := range attrRows {
			if value, ok := valueByID[row.ValueID]; ok {
				values = append(values, value)
			}
		}
		response.Attributes = append(response.Attributes, models.OwnerAttribute{
			Attribute: entry.Attribute,
			Values:    values,
		})
	}

	return response, nil
}

// lookupUnknown finds which submitted ids exist as attribute definitions at
// all, so the validator can distinguish NOT_FOUND from out-of-scope.
func (s *Service) lookupUnknown(ctx context.Context, tenantID string, entries []models.RegistryEntry, inputs []AttributeInput) (map[string]bool, error) {
	inScope := make(map[string]bool, len(entries))
	for _, entry := range entries {
		inScope[entry.ID] = true
	}

	var unknown []string
	for _, in := range inputs {
		if !inScope[in.ID] {
			unknown = append(unknown, in.ID)
		}
	}

	known := map[string]bool{}
	if len(unknown) == 0 {
		return known, nil
	}

	definitions, err := s.definitions.GetByIDs(ctx, tenantID, unknown)
	if err != nil {
		return nil, err
	}
	for _, definition := range definitions {
		known[definition.ID] = true
	}
	return known, nil
}
