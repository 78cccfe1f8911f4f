package assignment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/Ramsey-B/petal/pkg/slug"
	"github.com/Ramsey-B/petal/pkg/tracing"
)

const msgInvalidReference = "Invalid reference type"

// ResolvedInput is one batch item translated to concrete value ids, in
// submission order. CreatedValueIDs lists the subset minted by this
// resolution rather than reused from the pool.
type ResolvedInput struct {
	AttributeID     string
	ValueIDs        []string
	CreatedValueIDs []string
	Clear           bool
}

// Resolver translates validated inputs into attribute value rows, reusing
// existing rows before creating new ones.
type Resolver struct {
	values   ValueStore
	entities EntityStore
}

func NewResolver(values ValueStore, entities EntityStore) *Resolver {
	return &Resolver{
		values:   values,
		entities: entities,
	}
}

// Resolve maps one non-clearing input to value ids. The returned List carries
// reference violations; err is reserved for infrastructure failures.
func (r *Resolver) Resolve(ctx context.Context, tenantID, ownerID string, item CheckedInput) (ResolvedInput, List, error) {
	ctx, span := tracing.StartSpan(ctx, "assignment.Resolver.Resolve")
	defer span.End()

	resolved := ResolvedInput{AttributeID: item.Entry.ID}

	switch item.Entry.InputType {
	case models.InputTypeDropdown, models.InputTypeMultiselect, models.InputTypeSwatch:
		for _, literal := range item.Values {
			id, created, err := r.findOrCreateNamed(ctx, tenantID, item.Entry, literal)
			if err != nil {
				return resolved, nil, err
			}
			resolved.add(id, created)
		}
	case models.InputTypePlainText:
		id, created, err := r.findOrCreateNamed(ctx, tenantID, item.Entry, *item.Input.PlainText)
		if err != nil {
			return resolved, nil, err
		}
		resolved.add(id, created)
	case models.InputTypeNumeric:
		literal := strings.TrimSpace(item.Values[0])
		id, created, err := r.upsertOwnerScoped(ctx, tenantID, item.Entry, ownerID, func(v *models.AttributeValue) {
			v.Name = literal
			v.PlainText = &literal
		})
		if err != nil {
			return resolved, nil, err
		}
		resolved.add(id, created)
	case models.InputTypeBoolean:
		id, created, err := r.findOrCreateBoolean(ctx, tenantID, item.Entry, *item.Input.Boolean)
		if err != nil {
			return resolved, nil, err
		}
		resolved.add(id, created)
	case models.InputTypeDate:
		literal := strings.TrimSpace(*item.Input.Date)
		id, created, err := r.upsertOwnerScoped(ctx, tenantID, item.Entry, ownerID, func(v *models.AttributeValue) {
			v.Name = literal
			v.DateValue = &literal
		})
		if err != nil {
			return resolved, nil, err
		}
		resolved.add(id, created)
	case models.InputTypeDateTime:
		literal := strings.TrimSpace(*item.Input.DateTime)
		parsed, err := time.Parse(time.RFC3339, literal)
		if err != nil {
			return resolved, nil, err
		}
		id, created, err := r.upsertOwnerScoped(ctx, tenantID, item.Entry, ownerID, func(v *models.AttributeValue) {
			v.Name = literal
			v.DateTimeValue = &parsed
		})
		if err != nil {
			return resolved, nil, err
		}
		resolved.add(id, created)
	case models.InputTypeRichText:
		raw := item.Input.RichText
		id, created, err := r.upsertOwnerScoped(ctx, tenantID, item.Entry, ownerID, func(v *models.AttributeValue) {
			v.Name = richTextName(raw)
			v.RichText = raw
		})
		if err != nil {
			return resolved, nil, err
		}
		resolved.add(id, created)
	case models.InputTypeFile:
		id, created, err := r.findOrCreateFile(ctx, tenantID, item.Entry, item.Input.File)
		if err != nil {
			return resolved, nil, err
		}
		resolved.add(id, created)
	case models.InputTypeReference:
		errs, err := r.resolveReferences(ctx, tenantID, ownerID, item, &resolved)
		if err != nil || errs.HasErrors() {
			return resolved, errs, err
		}
	}

	return resolved, nil, nil
}

func (r *ResolvedInput) add(id string, created bool) {
	r.ValueIDs = append(r.ValueIDs, id)
	if created {
		r.CreatedValueIDs = append(r.CreatedValueIDs, id)
	}
}

// findOrCreateNamed reuses a value whose name matches case-insensitively,
// otherwise creates one with a slug derived from the literal, suffixed past
// collisions with differently named values.
func (r *Resolver) findOrCreateNamed(ctx context.Context, tenantID string, entry models.RegistryEntry, literal string) (string, bool, error) {
	literal = strings.TrimSpace(literal)

	existing, err := r.values.GetByName(ctx, tenantID, entry.ID, literal)
	if err != nil {
		return "", false, err
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	base := slug.Slugify(literal)
	if base == "" {
		base = "value"
	}
	taken, err := r.values.ListSlugsByPrefix(ctx, tenantID, entry.ID, base)
	if err != nil {
		return "", false, err
	}
	takenSet := make(map[string]bool, len(taken))
	for _, s := range taken {
		takenSet[s] = true
	}

	value := &models.AttributeValue{
		AttributeID: entry.ID,
		Slug:        slug.MakeUnique(base, takenSet),
		Name:        literal,
	}
	if entry.InputType == models.InputTypePlainText {
		value.PlainText = &literal
	}

	created, err := r.values.Create(ctx, tenantID, value)
	if err != nil {
		return "", false, err
	}
	return created.ID, true, nil
}

func (r *Resolver) findOrCreateBoolean(ctx context.Context, tenantID string, entry models.RegistryEntry, b bool) (string, bool, error) {
	boolSlug := slug.ForBoolean(entry.ID, b)

	existing, err := r.values.GetBySlug(ctx, tenantID, entry.ID, boolSlug)
	if err != nil {
		return "", false, err
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	name := "Boolean: No"
	if b {
		name = "Boolean: Yes"
	}
	created, err := r.values.Create(ctx, tenantID, &models.AttributeValue{
		AttributeID: entry.ID,
		Slug:        boolSlug,
		Name:        name,
		Boolean:     &b,
	})
	if err != nil {
		return "", false, err
	}
	return created.ID, true, nil
}

func (r *Resolver) findOrCreateFile(ctx context.Context, tenantID string, entry models.RegistryEntry, file *FileInput) (string, bool, error) {
	fileURL := strings.TrimSpace(file.URL)

	existing, err := r.values.GetByFileURL(ctx, tenantID, entry.ID, fileURL)
	if err != nil {
		return "", false, err
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	base := slug.FromFileURL(fileURL)
	if base == "" {
		base = "file"
	}
	taken, err := r.values.ListSlugsByPrefix(ctx, tenantID, entry.ID, base)
	if err != nil {
		return "", false, err
	}
	takenSet := make(map[string]bool, len(taken))
	for _, s := range taken {
		takenSet[s] = true
	}

	value := &models.AttributeValue{
		AttributeID: entry.ID,
		Slug:        slug.MakeUnique(base, takenSet),
		Name:        fileBaseName(fileURL),
		FileURL:     &fileURL,
	}
	if contentType := strings.TrimSpace(file.ContentType); contentType != "" {
		value.ContentType = &contentType
	}

	created, err := r.values.Create(ctx, tenantID, value)
	if err != nil {
		return "", false, err
	}
	return created.ID, true, nil
}

func (r *Resolver) resolveReferences(ctx context.Context, tenantID, ownerID string, item CheckedInput, resolved *ResolvedInput) (List, error) {
	invalid := newGroup(CodeInvalid)

	for _, targetID := range item.Values {
		target, err := r.entities.GetReference(ctx, tenantID, targetID)
		if err != nil {
			return nil, err
		}
		if target == nil || item.Entry.ReferenceEntity == nil || target.Kind != *item.Entry.ReferenceEntity {
			invalid.add(msgInvalidReference, item.Entry.ID)
			break
		}

		refSlug := slug.ForReference(ownerID, targetID)
		existing, err := r.values.GetBySlug(ctx, tenantID, item.Entry.ID, refSlug)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			resolved.add(existing.ID, false)
			continue
		}

		created, err := r.values.Create(ctx, tenantID, &models.AttributeValue{
			AttributeID: item.Entry.ID,
			Slug:        refSlug,
			Name:        target.Name,
			ReferenceID: &targetID,
		})
		if err != nil {
			return nil, err
		}
		resolved.add(created.ID, true)
	}

	var errs List
	errs = invalid.appendTo(errs)
	if errs.HasErrors() {
		resolved.ValueIDs = nil
		resolved.CreatedValueIDs = nil
		return errs, nil
	}
	return nil, nil
}

func (r *Resolver) upsertOwnerScoped(ctx context.Context, tenantID string, entry models.RegistryEntry, ownerID string, populate func(*models.AttributeValue)) (string, bool, error) {
	ownerSlug := slug.Deterministic(ownerID, entry.ID)

	existing, err := r.values.GetBySlug(ctx, tenantID, entry.ID, ownerSlug)
	if err != nil {
		return "", false, err
	}
	if existing != nil {
		populate(existing)
		updated, err := r.values.Update(ctx, tenantID, existing)
		if err != nil {
			return "", false, err
		}
		return updated.ID, false, nil
	}

	value := &models.AttributeValue{
		AttributeID: entry.ID,
		Slug:        ownerSlug,
	}
	populate(value)

	created, err := r.values.Create(ctx, tenantID, value)
	if err != nil {
		return "", false, err
	}
	return created.ID, true, nil
}

// richTextName truncates on runes so multi-byte content stays valid UTF-8
func richTextName(raw json.RawMessage) string {
	runes := []rune(string(raw))
	if len(runes) > 49 {
		return fmt.Sprintf("%s…", string(runes[:49]))
	}
	return string(runes)
}

func fileBaseName(fileURL string) string {
	name := fileURL
	if u, err := url.Parse(fileURL); err == nil && u.Path != "" {
		name = u.Path
	}
	return path.Base(name)
}
