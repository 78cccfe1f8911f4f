package attribute

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/petal/internal/repositories/attribute"
	ctxmiddleware "github.com/Ramsey-B/petal/pkg/context"
	"github.com/Ramsey-B/petal/pkg/events"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/Ramsey-B/petal/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// Register registers attribute definition routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
}

// List returns all attributes for the tenant
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "attribute_handler.List")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	ctx, repo, err := ectoinject.GetContext[*attribute.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, totalCount, err := repo.List(ctx, tenantID, page, pageSize)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list attributes")
	}

	return c.JSON(http.StatusOK, models.AttributeListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Create creates a new attribute definition
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "attribute_handler.Create")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req models.CreateAttributeRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if !req.InputType.IsValid() {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid input type: %s", req.InputType)
	}
	if req.InputType == models.InputTypeReference {
		if req.ReferenceEntity == nil || !req.ReferenceEntity.IsValid() {
			return httperror.NewHTTPError(http.StatusBadRequest, "reference attributes require a valid reference_entity")
		}
	} else if req.ReferenceEntity != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "reference_entity is only valid for REFERENCE attributes")
	}
	if req.Unit != nil && req.InputType != models.InputTypeNumeric {
		return httperror.NewHTTPError(http.StatusBadRequest, "unit is only valid for NUMERIC attributes")
	}

	ctx, repo, err := ectoinject.GetContext[*attribute.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	existing, err := repo.GetBySlug(ctx, tenantID, req.Slug)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to check existing attribute")
	}
	if existing != nil {
		return httperror.NewHTTPError(http.StatusConflict, "attribute with this slug already exists")
	}

	result, err := repo.Create(ctx, tenantID, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create attribute")
	}

	return c.JSON(http.StatusCreated, models.AttributeResponse{Attribute: *result})
}

// Get returns a single attribute by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "attribute_handler.Get")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*attribute.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get attribute")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "attribute not found")
	}

	return c.JSON(http.StatusOK, models.AttributeResponse{Attribute: *result})
}

// Update updates an attribute definition
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "attribute_handler.Update")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	var req models.UpdateAttributeRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, repo, err := ectoinject.GetContext[*attribute.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Update(ctx, tenantID, id, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update attribute")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "attribute not found")
	}

	return c.JSON(http.StatusOK, models.AttributeResponse{Attribute: *result})
}

// Delete soft deletes an attribute; its values and assignments are cleaned up
// by the cascade consumer.
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "attribute_handler.Delete")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*attribute.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	existing, err := repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get attribute")
	}
	if existing == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "attribute not found")
	}

	if err := repo.Delete(ctx, tenantID, id); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete attribute")
	}

	ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get emitter")
	}
	if err := emitter.AttributeDeleted(ctx, tenantID, id); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to publish cleanup event")
	}

	return c.NoContent(http.StatusNoContent)
}
