package producttype

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/petal/internal/repositories/attribute"
	"github.com/Ramsey-B/petal/internal/repositories/producttype"
	ctxmiddleware "github.com/Ramsey-B/petal/pkg/context"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/Ramsey-B/petal/pkg/registry"
	"github.com/Ramsey-B/petal/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// Register registers product type routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
	g.GET("/:id/attributes", Attributes)
	g.POST("/:id/attributes", AttachAttribute)
	g.DELETE("/:id/attributes/:attributeID", DetachAttribute)
}

// List returns all product types for the tenant
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_type_handler.List")
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

	ctx, repo, err := ectoinject.GetContext[*producttype.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, totalCount, err := repo.List(ctx, tenantID, page, pageSize)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list product types")
	}

	return c.JSON(http.StatusOK, models.ProductTypeListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Create creates a new product type
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_type_handler.Create")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req models.CreateProductTypeRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*producttype.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Create(ctx, tenantID, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create product type")
	}

	return c.JSON(http.StatusCreated, models.ProductTypeResponse{ProductType: *result})
}

// Get returns a single product type by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_type_handler.Get")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*producttype.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product type")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "product type not found")
	}

	return c.JSON(http.StatusOK, models.ProductTypeResponse{ProductType: *result})
}

// Update updates a product type
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_type_handler.Update")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	var req models.UpdateProductTypeRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, repo, err := ectoinject.GetContext[*producttype.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Update(ctx, tenantID, id, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update product type")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "product type not found")
	}

	return c.JSON(http.StatusOK, models.ProductTypeResponse{ProductType: *result})
}

// Delete soft deletes a product type
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_type_handler.Delete")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*producttype.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	existing, err := repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product type")
	}
	if existing == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "product type not found")
	}

	if err := repo.Delete(ctx, tenantID, id); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete product type")
	}

	invalidateRegistry(ctx, tenantID, id)

	return c.NoContent(http.StatusNoContent)
}

// Attributes returns the attribute registry of one scope of a product type
func Attributes(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_type_handler.Attributes")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	scope := models.AttributeScope(c.QueryParam("scope"))
	if scope == "" {
		scope = models.AttributeScopeProduct
	}
	if !scope.IsValid() {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid scope: %s", scope)
	}

	ctx, repo, err := ectoinject.GetContext[*producttype.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	existing, err := repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product type")
	}
	if existing == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "product type not found")
	}

	ctx, cache, err := ectoinject.GetContext[*registry.Cache](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get registry")
	}

	items, err := cache.Entries(ctx, tenantID, id, scope)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to load attribute registry")
	}

	return c.JSON(http.StatusOK, models.RegistryResponse{
		ProductTypeID: id,
		Scope:         scope,
		Items:         items,
	})
}

// AttachAttribute adds an attribute to a product type's registry
func AttachAttribute(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_type_handler.AttachAttribute")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	var req models.AttachAttributeRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !req.Scope.IsValid() {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid scope: %s", req.Scope)
	}

	ctx, repo, err := ectoinject.GetContext[*producttype.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	existing, err := repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product type")
	}
	if existing == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "product type not found")
	}
	if req.Scope == models.AttributeScopeVariant && !existing.HasVariants {
		return httperror.NewHTTPError(http.StatusBadRequest, "product type does not have variants")
	}

	ctx, attrRepo, err := ectoinject.GetContext[*attribute.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}
	attr, err := attrRepo.GetByID(ctx, tenantID, req.AttributeID)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get attribute")
	}
	if attr == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "attribute not found")
	}

	result, err := repo.AttachAttribute(ctx, tenantID, id, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to attach attribute")
	}

	invalidateRegistry(ctx, tenantID, id)

	return c.JSON(http.StatusCreated, result)
}

// DetachAttribute removes an attribute from a product type's registry.
// Existing assignments stay in place; they just stop resolving against the
// registry.
func DetachAttribute(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_type_handler.DetachAttribute")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")
	attributeID := c.Param("attributeID")

	ctx, repo, err := ectoinject.GetContext[*producttype.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	existing, err := repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product type")
	}
	if existing == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "product type not found")
	}

	if err := repo.DetachAttribute(ctx, tenantID, id, attributeID); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to detach attribute")
	}

	invalidateRegistry(ctx, tenantID, id)

	return c.NoContent(http.StatusNoContent)
}

func invalidateRegistry(ctx context.Context, tenantID, productTypeID string) {
	ctx, cache, err := ectoinject.GetContext[*registry.Cache](ctx)
	if err != nil {
		return
	}
	cache.Invalidate(ctx, tenantID, productTypeID)
}
