package product

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/petal/internal/repositories/product"
	"github.com/Ramsey-B/petal/internal/repositories/producttype"
	"github.com/Ramsey-B/petal/internal/repositories/variant"
	"github.com/Ramsey-B/petal/pkg/assignment"
	ctxmiddleware "github.com/Ramsey-B/petal/pkg/context"
	"github.com/Ramsey-B/petal/pkg/events"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/Ramsey-B/petal/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// AssignRequest is the request body for an attribute assignment batch
type AssignRequest struct {
	Attributes []assignment.AttributeInput `json:"attributes" validate:"required"`
}

// Register registers product routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
	g.GET("/:id/attributes", Attributes)
	g.POST("/:id/attributes", Assign)
}

// List returns all products for the tenant
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.List")
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

	ctx, repo, err := ectoinject.GetContext[*product.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, totalCount, err := repo.List(ctx, tenantID, page, pageSize)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list products")
	}

	return c.JSON(http.StatusOK, models.ProductListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Create creates a new product
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Create")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req models.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, typeRepo, err := ectoinject.GetContext[*producttype.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}
	productType, err := typeRepo.GetByID(ctx, tenantID, req.ProductTypeID)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product type")
	}
	if productType == nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "product type not found")
	}

	ctx, repo, err := ectoinject.GetContext[*product.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Create(ctx, tenantID, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create product")
	}

	publishEvent(ctx, func(ctx context.Context, emitter *events.Emitter) error {
		return emitter.ProductCreated(ctx, tenantID, result.ID)
	})

	return c.JSON(http.StatusCreated, models.ProductResponse{Product: *result})
}

// Get returns a single product by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Get")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*product.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "product not found")
	}

	return c.JSON(http.StatusOK, models.ProductResponse{Product: *result})
}

// Update updates a product
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Update")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	var req models.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, repo, err := ectoinject.GetContext[*product.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Update(ctx, tenantID, id, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update product")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "product not found")
	}

	publishEvent(ctx, func(ctx context.Context, emitter *events.Emitter) error {
		return emitter.ProductUpdated(ctx, tenantID, result.ID)
	})

	return c.JSON(http.StatusOK, models.ProductResponse{Product: *result})
}

// Delete soft deletes a product and its variants. Assignment rows are cleaned
// up by the cascade consumer.
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Delete")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*product.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	existing, err := repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product")
	}
	if existing == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "product not found")
	}

	if err := repo.Delete(ctx, tenantID, id); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete product")
	}

	ctx, variantRepo, err := ectoinject.GetContext[*variant.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}
	variantIDs, err := variantRepo.DeleteByProduct(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete product variants")
	}

	ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get emitter")
	}
	if err := emitter.ProductDeleted(ctx, tenantID, id); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to publish cleanup event")
	}
	for _, variantID := range variantIDs {
		if err := emitter.VariantDeleted(ctx, tenantID, variantID); err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to publish cleanup event")
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// Attributes returns the product's assigned attributes with their values
func Attributes(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Attributes")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	ctx, owner, err := resolveOwner(ctx, tenantID, id)
	if err != nil {
		return err
	}

	ctx, svc, err := ectoinject.GetContext[*assignment.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get assignment service")
	}

	result, err := svc.ListOwnerAttributes(ctx, tenantID, owner)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list product attributes")
	}

	return c.JSON(http.StatusOK, result)
}

// Assign applies an attribute assignment batch to a product. The batch is
// atomic: any validation failure rejects the whole request.
func Assign(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Assign")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	var req AssignRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, owner, err := resolveOwner(ctx, tenantID, id)
	if err != nil {
		return err
	}

	ctx, svc, err := ectoinject.GetContext[*assignment.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get assignment service")
	}

	result, errs, err := svc.Assign(ctx, tenantID, owner, req.Attributes)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to assign attributes")
	}
	if errs.HasErrors() {
		return c.JSON(http.StatusBadRequest, map[string]any{"errors": errs})
	}

	return c.JSON(http.StatusOK, result)
}

// publishEvent publishes a lifecycle event best-effort; the request already
// succeeded, so a publish failure is logged rather than surfaced.
func publishEvent(ctx context.Context, publish func(context.Context, *events.Emitter) error) {
	ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx)
	if err != nil {
		return
	}
	if err := publish(ctx, emitter); err != nil {
		if _, logger, lerr := ectoinject.GetContext[ectologger.Logger](ctx); lerr == nil {
			logger.WithContext(ctx).WithError(err).Errorf("failed to publish catalog event")
		}
	}
}

func resolveOwner(ctx context.Context, tenantID, productID string) (context.Context, assignment.Owner, error) {
	ctx, repo, err := ectoinject.GetContext[*product.Repository](ctx)
	if err != nil {
		return ctx, assignment.Owner{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	p, err := repo.GetByID(ctx, tenantID, productID)
	if err != nil {
		return ctx, assignment.Owner{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product")
	}
	if p == nil {
		return ctx, assignment.Owner{}, httperror.NewHTTPError(http.StatusNotFound, "product not found")
	}

	return ctx, assignment.Owner{
		Kind:          models.OwnerKindProduct,
		ID:            p.ID,
		ProductTypeID: p.ProductTypeID,
	}, nil
}
