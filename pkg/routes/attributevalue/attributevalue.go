package attributevalue

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/petal/internal/repositories/assignedvalue"
	"github.com/Ramsey-B/petal/internal/repositories/attributevalue"
	ctxmiddleware "github.com/Ramsey-B/petal/pkg/context"
	"github.com/Ramsey-B/petal/pkg/events"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/Ramsey-B/petal/pkg/tracing"
	"github.com/labstack/echo/v4"
)

// Register registers value routes on the attributes group
func Register(g *echo.Group) {
	g.GET("/:id/values", List)
	g.DELETE("/:id/values/:valueID", Delete)
}

// List returns the value pool of an attribute
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "attribute_value_handler.List")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	attributeID := c.Param("id")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	ctx, repo, err := ectoinject.GetContext[*attributevalue.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, totalCount, err := repo.List(ctx, tenantID, attributeID, page, pageSize)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list attribute values")
	}

	return c.JSON(http.StatusOK, models.AttributeValueListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Delete removes a value from an attribute's pool along with any assignment
// rows pointing at it.
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "attribute_value_handler.Delete")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	attributeID := c.Param("id")
	valueID := c.Param("valueID")

	ctx, repo, err := ectoinject.GetContext[*attributevalue.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	value, err := repo.GetByID(ctx, tenantID, valueID)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get attribute value")
	}
	if value == nil || value.AttributeID != attributeID {
		return httperror.NewHTTPError(http.StatusNotFound, "attribute value not found")
	}

	if err := repo.Delete(ctx, tenantID, attributeID, valueID); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete attribute value")
	}

	ctx, assigned, err := ectoinject.GetContext[*assignedvalue.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}
	if err := assigned.DeleteByValueIDs(ctx, tenantID, []string{valueID}); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete value assignments")
	}

	// The cascade consumer repeats the assignment cleanup, which keeps other
	// replicas consistent and makes a failure between the two deletes above
	// self-healing.
	ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get emitter")
	}
	if err := emitter.AttributeValueDeleted(ctx, tenantID, valueID); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to publish cleanup event")
	}

	return c.NoContent(http.StatusNoContent)
}
