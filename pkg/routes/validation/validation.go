package validation

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/petal/internal/repositories/product"
	"github.com/Ramsey-B/petal/internal/repositories/variant"
	"github.com/Ramsey-B/petal/pkg/assignment"
	ctxmiddleware "github.com/Ramsey-B/petal/pkg/context"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/Ramsey-B/petal/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// ValidateRequest is the request body for a dry-run assignment validation
type ValidateRequest struct {
	OwnerKind  models.OwnerKind            `json:"owner_kind" validate:"required"`
	OwnerID    string                      `json:"owner_id" validate:"required"`
	Attributes []assignment.AttributeInput `json:"attributes" validate:"required"`
}

// ValidateResponse reports whether a batch would be accepted
type ValidateResponse struct {
	Valid  bool               `json:"valid"`
	Errors []assignment.Error `json:"errors"`
}

// Register registers assignment validation routes
func Register(g *echo.Group) {
	g.POST("/validate", Validate)
}

// Validate runs an assignment batch through validation without writing
// anything. It reports the same grouped errors an assignment would.
func Validate(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "validation_handler.Validate")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req ValidateRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !req.OwnerKind.IsValid() {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid owner kind: %s", req.OwnerKind)
	}

	ctx, owner, err := resolveOwner(ctx, tenantID, req.OwnerKind, req.OwnerID)
	if err != nil {
		return err
	}

	ctx, svc, err := ectoinject.GetContext[*assignment.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get assignment service")
	}

	_, errs, err := svc.Validate(ctx, tenantID, owner, req.Attributes)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to validate assignment")
	}

	resp := ValidateResponse{Valid: !errs.HasErrors(), Errors: errs}
	if resp.Errors == nil {
		resp.Errors = []assignment.Error{}
	}

	return c.JSON(http.StatusOK, resp)
}

func resolveOwner(ctx context.Context, tenantID string, kind models.OwnerKind, ownerID string) (context.Context, assignment.Owner, error) {
	if kind == models.OwnerKindVariant {
		ctx, repo, err := ectoinject.GetContext[*variant.Repository](ctx)
		if err != nil {
			return ctx, assignment.Owner{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
		}
		v, err := repo.GetWithType(ctx, tenantID, ownerID)
		if err != nil {
			return ctx, assignment.Owner{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get variant")
		}
		if v == nil {
			return ctx, assignment.Owner{}, httperror.NewHTTPError(http.StatusNotFound, "variant not found")
		}
		return ctx, assignment.Owner{Kind: kind, ID: v.ID, ProductTypeID: v.ProductTypeID}, nil
	}

	ctx, repo, err := ectoinject.GetContext[*product.Repository](ctx)
	if err != nil {
		return ctx, assignment.Owner{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}
	p, err := repo.GetByID(ctx, tenantID, ownerID)
	if err != nil {
		return ctx, assignment.Owner{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product")
	}
	if p == nil {
		return ctx, assignment.Owner{}, httperror.NewHTTPError(http.StatusNotFound, "product not found")
	}
	return ctx, assignment.Owner{Kind: kind, ID: p.ID, ProductTypeID: p.ProductTypeID}, nil
}
