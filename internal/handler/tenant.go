package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edustack/tutor-platform/internal/repository"
	"github.com/edustack/tutor-platform/internal/service"
)

// TenantHandler exposes the tenant registry under /api/tenants.
type TenantHandler struct {
	Tenants *service.TenantService
}

// NewTenantHandler constructs a TenantHandler.
func NewTenantHandler(tenants *service.TenantService) *TenantHandler {
	return &TenantHandler{Tenants: tenants}
}

type createTenantReq struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Address string `json:"address" validate:"omitempty,max=255"`
	Notes   string `json:"notes"`
}

type updateTenantReq struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=120"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=32"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	Notes   *string `json:"notes"`
}

// Create handles POST /api/tenants.
func (h *TenantHandler) Create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	var req createTenantReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "name and a valid email are required")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	t, err := h.Tenants.CreateTenant(ctx, caller, service.CreateTenantInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusCreated, echo.Map{"data": t})
}

// List handles GET /api/tenants and returns the caller's active tenants.
func (h *TenantHandler) List(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := opContext(c)
	defer cancel()

	out, err := h.Tenants.ListTenants(ctx, caller)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": out})
}

// Get handles GET /api/tenants/:id.
func (h *TenantHandler) Get(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	t, err := h.Tenants.GetTenant(ctx, caller, id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": t})
}

// Update handles PUT /api/tenants/:id.
func (h *TenantHandler) Update(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var req updateTenantReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "invalid fields")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	t, err := h.Tenants.UpdateTenant(ctx, caller, id, repository.TenantPatch{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": t})
}

// Delete handles DELETE /api/tenants/:id by soft-disabling the tenant.
func (h *TenantHandler) Delete(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	t, err := h.Tenants.DeactivateTenant(ctx, caller, id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": t})
}
