package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/edustack/tutor-platform/internal/model"
	"github.com/edustack/tutor-platform/internal/service"
)

// UserHandler exposes the user lifecycle operations under /api/user.
type UserHandler struct {
	Users *service.UserService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

type createTutorReq struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	TenantID uint64 `json:"tenant_id" validate:"required"`
	Username string `json:"username" validate:"omitempty,min=2,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

type createStudentReq struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"omitempty,min=2,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	TenantID uint64 `json:"tenant_id"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

type updateProfileReq struct {
	Username *string `json:"username" validate:"omitempty,min=2,max=64"`
	Name     *string `json:"name" validate:"omitempty,min=2,max=120"`
	Image    *string `json:"image"`
}

type adminUpdateReq struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=120"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Username *string `json:"username" validate:"omitempty,min=2,max=64"`
	Role     *string `json:"role" validate:"omitempty,oneof=student tutor admin"`
	Status   *string `json:"status" validate:"omitempty,oneof=ACTIVE DEACTIVATED DELETED"`
}

type studentUpdateReq struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=120"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Username *string `json:"username" validate:"omitempty,min=2,max=64"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// CreateTutor handles POST /api/user/tutor (admin only).
func (h *UserHandler) CreateTutor(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	var req createTutorReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "name, email, tenant_id and password are required")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	u, err := h.Users.CreateTutor(ctx, caller, service.CreateTutorInput{
		Name:     req.Name,
		Email:    req.Email,
		TenantID: req.TenantID,
		Username: req.Username,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusCreated, echo.Map{"data": u, "message": "tutor created successfully"})
}

// CreateStudent handles POST /api/user/student (tutor only). Students land
// in the creating tutor's tenant unless an explicit tenant is supplied by
// an admin deployment.
func (h *UserHandler) CreateStudent(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	var req createStudentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "name, email and password are required")
	}
	tenantID := req.TenantID
	if tenantID == 0 {
		tenantID = caller.TenantID
	}

	ctx, cancel := opContext(c)
	defer cancel()

	u, err := h.Users.CreateStudent(ctx, caller, service.CreateStudentInput{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		TenantID: tenantID,
		Phone:    req.Phone,
	})
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusCreated, echo.Map{"data": u, "message": "student created successfully"})
}

// UpdateProfile handles PUT /api/user/update (self-service).
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "invalid fields")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, caller, service.UpdateProfileInput{
		Username: req.Username,
		Name:     req.Name,
		Image:    req.Image,
	})
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": u})
}

// AdminUpdate handles PUT /api/user/admin-update/:id (admin only).
func (h *UserHandler) AdminUpdate(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var req adminUpdateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "invalid fields")
	}

	in := service.AdminUpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
	}
	if req.Role != nil {
		r := model.Role(*req.Role)
		in.Role = &r
	}
	if req.Status != nil {
		s := model.Status(*req.Status)
		in.Status = &s
	}

	ctx, cancel := opContext(c)
	defer cancel()

	u, err := h.Users.UpdateByAdmin(ctx, caller, id, in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": u})
}

// StudentUpdate handles PUT /api/user/student-update/:id (tutor or admin).
func (h *UserHandler) StudentUpdate(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var req studentUpdateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "invalid fields")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	u, err := h.Users.UpdateStudent(ctx, caller, id, service.StudentUpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": u})
}

// RemoveSelf handles DELETE /api/user/remove: self-service deactivation.
func (h *UserHandler) RemoveSelf(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := opContext(c)
	defer cancel()

	u, err := h.Users.DeactivateSelf(ctx, caller)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": u})
}

// AdminRemove handles DELETE /api/user/admin-remove/:id: administrator
// soft delete.
func (h *UserHandler) AdminRemove(c echo.Context) error {
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

	if err := h.Users.RemoveByAdmin(ctx, caller, id); err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "user removed"})
}

// Find handles GET /api/user/find: the caller's own record.
func (h *UserHandler) Find(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := opContext(c)
	defer cancel()

	u, err := h.Users.GetUserData(ctx, caller)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": u})
}

// GetByID handles GET /api/user/user/:id with the tenant name resolved.
func (h *UserHandler) GetByID(c echo.Context) error {
	if _, err := callerFrom(c); err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	u, err := h.Users.GetUserByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": u})
}

// Students handles GET /api/user/students?tenant_id=&page=&limit=.
func (h *UserHandler) Students(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	tenantID, _ := strconv.ParseUint(c.QueryParam("tenant_id"), 10, 64)
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := opContext(c)
	defer cancel()

	pageOut, err := h.Users.GetStudents(ctx, caller, tenantID, page, limit)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": pageOut})
}

// All handles GET /api/user/all: admins get every tutor, everyone else
// their own record.
func (h *UserHandler) All(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := opContext(c)
	defer cancel()

	out, err := h.Users.GetAllUsers(ctx, caller)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": out})
}
