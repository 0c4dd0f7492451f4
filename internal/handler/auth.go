package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edustack/tutor-platform/internal/config"
	"github.com/edustack/tutor-platform/internal/service"
	"github.com/edustack/tutor-platform/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *service.UserService
	Codes *service.CodeService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(cfg config.Config, users *service.UserService, codes *service.CodeService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Codes: codes}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sendCodeReq struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyCodeReq struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// Login verifies credentials and returns a signed access token carrying the
// caller's id, role and tenant.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "email and password are required")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		// Unknown email, wrong password and retired accounts all read the
		// same from outside.
		return respond(c, http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(u.Role), u.TenantID, h.Cfg.AccessTTLMin)
	if err != nil {
		return respond(c, http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return respond(c, http.StatusOK, echo.Map{"data": u, "access": access})
}

// SendCode issues a one-time verification code to the given address.
func (h *AuthHandler) SendCode(c echo.Context) error {
	var req sendCodeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "a valid email is required")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	if err := h.Codes.Send(ctx, req.Email); err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "verification code sent"})
}

// VerifyCode checks a submitted one-time code and marks the address as
// verified. The code is consumed on first correct use.
func (h *AuthHandler) VerifyCode(c echo.Context) error {
	var req verifyCodeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "email and 6-digit code are required")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	// Codes are single use, so the account check runs first: an unknown
	// address must not consume a still-valid code.
	if err := h.Users.EmailRegistered(ctx, req.Email); err != nil {
		return fail(c, err)
	}
	if err := h.Codes.Verify(ctx, req.Email, req.Code); err != nil {
		return fail(c, err)
	}
	if err := h.Users.MarkEmailVerified(ctx, req.Email); err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "email verified"})
}
