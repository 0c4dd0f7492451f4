// Package handler contains the echo handlers. Handlers stay thin: bind and
// validate the request, resolve the caller identity, call a service with a
// per-operation timeout, and translate the service error taxonomy to HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/edustack/tutor-platform/internal/model"
	"github.com/edustack/tutor-platform/internal/policy"
	"github.com/edustack/tutor-platform/internal/service"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// opTimeout bounds every store-touching operation; it surfaces as a
// retryable 503 when exceeded.
const opTimeout = 5 * time.Second

func opContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), opTimeout)
}

// respond writes the response envelope with the status duplicated into the
// body, matching the API contract {"status": <code>, ...}.
func respond(c echo.Context, status int, body echo.Map) error {
	if body == nil {
		body = echo.Map{}
	}
	body["status"] = status
	return c.JSON(status, body)
}

// fail maps the service error taxonomy onto HTTP status codes.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return respond(c, http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidReference):
		return respond(c, http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicate):
		return respond(c, http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return respond(c, http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUnavailable):
		return respond(c, http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	default:
		return respond(c, http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// callerFrom rebuilds the authenticated caller identity from the claims the
// JWT middleware stored in the context.
func callerFrom(c echo.Context) (policy.Caller, error) {
	id, err := ctxUint(c, "user_id")
	if err != nil || id == 0 {
		return policy.Caller{}, errors.New("invalid user_id in context")
	}
	role, _ := c.Get("role").(string)
	tenantID, _ := ctxUint(c, "tenant_id")
	return policy.Caller{ID: id, Role: model.Role(role), TenantID: tenantID}, nil
}

// ctxUint reads a numeric context value regardless of how the JWT library
// decoded it.
func ctxUint(c echo.Context, key string) (uint64, error) {
	switch t := c.Get(key).(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid numeric claim: " + key)
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func unauthorized(c echo.Context) error {
	return respond(c, http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

func badRequest(c echo.Context, msg string) error {
	return respond(c, http.StatusBadRequest, echo.Map{"error": msg})
}
