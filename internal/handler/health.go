package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports process liveness.
func Health(c echo.Context) error {
	return respond(c, http.StatusOK, echo.Map{"message": "ok"})
}
