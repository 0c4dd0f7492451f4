package handler

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/edustack/tutor-platform/internal/service"
)

// UploadHandler accepts multipart file uploads and stores them through the
// configured object store.
type UploadHandler struct {
	Uploads *service.UploadService
}

// NewUploadHandler constructs an UploadHandler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{Uploads: uploads}
}

// Image handles POST /api/upload/image. The multipart field is named
// "image"; the stored key embeds a millisecond timestamp so repeated
// uploads of the same file never collide.
func (h *UploadHandler) Image(c echo.Context) error {
	if _, err := callerFrom(c); err != nil {
		return unauthorized(c)
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "image file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return badRequest(c, "unreadable upload")
	}
	defer src.Close()

	ctx, cancel := opContext(c)
	defer cancel()

	key, path, err := h.Uploads.Upload(ctx, filepath.Base(fh.Filename), src)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusCreated, echo.Map{
		"data": echo.Map{"key": key, "path": path},
	})
}
