package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edustack/tutor-platform/internal/repository"
	"github.com/edustack/tutor-platform/internal/service"
)

// DocumentHandler exposes document operations under /api/documents.
type DocumentHandler struct {
	Docs *service.DocumentService
}

// NewDocumentHandler constructs a DocumentHandler.
func NewDocumentHandler(docs *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Docs: docs}
}

type createDocumentReq struct {
	Title      string `json:"title" validate:"required,min=1,max=255"`
	DocTypeID  uint64 `json:"doc_type_id" validate:"required"`
	Brief      string `json:"brief" validate:"required"`
	URL        string `json:"url" validate:"omitempty,url"`
	StorageKey string `json:"storage_key"`
}

type updateDocumentReq struct {
	Title      *string `json:"title" validate:"omitempty,min=1,max=255"`
	DocTypeID  *uint64 `json:"doc_type_id"`
	Brief      *string `json:"brief"`
	URL        *string `json:"url" validate:"omitempty,url"`
	StorageKey *string `json:"storage_key"`
}

// Create handles POST /api/documents.
func (h *DocumentHandler) Create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	var req createDocumentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "title, doc_type_id and brief are required")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	d, err := h.Docs.CreateDocument(ctx, caller, service.CreateDocumentInput{
		Title:      req.Title,
		DocTypeID:  req.DocTypeID,
		Brief:      req.Brief,
		URL:        req.URL,
		StorageKey: req.StorageKey,
	})
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusCreated, echo.Map{"data": d, "message": "document created successfully"})
}

// List handles GET /api/documents, scoped to the caller.
func (h *DocumentHandler) List(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := opContext(c)
	defer cancel()

	out, err := h.Docs.ListDocuments(ctx, caller)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": out})
}

// Get handles GET /api/documents/:id, scoped to the caller.
func (h *DocumentHandler) Get(c echo.Context) error {
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

	d, err := h.Docs.GetDocumentByID(ctx, caller, id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": d})
}

// Update handles PUT /api/documents/:id (admin correction path).
func (h *DocumentHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var req updateDocumentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "invalid fields")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	d, err := h.Docs.UpdateDocument(ctx, id, repository.DocumentPatch{
		Title:      req.Title,
		DocTypeID:  req.DocTypeID,
		Brief:      req.Brief,
		URL:        req.URL,
		StorageKey: req.StorageKey,
	})
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": d, "message": "document updated successfully"})
}

// Delete handles DELETE /api/documents/:id (admin correction path).
func (h *DocumentHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	if err := h.Docs.DeleteDocument(ctx, id); err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "document deleted successfully"})
}

// Types handles GET /api/documents/types.
func (h *DocumentHandler) Types(c echo.Context) error {
	ctx, cancel := opContext(c)
	defer cancel()

	out, err := h.Docs.ListDocumentTypes(ctx)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"data": out})
}
