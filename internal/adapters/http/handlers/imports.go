package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aqwal-app/aqwal/internal/adapters/http/dto"
	"github.com/aqwal-app/aqwal/internal/app"
	"github.com/aqwal-app/aqwal/internal/domain"
)

// maxImportFileBytes caps uploaded import files at 5 MiB.
const maxImportFileBytes = 5 << 20

// AdminHandler handles the mutating admin endpoints: quote creation
// and the two-step bulk import workflow.
type AdminHandler struct {
	quotes  *app.QuoteService
	imports *app.ImportService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(quotes *app.QuoteService, imports *app.ImportService) *AdminHandler {
	return &AdminHandler{
		quotes:  quotes,
		imports: imports,
	}
}

// CreateQuote handles POST /api/v1/admin/quotes
//
// @Summary Add a quote
// @Tags admin
// @Accept json
// @Produce json
// @Param quote body dto.CreateQuoteRequest true "Quote to add"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/admin/quotes [post]
func (h *AdminHandler) CreateQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, domain.NewValidationError("", err.Error()))
		return
	}

	quote, err := h.quotes.Add(c.Request.Context(), req.Text, req.Author)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuoteResponse(quote))
}

// PreviewImport handles POST /api/v1/admin/imports
// Accepts a multipart upload (field "file") and stages the parsed
// candidates as a preview, replacing any existing one.
//
// @Summary Preview a bulk import file
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "JSON or CSV quote file"
// @Success 200 {object} dto.ImportSnapshotResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/admin/imports [post]
func (h *AdminHandler) PreviewImport(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		dto.HandleError(c, domain.NewValidationError("file", "a file upload is required"))
		return
	}

	if header.Size > maxImportFileBytes {
		dto.HandleError(c, domain.NewValidationError("file", "file is too large"))
		return
	}

	file, err := header.Open()
	if err != nil {
		dto.HandleError(c, domain.NewValidationError("file", "could not read upload"))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxImportFileBytes+1))
	if err != nil {
		dto.HandleError(c, domain.NewValidationError("file", "could not read upload"))
		return
	}

	snap, err := h.imports.Preview(c.Request.Context(), header.Filename, data)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewImportSnapshotResponse(snap))
}

// GetImport handles GET /api/v1/admin/imports
// Returns the current import workflow state.
//
// @Summary Get the staged import preview
// @Tags admin
// @Produce json
// @Success 200 {object} dto.ImportSnapshotResponse
// @Router /api/v1/admin/imports [get]
func (h *AdminHandler) GetImport(c *gin.Context) {
	snap := h.imports.Snapshot(c.Request.Context())

	c.JSON(http.StatusOK, dto.NewImportSnapshotResponse(snap))
}

// DiscardImport handles DELETE /api/v1/admin/imports
//
// @Summary Discard the staged import preview
// @Tags admin
// @Produce json
// @Success 204
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/admin/imports [delete]
func (h *AdminHandler) DiscardImport(c *gin.Context) {
	if err := h.imports.Discard(c.Request.Context()); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CommitImport handles POST /api/v1/admin/imports/commit
// Persists the staged preview as one batch.
//
// @Summary Commit the staged import preview
// @Tags admin
// @Produce json
// @Success 200 {object} dto.ImportCommitResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/admin/imports/commit [post]
func (h *AdminHandler) CommitImport(c *gin.Context) {
	report, err := h.imports.Commit(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewImportCommitResponse(report))
}

// RegisterAdminRoutes registers admin routes on the given router group.
func (h *AdminHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/quotes", h.CreateQuote)

	imports := rg.Group("/imports")
	imports.POST("", h.PreviewImport)
	imports.GET("", h.GetImport)
	imports.DELETE("", h.DiscardImport)
	imports.POST("/commit", h.CommitImport)
}
