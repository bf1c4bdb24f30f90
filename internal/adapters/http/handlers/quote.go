package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aqwal-app/aqwal/internal/adapters/http/dto"
	"github.com/aqwal-app/aqwal/internal/app"
	"github.com/aqwal-app/aqwal/internal/domain"
	"github.com/aqwal-app/aqwal/internal/ports"
)

// QuoteHandler handles the read-side quote endpoints: listing with
// substring search, single-quote lookup, share text, and poster export.
type QuoteHandler struct {
	service  *app.QuoteService
	renderer ports.PosterRenderer
	flags    ports.FeatureFlags
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService, renderer ports.PosterRenderer, flags ports.FeatureFlags) *QuoteHandler {
	return &QuoteHandler{
		service:  service,
		renderer: renderer,
		flags:    flags,
	}
}

// ListQuotes handles GET /api/v1/quotes
// Returns quotes newest first, filtered by the optional q parameter
// (case-sensitive substring over text and author) and capped by limit.
// Each request re-hydrates from the remote table when one is
// configured; a dead remote falls back to local state.
//
// @Summary List quotes
// @Tags quotes
// @Produce json
// @Param q query string false "Substring filter"
// @Param limit query int false "Maximum results (1-500)"
// @Success 200 {object} dto.QuoteListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var query dto.ListQuotesQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.HandleError(c, domain.NewValidationError("", err.Error()))
		return
	}

	ctx := c.Request.Context()

	if _, err := h.service.Load(ctx); err != nil {
		dto.HandleError(c, err)
		return
	}

	quotes := h.service.List(ctx, query.Q, query.GetLimit())

	c.JSON(http.StatusOK, dto.NewQuoteListResponse(quotes))
}

// GetQuote handles GET /api/v1/quotes/:id
//
// @Summary Get a quote by ID
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	quote, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// ShareQuote handles GET /api/v1/quotes/:id/share
// Returns the ready-to-copy share text for the quote.
//
// @Summary Get share text for a quote
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} dto.ShareResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id}/share [get]
func (h *QuoteHandler) ShareQuote(c *gin.Context) {
	text, err := h.service.Share(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ShareResponse{Text: text})
}

// PosterQuote handles GET /api/v1/quotes/:id/poster
// Renders the quote as a downloadable PNG poster.
//
// @Summary Render a quote poster
// @Tags quotes
// @Produce png
// @Param id path string true "Quote ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id}/poster [get]
func (h *QuoteHandler) PosterQuote(c *gin.Context) {
	ctx := c.Request.Context()

	if h.flags != nil && !h.flags.Enabled(ctx, ports.FlagPosterExport) {
		dto.HandleError(c, domain.NewForbiddenError("poster export", "feature is disabled"))
		return
	}

	quote, err := h.service.Get(ctx, c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	poster, err := h.renderer.Render(ctx, quote)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+poster.Filename+`"`)
	c.Data(http.StatusOK, "image/png", poster.PNG)
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.GET("/:id", h.GetQuote)
	quotes.GET("/:id/share", h.ShareQuote)
	quotes.GET("/:id/poster", h.PosterQuote)
}
