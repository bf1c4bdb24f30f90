package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aqwal-app/aqwal/internal/domain"
)

// GetTraceID extracts a trace identifier for error responses.
// Prefers the trace_id set on the gin context, falling back to the
// inbound request ID header.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}

		return ""
	}

	return c.Request.Header.Get("X-Request-ID")
}

// HandleError writes a domain error as a JSON error envelope. Internal
// and unavailable errors get fixed messages so no internals leak.
func HandleError(c *gin.Context, err error) {
	traceID := GetTraceID(c)

	var resp *ErrorResponse

	status := http.StatusInternalServerError

	switch {
	case domain.IsNotFound(err):
		status = http.StatusNotFound
		resp = NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		status = http.StatusConflict
		resp = NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsParse(err):
		status = http.StatusBadRequest
		resp = NewErrorResponse(ErrorCodeParse, err.Error())

	case domain.IsValidation(err):
		status = http.StatusBadRequest
		resp = NewErrorResponse(ErrorCodeValidation, err.Error())

	case domain.IsForbidden(err):
		status = http.StatusForbidden
		resp = NewErrorResponse(ErrorCodeForbidden, err.Error())

	case domain.IsUnavailable(err):
		status = http.StatusServiceUnavailable
		resp = NewErrorResponse(ErrorCodeUnavailable, "service temporarily unavailable")

	default:
		resp = NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}

	c.JSON(status, resp.WithTraceID(traceID))
}
