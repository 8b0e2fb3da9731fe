package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"qms-rag-core/internal/domain"
)

// corsMiddleware mirrors the teacher's permissive CORS handling verbatim in
// shape: allow any origin, the usual verbs, and short-circuit preflight
// OPTIONS requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// statusForError maps the domain error taxonomy (spec.md §7) onto HTTP
// status codes.
func statusForError(err error) int {
	var validation *domain.ValidationError
	var notFound *domain.NotFoundError
	var deadline *domain.DeadlineExceededError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &deadline):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes the {error, detail, timestamp} envelope at the status
// the error taxonomy maps to.
func writeError(c *gin.Context, summary string, err error) {
	c.JSON(statusForError(err), newErrorResponse(summary, err))
}
