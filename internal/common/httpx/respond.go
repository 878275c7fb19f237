package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teka/internal/domain"
)

// Error maps a domain failure onto its HTTP status and writes the standard
// problem body. Anything outside the taxonomy is a 500.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"

	switch {
	case domain.IsValidation(err):
		status, code = http.StatusBadRequest, "validation_failed"
	case domain.IsAuthorization(err):
		status, code = http.StatusForbidden, "forbidden"
	case domain.IsNotFound(err):
		status, code = http.StatusNotFound, "not_found"
	case domain.IsConflict(err):
		status, code = http.StatusConflict, "conflict"
	}

	c.JSON(status, gin.H{"error": code, "detail": err.Error()})
}
