package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vehiclebooking/service-booking/pkg/domain"
)

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// BadRequest writes a 400 response with an error message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// Paginated writes a 200 response with items plus paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// Error maps a domain error to the appropriate HTTP status. Unclassified
// errors are treated as storage/infrastructure failures and reported as 500
// without leaking internals.
func Error(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	switch de.Kind {
	case domain.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": de.Message})
	case domain.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": de.Message})
	case domain.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": de.Message})
	case domain.KindInvalidState:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": de.Message})
	case domain.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": de.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
