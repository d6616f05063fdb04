package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hawaiibiz/intel/internal/interfaces/http/dto"
)

// BodyLimit rejects bodies declared larger than maxBytes and caps the rest
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size", GetRequestID(c)))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
