package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const bodyTooLarge = "file too large: request body size exceeds limit"

// BodySizeLimiter caps the request body at maxBytes and answers oversized requests
// with 400 like any other rejected upload. Handlers reading past the limit get an
// *http.MaxBytesError they are expected to push into c.Errors
func BodySizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fast reject for legit requests
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     bodyTooLarge,
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()

		if last := c.Errors.Last(); last != nil && !c.Writer.Written() {
			var tooLarge *http.MaxBytesError
			if errors.As(last.Err, &tooLarge) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     bodyTooLarge,
					"requestID": c.GetString("requestID"),
				})
			}
		}
	}
}
