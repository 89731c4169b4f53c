// Package content holds the handlers of the upload, lookup and deletion endpoints
package content

import (
	"bitwise74/usercontent-api/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByKind = []struct {
	kind   error
	status int
}{
	{service.ErrMissingField, http.StatusBadRequest},
	{service.ErrInvalidSession, http.StatusBadRequest},
	{service.ErrUnsupportedFileType, http.StatusBadRequest},
	{service.ErrFileTooLarge, http.StatusBadRequest},
	{service.ErrInvalidURL, http.StatusBadRequest},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrDisk, http.StatusInternalServerError},
	{service.ErrStat, http.StatusInternalServerError},
	{service.ErrDatabase, http.StatusInternalServerError},
}

// fail writes the error response for err. Server side failures only expose
// the error kind, the cause goes to the log
func fail(c *gin.Context, err error) {
	requestID := c.GetString("requestID")

	for _, k := range statusByKind {
		if !errors.Is(err, k.kind) {
			continue
		}

		msg := err.Error()
		if k.status >= http.StatusInternalServerError {
			msg = k.kind.Error()
			zap.L().Error("Request failed", zap.String("requestID", requestID), zap.Error(err))
		}

		c.JSON(k.status, gin.H{
			"error":     msg,
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":     "Internal server error",
		"requestID": requestID,
	})

	zap.L().Error("Unhandled error", zap.String("requestID", requestID), zap.Error(err))
}

// badBody reports a request body that couldn't be bound
func badBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":     service.ErrMissingField.Error() + ": malformed request body",
		"requestID": c.GetString("requestID"),
	})

	zap.L().Debug("Failed to bind request body", zap.String("requestID", c.GetString("requestID")), zap.Error(err))
}
