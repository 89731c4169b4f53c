package content

import (
	"bitwise74/usercontent-api/internal"
	"bitwise74/usercontent-api/internal/service"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func ContentUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	fh, err := c.FormFile("file")
	if err != nil {
		// Let the body size limiter answer
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Error(err)
			return
		}

		if !errors.Is(err, http.ErrMissingFile) {
			zap.L().Debug("Failed to read multipart file", zap.String("requestID", requestID), zap.Error(err))
		}

		fail(c, fmt.Errorf("%w: token, type and file are required", service.ErrMissingField))
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, fmt.Errorf("%w: failed to open multipart file, %w", service.ErrDisk, err))
		return
	}
	defer f.Close()

	res, err := d.Uploader.Do(c.Request.Context(), service.UploadInput{
		Token:    c.PostForm("token"),
		Type:     c.PostForm("type"),
		Filename: fh.Filename,
		Body:     f,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.Set("userID", res.UserID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "File uploaded successfully",
		"id":      res.ID,
		"url":     res.URL,
	})
}
