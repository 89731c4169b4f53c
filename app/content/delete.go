package content

import (
	"bitwise74/usercontent-api/internal"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type deleteRequest struct {
	Token string `json:"token" form:"token"`
	ID    uint   `json:"id" form:"id"`
}

func ContentDelete(c *gin.Context, d *internal.Deps) {
	var req deleteRequest
	if err := c.ShouldBind(&req); err != nil {
		badBody(c, err)
		return
	}

	if err := d.Deleter.One(c.Request.Context(), req.Token, req.ID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File deleted successfully",
	})
}

func ContentDeleteAll(c *gin.Context, d *internal.Deps) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		badBody(c, err)
		return
	}

	n, err := d.Deleter.All(c.Request.Context(), req.Token)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Deleted %d files", n),
		"deleted": n,
	})
}
