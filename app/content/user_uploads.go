package content

import (
	"bitwise74/usercontent-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	Token string `json:"token" form:"token"`
}

func UserUploadsFetch(c *gin.Context, d *internal.Deps) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		badBody(c, err)
		return
	}

	uploads, err := d.Querier.UserUploads(c.Request.Context(), req.Token)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, uploads)
}
