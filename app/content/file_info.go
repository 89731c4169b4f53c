package content

import (
	"bitwise74/usercontent-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type fileInfoRequest struct {
	ID uint `json:"id" form:"id"`
}

func FileInfoFetch(c *gin.Context, d *internal.Deps) {
	var req fileInfoRequest
	if err := c.ShouldBind(&req); err != nil {
		badBody(c, err)
		return
	}

	info, err := d.Querier.FileInfo(c.Request.Context(), req.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}
