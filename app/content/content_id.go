package content

import (
	"bitwise74/usercontent-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type contentIDRequest struct {
	URL string `json:"url" form:"url"`
}

// ContentIDFetch resolves a public URL back to its content ID. GET reads the
// url query parameter, POST a JSON body
func ContentIDFetch(c *gin.Context, d *internal.Deps) {
	var req contentIDRequest
	if err := c.ShouldBind(&req); err != nil {
		badBody(c, err)
		return
	}

	id, err := d.Querier.ContentID(c.Request.Context(), req.URL)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}
