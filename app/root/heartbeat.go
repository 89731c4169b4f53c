package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Index answers browsers landing on the bare API host
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "usercontent API: Access denied!",
	})
}
