package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// EndpointsHandler exposes the live health snapshot of the node pool.
func EndpointsHandler(c *gin.Context) {
	r := &Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    nodeSelector.Snapshot(),
	}

	c.JSON(http.StatusOK, r)
}
