package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h ApiHandler) listAssets(c *gin.Context) {
	c.JSON(200, h.Collector.Assets(c.Request.Context(), c.Query("q")))
}

func (h ApiHandler) searchAssets(c *gin.Context) {
	assets, err := h.Collector.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, assets)
}

func (h ApiHandler) estimate(c *gin.Context) {
	period, err := h.parsePeriod(c.Query("period"))
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid period: %w", err), c, http.StatusBadRequest)
		return
	}

	ctx := c.Request.Context()
	snap, err := h.Collector.Snapshot(ctx, h.resolveAsset(ctx, c.Param("id")), period)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, snap)
}
