package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"DebtVsDCA/internal/model"

	"github.com/gin-gonic/gin"
)

type sessionRequest struct {
	Asset  *string `json:"asset"`
	Period *string `json:"period"`
}

func (h ApiHandler) createSession(c *gin.Context) {
	var requestBody sessionRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil && !errors.Is(err, io.EOF) {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, http.StatusBadRequest)
		return
	}

	period, err := h.parsePeriod(deref(requestBody.Period))
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid period: %w", err), c, http.StatusBadRequest)
		return
	}
	var asset model.Asset
	if id := deref(requestBody.Asset); id != "" {
		asset = h.resolveAsset(c.Request.Context(), id)
	}

	c.JSON(http.StatusCreated, h.Sessions.Create(asset, period))
}

func (h ApiHandler) listSessions(c *gin.Context) {
	c.JSON(200, h.Sessions.List())
}

func (h ApiHandler) getSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	sess, err := h.Sessions.Get(id)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, sess)
}

func (h ApiHandler) updateSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	var requestBody sessionRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, http.StatusBadRequest)
		return
	}

	sess, err := h.Sessions.Get(id)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	if requestBody.Period != nil {
		period, err := model.ParsePeriod(*requestBody.Period)
		if err != nil {
			returnErrorJsonCode(fmt.Errorf("invalid period: %w", err), c, http.StatusBadRequest)
			return
		}
		if sess, err = h.Sessions.SetPeriod(id, period); err != nil {
			returnErrorJson(err, c)
			return
		}
	}
	if requestBody.Asset != nil {
		asset := h.resolveAsset(c.Request.Context(), *requestBody.Asset)
		if sess, err = h.Sessions.SelectAsset(id, asset); err != nil {
			returnErrorJson(err, c)
			return
		}
	}
	c.JSON(200, sess)
}

func (h ApiHandler) deleteSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	if err := h.Sessions.Delete(id); err != nil {
		returnErrorJson(err, c)
		return
	}
	c.Status(http.StatusNoContent)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
