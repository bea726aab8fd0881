package handler

import (
	"net/http"

	"wordrush/shared/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getBest(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	level, err := models.ParseLevelOr(c.Query("level"), models.LevelEasy)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	best, err := h.scoreService.GetBest(c.Request.Context(), userID, level)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, best)
}

func (h *Handler) getAllBests(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	bests, err := h.scoreService.GetAll(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, bests)
}

func (h *Handler) submitBest(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	var req submitBestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrInvalidScore)
		return
	}
	level, err := models.ParseLevel(req.Level)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	best, err := h.scoreService.SubmitBest(c.Request.Context(), userID, level, *req.Score)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, best)
}
