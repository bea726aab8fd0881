package handler

import (
	"net/http"

	"wordrush/internal/service"
	"wordrush/shared/models"
	"wordrush/shared/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) leaderboardSummary(c *gin.Context) {
	limit := utils.ParseLimit(c.Query("limit"), service.DefaultSummaryLimit, service.MaxSummaryLimit)
	board, err := h.leaderboardService.Summary(c.Request.Context(), limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *Handler) typingLeaderboard(c *gin.Context) {
	level, err := models.ParseLevelOr(c.Query("level"), models.LevelEasy)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	limit := utils.ParseLimit(c.Query("limit"), service.DefaultTypingLimit, service.MaxTypingLimit)
	rows, err := h.leaderboardService.Typing(c.Request.Context(), level, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rankedBestsResponse{Data: rows})
}

func (h *Handler) leaderboardFeed(c *gin.Context) {
	h.feed.ServeWS(c.Writer, c.Request)
}
