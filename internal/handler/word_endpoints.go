package handler

import (
	"errors"
	"io"
	"net/http"

	"wordrush/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxImportBytes = 5 << 20

func (h *Handler) listWords(c *gin.Context) {
	var level *models.Level
	if raw := c.Query("level"); raw != "" {
		l, err := models.ParseLevel(raw)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		level = &l
	}
	words, err := h.wordService.List(c.Request.Context(), level)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, words)
}

func (h *Handler) randomWord(c *gin.Context) {
	level, err := models.ParseLevelOr(c.Query("level"), models.LevelEasy)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	word, err := h.wordService.Random(c.Request.Context(), level)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, word)
}

func (h *Handler) createWord(c *gin.Context) {
	var req createWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "term and level are required")
		return
	}
	word, err := h.wordService.Create(c.Request.Context(), models.WordInput{
		Term:  req.Term,
		Level: models.Level(req.Level),
		Hint:  req.Hint,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, word)
}

func (h *Handler) deleteWord(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleServiceError(c, models.ErrWordNotFound)
		return
	}
	if err := h.wordService.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, okResponse{OK: true})
}

func (h *Handler) seedWords(c *gin.Context) {
	var req seedWordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "Invalid payload")
		return
	}
	inserted, err := h.wordService.Seed(c.Request.Context(), req.Items)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, insertedResponse{Inserted: inserted})
}

// importWords takes the raw CSV/TSV file as the request body.
func (h *Handler) importWords(c *gin.Context) {
	level, err := models.ParseLevelOr(c.Query("level"), models.LevelEasy)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
				Code: models.ErrCodeBadRequest, Message: "Import file is too large",
			})
			return
		}
		abortBadRequest(c, "Could not read request body")
		return
	}

	summary, err := h.wordService.Import(c.Request.Context(), body, c.Query("filename"), level)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
