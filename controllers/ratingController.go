package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/models"
)

func (ctl *Controller) CreateRating(c *gin.Context) {
	var body models.RatingCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if body.Situation_ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid situation ID is required"})
		return
	}
	if body.Stars < 1 || body.Stars > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stars must be a number between 1 and 5"})
		return
	}
	body.Comment = ratingComment(body.Comment)

	rating, err := ctl.store.CreateRating(c.Request.Context(), body)
	if errors.Is(err, apperrors.ErrNotFound) {
		respondNotFound(c, "Situation not found")
		return
	}
	if err != nil {
		ctl.respondError(c, err, "Failed to create rating")
		return
	}

	ctl.notifier.RatingCreated(rating)
	c.JSON(http.StatusCreated, rating)
}

// ratingComment cuts the comment to the stored limit. Blank comments are
// stored as NULL.
func ratingComment(comment *string) *string {
	if comment == nil || strings.TrimSpace(*comment) == "" {
		return nil
	}
	runes := []rune(*comment)
	if len(runes) > models.MaxRatingCommentLength {
		runes = runes[:models.MaxRatingCommentLength]
	}
	trimmed := string(runes)
	return &trimmed
}
