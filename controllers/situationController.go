package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/models"
	"github.com/WWJD/services"
)

func (ctl *Controller) ListSituations(c *gin.Context) {
	params, err := parseListParams(c)
	if err != nil {
		ctl.respondError(c, err, "Failed to fetch situations")
		return
	}

	page, err := ctl.store.ListSituations(c.Request.Context(), params)
	if err != nil {
		ctl.respondError(c, err, "Failed to fetch situations")
		return
	}

	c.JSON(http.StatusOK, page)
}

// CreateSituation runs a submission. A newly stored situation answers 201;
// matched and blocked submissions answer 200.
func (ctl *Controller) CreateSituation(c *gin.Context) {
	var body models.SituationCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	submission, err := ctl.submissions.Submit(c.Request.Context(), body.Situation)
	if err != nil {
		ctl.respondError(c, err, "Failed to process situation")
		return
	}

	status := http.StatusOK
	if submission.Outcome == models.OutcomePersisted {
		status = http.StatusCreated
	}
	c.JSON(status, submission)
}

func (ctl *Controller) GetSituation(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		ctl.respondError(c, err, "Invalid situation ID")
		return
	}

	situation, err := ctl.store.GetSituation(c.Request.Context(), id)
	if errors.Is(err, apperrors.ErrNotFound) {
		respondNotFound(c, "Situation not found")
		return
	}
	if err != nil {
		ctl.respondError(c, err, "Failed to fetch situation")
		return
	}

	c.JSON(http.StatusOK, situation)
}

// GetRelatedSituations searches with the first significant word of the
// situation's text and returns a few other matches.
func (ctl *Controller) GetRelatedSituations(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		ctl.respondError(c, err, "Invalid situation ID")
		return
	}

	situation, err := ctl.store.GetSituation(c.Request.Context(), id)
	if errors.Is(err, apperrors.ErrNotFound) {
		respondNotFound(c, "Situation not found")
		return
	}
	if err != nil {
		ctl.respondError(c, err, "Failed to fetch situation")
		return
	}

	related := []models.Situation{}
	if keyword := services.RelatedKeyword(situation.Situation_Text); keyword != "" {
		related, err = ctl.store.RelatedSituations(c.Request.Context(), id, keyword, services.MaxRelatedSituations)
		if err != nil {
			ctl.respondError(c, err, "Failed to fetch related guidance")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"situations": related})
}

func (ctl *Controller) GetSituationRatings(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		ctl.respondError(c, err, "Invalid situation ID")
		return
	}

	ratings, err := ctl.store.ListRatings(c.Request.Context(), id)
	if err != nil {
		ctl.respondError(c, err, "Failed to fetch ratings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}
