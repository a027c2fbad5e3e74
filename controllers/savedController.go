package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/models"
)

// GetSaved lists the user's saved guidance, or with ?situationId reports
// whether that one situation is saved.
func (ctl *Controller) GetSaved(c *gin.Context) {
	user, ok := ctl.currentUser(c)
	if !ok {
		return
	}

	if raw := c.Query("situationId"); raw != "" {
		situationID, err := strconv.Atoi(raw)
		if err != nil || situationID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid situation ID is required"})
			return
		}
		saved, err := ctl.store.IsSaved(c.Request.Context(), user.User_Profile_ID, situationID)
		if err != nil {
			ctl.respondError(c, err, "Failed to check saved status")
			return
		}
		c.JSON(http.StatusOK, gin.H{"saved": saved})
		return
	}

	saved, err := ctl.store.ListSaved(c.Request.Context(), user.User_Profile_ID)
	if err != nil {
		ctl.respondError(c, err, "Failed to fetch saved guidance")
		return
	}

	c.JSON(http.StatusOK, gin.H{"situations": saved})
}

func bindSavedRequest(c *gin.Context) (models.SavedGuidanceRequest, bool) {
	var body models.SavedGuidanceRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Situation_ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid situation ID is required"})
		return body, false
	}
	return body, true
}

func (ctl *Controller) SaveGuidance(c *gin.Context) {
	user, ok := ctl.currentUser(c)
	if !ok {
		return
	}
	body, ok := bindSavedRequest(c)
	if !ok {
		return
	}

	err := ctl.store.Save(c.Request.Context(), user.User_Profile_ID, body.Situation_ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		respondNotFound(c, "Situation not found")
		return
	}
	if err != nil {
		ctl.respondError(c, err, "Failed to save guidance")
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": true})
}

func (ctl *Controller) UnsaveGuidance(c *gin.Context) {
	user, ok := ctl.currentUser(c)
	if !ok {
		return
	}
	body, ok := bindSavedRequest(c)
	if !ok {
		return
	}

	if err := ctl.store.Unsave(c.Request.Context(), user.User_Profile_ID, body.Situation_ID); err != nil {
		ctl.respondError(c, err, "Failed to remove saved guidance")
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": false})
}
