package controllers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/models"
)

func (ctl *Controller) GetPrayerWall(c *gin.Context) {
	limit, err := parsePositive(c.Query("limit"), "limit", models.DefaultPrayerWallLimit, models.MaxPrayerWallLimit)
	if err != nil {
		ctl.respondError(c, err, "Failed to fetch prayer requests")
		return
	}

	requests, err := ctl.store.PrayerWall(c.Request.Context(), limit)
	if err != nil {
		ctl.respondError(c, err, "Failed to fetch prayer requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// CreatePrayerRequest posts to the prayer wall. The text goes through
// moderation first; blocked requests are answered with guidance and not
// stored.
func (ctl *Controller) CreatePrayerRequest(c *gin.Context) {
	user, ok := ctl.currentUser(c)
	if !ok {
		return
	}

	var body models.PrayerRequestCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request required"})
		return
	}
	body.Request = strings.TrimSpace(body.Request)
	if body.Request == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request required"})
		return
	}
	if utf8.RuneCountInString(body.Request) > models.MaxPrayerRequestLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request must be at most 500 characters"})
		return
	}

	moderation, err := ctl.moderator.Moderate(c.Request.Context(), body.Request)
	if err != nil {
		ctl.respondError(c, err, "Failed to create prayer request")
		return
	}
	if !moderation.Allowed {
		c.JSON(http.StatusOK, gin.H{
			"success":   false,
			"moderated": true,
			"category":  moderation.Category,
			"response":  moderation.Guidance,
		})
		return
	}

	created, err := ctl.store.CreatePrayerRequest(c.Request.Context(), user.User_Profile_ID, body)
	if errors.Is(err, apperrors.ErrNotFound) {
		respondNotFound(c, "Situation not found")
		return
	}
	if err != nil {
		ctl.respondError(c, err, "Failed to create prayer request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": created.Prayer_Request_ID, "success": true})
}

// Pray records one prayer for a request. No session is needed.
func (ctl *Controller) Pray(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	result, err := ctl.store.Pray(c.Request.Context(), id)
	if errors.Is(err, apperrors.ErrNotFound) {
		respondNotFound(c, "Prayer request not found")
		return
	}
	if err != nil {
		ctl.respondError(c, err, "Failed to record prayer")
		return
	}

	ctl.notifier.Prayed(id, result)
	c.JSON(http.StatusOK, gin.H{"success": true, "prayerCount": result.Prayer_Count})
}

// ClosePrayerRequest takes the caller's own request off the wall.
func (ctl *Controller) ClosePrayerRequest(c *gin.Context) {
	user, ok := ctl.currentUser(c)
	if !ok {
		return
	}

	id, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	err = ctl.store.ClosePrayerRequest(c.Request.Context(), id, user.User_Profile_ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		respondNotFound(c, "Prayer request not found")
		return
	}
	if err != nil {
		ctl.respondError(c, err, "Failed to close prayer request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
