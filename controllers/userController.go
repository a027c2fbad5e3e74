package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/middlewares"
	"github.com/WWJD/models"
	"github.com/WWJD/services"
)

type googleSignInRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// GoogleSignIn exchanges a Google ID token for a session token, creating
// the user on first sign-in.
func (ctl *Controller) GoogleSignIn(c *gin.Context) {
	var body googleSignInRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "idToken is required"})
		return
	}

	signIn, err := ctl.verifier.Verify(c.Request.Context(), body.IDToken)
	if errors.Is(err, services.ErrGoogleSignInDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google sign-in is not configured"})
		return
	}
	if errors.Is(err, apperrors.ErrAuthRequired) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google credentials"})
		return
	}
	if err != nil {
		ctl.respondError(c, err, "Failed to sign in")
		return
	}

	user, err := ctl.store.UpsertUser(c.Request.Context(), signIn)
	if err != nil {
		ctl.respondError(c, err, "Failed to sign in")
		return
	}

	token, err := middlewares.NewSessionToken(ctl.secret, user.User_Profile_ID, middlewares.SessionTTL)
	if err != nil {
		ctl.respondError(c, err, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User signed in successfully.",
		"token":   token,
		"user":    user,
	})
}

func (ctl *Controller) GetUserProfile(c *gin.Context) {
	user, ok := ctl.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ctl *Controller) StorePushToken(c *gin.Context) {
	user, ok := ctl.currentUser(c)
	if !ok {
		return
	}

	var body models.PushTokenRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pushToken and platform (web, ios or android) are required"})
		return
	}

	if err := ctl.store.UpsertPushToken(c.Request.Context(), user.User_Profile_ID, body); err != nil {
		ctl.respondError(c, err, "Failed to store push token")
		return
	}

	ctl.notifier.PushTokenRegistered(user.User_Profile_ID, body.PushToken)
	c.JSON(http.StatusOK, gin.H{"message": "Push token stored successfully"})
}

func (ctl *Controller) GetSettings(c *gin.Context) {
	user, ok := ctl.currentUser(c)
	if !ok {
		return
	}

	settings, err := ctl.store.GetSettings(c.Request.Context(), user.User_Profile_ID)
	if err != nil {
		ctl.respondError(c, err, "Failed to fetch settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings applies only the fields present in the body.
func (ctl *Controller) UpdateSettings(c *gin.Context) {
	user, ok := ctl.currentUser(c)
	if !ok {
		return
	}

	var body models.SettingsUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if body.Digest_Frequency != nil && !models.ValidDigestFrequency(*body.Digest_Frequency) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "digest_frequency must be one of daily, weekly, monthly"})
		return
	}

	settings, err := ctl.store.UpdateSettings(c.Request.Context(), user.User_Profile_ID, body)
	if err != nil {
		ctl.respondError(c, err, "Failed to update settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
