package controllers

import (
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/WWJD/models"
)

func (ctl *Controller) GetTopics(c *gin.Context) {
	user, ok := ctl.currentUser(c)
	if !ok {
		return
	}

	topics, err := ctl.store.ListTopics(c.Request.Context(), user.User_Profile_ID)
	if err != nil {
		ctl.respondError(c, err, "Failed to fetch topics")
		return
	}

	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

func bindTopic(c *gin.Context) (string, bool) {
	var body models.TopicRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
		return "", false
	}
	topic := models.NormalizeTopic(body.Topic)
	if topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
		return "", false
	}
	if utf8.RuneCountInString(topic) > models.MaxTopicLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic must be at most 50 characters"})
		return "", false
	}
	return topic, true
}

func (ctl *Controller) FollowTopic(c *gin.Context) {
	user, ok := ctl.currentUser(c)
	if !ok {
		return
	}
	topic, ok := bindTopic(c)
	if !ok {
		return
	}

	if err := ctl.store.Follow(c.Request.Context(), user.User_Profile_ID, topic); err != nil {
		ctl.respondError(c, err, "Failed to follow topic")
		return
	}

	ctl.notifier.TopicFollowed(user.User_Profile_ID, topic)
	c.JSON(http.StatusOK, gin.H{"following": true})
}

func (ctl *Controller) UnfollowTopic(c *gin.Context) {
	user, ok := ctl.currentUser(c)
	if !ok {
		return
	}
	topic, ok := bindTopic(c)
	if !ok {
		return
	}

	if err := ctl.store.Unfollow(c.Request.Context(), user.User_Profile_ID, topic); err != nil {
		ctl.respondError(c, err, "Failed to unfollow topic")
		return
	}

	ctl.notifier.TopicUnfollowed(user.User_Profile_ID, topic)
	c.JSON(http.StatusOK, gin.H{"following": false})
}

// GetTopicFeed pages through situations tagged with any followed topic.
func (ctl *Controller) GetTopicFeed(c *gin.Context) {
	user, ok := ctl.currentUser(c)
	if !ok {
		return
	}

	params, err := parseListParams(c)
	if err != nil {
		ctl.respondError(c, err, "Failed to fetch topic feed")
		return
	}

	page, err := ctl.store.TopicFeed(c.Request.Context(), user.User_Profile_ID, params)
	if err != nil {
		ctl.respondError(c, err, "Failed to fetch topic feed")
		return
	}

	c.JSON(http.StatusOK, page)
}
