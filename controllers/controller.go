package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/logger"
	"github.com/WWJD/middlewares"
	"github.com/WWJD/models"
	"github.com/WWJD/services"
	"github.com/WWJD/store"
)

type Submitter interface {
	Submit(ctx context.Context, text string) (models.Submission, error)
}

type ContentModerator interface {
	Moderate(ctx context.Context, text string) (services.ModerationResult, error)
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (models.UserProfileSignIn, error)
}

// Notifier receives the events that fan out push and email notifications.
// Every method returns immediately.
type Notifier interface {
	RatingCreated(rating models.Rating)
	Prayed(prayerRequestID int, result models.PrayedResult)
	TopicFollowed(userID int, topic string)
	TopicUnfollowed(userID int, topic string)
	PushTokenRegistered(userID int, token string)
}

type Controller struct {
	store       *store.Store
	submissions Submitter
	moderator   ContentModerator
	verifier    TokenVerifier
	notifier    Notifier
	secret      string
	log         *logger.Logger
}

type Deps struct {
	Store       *store.Store
	Submissions Submitter
	Moderator   ContentModerator
	Verifier    TokenVerifier
	Notifier    Notifier
	Secret      string
	Log         *logger.Logger
}

func New(deps Deps) *Controller {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &Controller{
		store:       deps.Store,
		submissions: deps.Submissions,
		moderator:   deps.Moderator,
		verifier:    deps.Verifier,
		notifier:    deps.Notifier,
		secret:      deps.Secret,
		log:         deps.Log,
	}
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// respondError writes err with the status apperrors.Status assigns to it.
// Validation messages are returned as is; anything unexpected is logged and
// answered with message.
func (ctl *Controller) respondError(c *gin.Context, err error, message string) {
	status := apperrors.Status(err)

	var validation *apperrors.ValidationError
	if errors.As(err, &validation) {
		c.JSON(status, gin.H{"error": validation.Message})
		return
	}

	switch status {
	case http.StatusUnauthorized:
		c.JSON(status, gin.H{"error": "Unauthorized"})
	case http.StatusForbidden:
		c.JSON(status, gin.H{"error": "You are not allowed to modify this resource"})
	case http.StatusNotFound:
		c.JSON(status, gin.H{"error": "Not found"})
	default:
		_ = c.Error(err)
		ctl.log.Error(message, "error", err, "request_id", middlewares.RequestID(c), "path", c.FullPath())
		c.JSON(status, gin.H{"error": message})
	}
}

func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"error": message})
}

func (ctl *Controller) currentUser(c *gin.Context) (models.UserProfile, bool) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return user, ok
}

func parseID(c *gin.Context, param string) (int, error) {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil || id <= 0 {
		return 0, apperrors.Invalid(param, "invalid %s", param)
	}
	return id, nil
}

func parsePositive(raw, field string, fallback, max int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperrors.Invalid(field, "%s must be a positive integer", field)
	}
	if max > 0 && n > max {
		return 0, apperrors.Invalid(field, "%s must be at most %d", field, max)
	}
	return n, nil
}

// parseListParams reads q, page, pageSize and sort from the query string.
func parseListParams(c *gin.Context) (models.ListParams, error) {
	page, err := parsePositive(c.Query("page"), "page", 1, 0)
	if err != nil {
		return models.ListParams{}, err
	}
	pageSize, err := parsePositive(c.Query("pageSize"), "pageSize", models.DefaultPageSize, models.MaxPageSize)
	if err != nil {
		return models.ListParams{}, err
	}

	sort := models.SortRecent
	if raw := c.Query("sort"); raw != "" {
		sort = models.SortOrder(raw)
		if !sort.Valid() {
			return models.ListParams{}, apperrors.Invalid("sort", "sort must be one of recent, top_rated, most_rated")
		}
	}

	return models.ListParams{
		Page:     page,
		PageSize: pageSize,
		Sort:     sort,
		Query:    strings.TrimSpace(c.Query("q")),
	}, nil
}
