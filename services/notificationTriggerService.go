package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/WWJD/logger"
	"github.com/WWJD/models"
)

const (
	NotificationPrayedFor = "PRAYED_FOR"

	prayedForDebounce   = time.Hour
	notificationTimeout = 30 * time.Second
)

type NotificationStore interface {
	GetUser(ctx context.Context, userID int) (models.UserProfile, error)
	PushTokens(ctx context.Context, userIDs ...int) ([]string, error)
	DeletePushTokens(ctx context.Context, tokens []string) error
	RatingSubscribers(ctx context.Context, situationID int) ([]int, error)
	ShouldNotify(ctx context.Context, kind string, userID, entityID int, window time.Duration) (bool, error)
	ListTopics(ctx context.Context, userID int) ([]string, error)
}

type PushSender interface {
	Enabled() bool
	SendToTokens(ctx context.Context, tokens []string, payload NotificationPayload) ([]string, error)
	SendToTopic(ctx context.Context, topic string, payload NotificationPayload) error
	SubscribeToTopic(ctx context.Context, tokens []string, topic string) error
	UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) error
}

type EmailSender interface {
	Enabled() bool
	SendPrayedForEmail(ctx context.Context, user models.UserProfile, result models.PrayedResult) error
	SendDigestEmail(ctx context.Context, user models.UserProfile, situations []models.Situation) error
}

// NotificationTriggerService fans out best-effort notifications on
// background goroutines. Wait blocks until all of them are done.
type NotificationTriggerService struct {
	store   NotificationStore
	push    PushSender
	email   EmailSender
	siteURL string
	log     *logger.Logger
	wg      sync.WaitGroup
}

func NewNotificationTriggerService(store NotificationStore, push PushSender, email EmailSender, siteURL string, log *logger.Logger) *NotificationTriggerService {
	return &NotificationTriggerService{
		store:   store,
		push:    push,
		email:   email,
		siteURL: siteURL,
		log:     log.With("service", "NotificationTriggerService"),
	}
}

func (n *NotificationTriggerService) Wait() {
	n.wg.Wait()
}

func (n *NotificationTriggerService) run(name string, fn func(ctx context.Context) error) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()
		if err := fn(ctx); err != nil && !errors.Is(err, ErrPushDisabled) && !errors.Is(err, ErrEmailDisabled) {
			n.log.Error("Notification failed", "trigger", name, "error", err)
		}
	}()
}

func (n *NotificationTriggerService) situationLink(id int) string {
	return fmt.Sprintf("%s/situation/%d", n.siteURL, id)
}

// SituationCreated pushes the new situation to the topic of each of its tags.
func (n *NotificationTriggerService) SituationCreated(situation models.Situation) {
	if !n.push.Enabled() || len(situation.Tags) == 0 {
		return
	}
	n.run("situation_created", func(ctx context.Context) error {
		payload := NotificationPayload{
			Title: "New guidance on a topic you follow",
			Body:  truncate(situation.Situation_Text, 120),
			Data:  map[string]string{"situationId": strconv.Itoa(situation.Situation_ID)},
			Link:  n.situationLink(situation.Situation_ID),
		}
		var errs []error
		for _, tag := range situation.Tags {
			if err := n.push.SendToTopic(ctx, TopicName(tag), payload); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// RatingCreated notifies users who saved the rated situation.
func (n *NotificationTriggerService) RatingCreated(rating models.Rating) {
	if !n.push.Enabled() {
		return
	}
	n.run("rating_created", func(ctx context.Context) error {
		userIDs, err := n.store.RatingSubscribers(ctx, rating.Situation_ID)
		if err != nil || len(userIDs) == 0 {
			return err
		}
		tokens, err := n.store.PushTokens(ctx, userIDs...)
		if err != nil {
			return err
		}
		return n.sendToTokens(ctx, tokens, NotificationPayload{
			Title: "Guidance you saved was rated",
			Body:  fmt.Sprintf("Someone rated it %d out of 5.", rating.Stars),
			Data:  map[string]string{"situationId": strconv.Itoa(rating.Situation_ID)},
			Link:  n.situationLink(rating.Situation_ID),
		})
	})
}

// Prayed tells the owner of a prayer request that someone prayed for it, at
// most once per request per debounce window.
func (n *NotificationTriggerService) Prayed(prayerRequestID int, result models.PrayedResult) {
	if !n.push.Enabled() && !n.email.Enabled() {
		return
	}
	n.run("prayed_for", func(ctx context.Context) error {
		owner, err := n.store.GetUser(ctx, result.User_Profile_ID)
		if err != nil {
			return err
		}
		if !owner.Notify_Prayers {
			return nil
		}
		send, err := n.store.ShouldNotify(ctx, NotificationPrayedFor, owner.User_Profile_ID, prayerRequestID, prayedForDebounce)
		if err != nil || !send {
			return err
		}

		var errs []error
		if n.push.Enabled() {
			tokens, err := n.store.PushTokens(ctx, owner.User_Profile_ID)
			if err != nil {
				errs = append(errs, err)
			} else {
				errs = append(errs, n.sendToTokens(ctx, tokens, NotificationPayload{
					Title: "Someone prayed for you",
					Body:  truncate(result.Request_Text, 120),
					Data:  map[string]string{"prayerRequestId": strconv.Itoa(prayerRequestID)},
					Link:  n.siteURL + "/prayer-requests",
				}))
			}
		}
		if n.email.Enabled() {
			errs = append(errs, n.email.SendPrayedForEmail(ctx, owner, result))
		}
		return errors.Join(errs...)
	})
}

// TopicFollowed subscribes the user's devices to the topic.
func (n *NotificationTriggerService) TopicFollowed(userID int, topic string) {
	n.manageTopic("topic_followed", userID, topic, n.push.SubscribeToTopic)
}

// TopicUnfollowed unsubscribes the user's devices from the topic.
func (n *NotificationTriggerService) TopicUnfollowed(userID int, topic string) {
	n.manageTopic("topic_unfollowed", userID, topic, n.push.UnsubscribeFromTopic)
}

// PushTokenRegistered subscribes a newly registered device to every topic
// the user already follows.
func (n *NotificationTriggerService) PushTokenRegistered(userID int, token string) {
	if !n.push.Enabled() {
		return
	}
	n.run("push_token_registered", func(ctx context.Context) error {
		topics, err := n.store.ListTopics(ctx, userID)
		if err != nil {
			return err
		}
		var errs []error
		for _, topic := range topics {
			errs = append(errs, n.push.SubscribeToTopic(ctx, []string{token}, TopicName(topic)))
		}
		return errors.Join(errs...)
	})
}

func (n *NotificationTriggerService) manageTopic(name string, userID int, topic string, fn func(context.Context, []string, string) error) {
	if !n.push.Enabled() {
		return
	}
	n.run(name, func(ctx context.Context) error {
		tokens, err := n.store.PushTokens(ctx, userID)
		if err != nil || len(tokens) == 0 {
			return err
		}
		return fn(ctx, tokens, TopicName(topic))
	})
}

func (n *NotificationTriggerService) sendToTokens(ctx context.Context, tokens []string, payload NotificationPayload) error {
	if len(tokens) == 0 {
		return nil
	}
	stale, err := n.push.SendToTokens(ctx, tokens, payload)
	if len(stale) > 0 {
		if delErr := n.store.DeletePushTokens(ctx, stale); delErr != nil {
			n.log.Warn("Failed to delete stale push tokens", "error", delErr)
		}
	}
	return err
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
