package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/WWJD/logger"
)

var ErrPushDisabled = errors.New("push notifications are not configured")

// maxTokensPerBatch is the FCM limit for multicast and topic management calls.
const maxTokensPerBatch = 500

type NotificationPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Link  string            `json:"link,omitempty"`
}

type PushNotificationService struct {
	fcmClient *messaging.Client
	log       *logger.Logger
}

// NewPushNotificationService connects to FCM. When disabled, the returned
// service reports ErrPushDisabled from every send.
func NewPushNotificationService(ctx context.Context, enabled bool, serviceAccountPath string, log *logger.Logger) *PushNotificationService {
	s := &PushNotificationService{log: log.With("service", "PushNotificationService")}
	if !enabled {
		s.log.Warn("Push notifications disabled")
		return s
	}

	var opts []option.ClientOption
	if serviceAccountPath != "" {
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		s.log.Error("Failed to initialize Firebase app", "error", err)
		return s
	}
	s.fcmClient, err = app.Messaging(ctx)
	if err != nil {
		s.log.Error("Failed to get Firebase messaging client", "error", err)
		return s
	}
	s.log.Info("Push notification service initialized with FCM")
	return s
}

func (s *PushNotificationService) Enabled() bool {
	return s != nil && s.fcmClient != nil
}

// TopicName maps a situation tag to a valid FCM topic name.
func TopicName(tag string) string {
	return "tag-" + invalidTopicChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(tag)), "_")
}

var invalidTopicChars = regexp.MustCompile(`[^a-z0-9\-_.~%]`)

func buildMulticast(tokens []string, payload NotificationPayload) *messaging.MulticastMessage {
	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
		Android: &messaging.AndroidConfig{
			Priority: "normal",
		},
	}
	if payload.Link != "" {
		message.Webpush = &messaging.WebpushConfig{
			FCMOptions: &messaging.WebpushFCMOptions{Link: payload.Link},
		}
	}
	return message
}

// SendToTokens sends payload to every token and returns the tokens FCM
// reported as no longer registered.
func (s *PushNotificationService) SendToTokens(ctx context.Context, tokens []string, payload NotificationPayload) ([]string, error) {
	if !s.Enabled() {
		return nil, ErrPushDisabled
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	var stale []string
	for start := 0; start < len(tokens); start += maxTokensPerBatch {
		end := min(start+maxTokensPerBatch, len(tokens))
		batch := tokens[start:end]

		sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		response, err := s.fcmClient.SendEachForMulticast(sendCtx, buildMulticast(batch, payload))
		cancel()
		if err != nil {
			return stale, fmt.Errorf("failed to send FCM multicast: %w", err)
		}

		s.log.Debug("Sent FCM multicast", "success", response.SuccessCount, "failure", response.FailureCount)
		for i, resp := range response.Responses {
			if resp.Success {
				continue
			}
			if messaging.IsUnregistered(resp.Error) {
				stale = append(stale, batch[i])
				continue
			}
			s.log.Warn("Failed to send to token", "error", resp.Error)
		}
	}
	return stale, nil
}

func (s *PushNotificationService) SendToTopic(ctx context.Context, topic string, payload NotificationPayload) error {
	if !s.Enabled() {
		return ErrPushDisabled
	}
	message := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	id, err := s.fcmClient.Send(sendCtx, message)
	if err != nil {
		return fmt.Errorf("failed to send FCM topic message: %w", err)
	}
	s.log.Debug("Sent FCM topic notification", "topic", topic, "message_id", id)
	return nil
}

func (s *PushNotificationService) SubscribeToTopic(ctx context.Context, tokens []string, topic string) error {
	if !s.Enabled() {
		return ErrPushDisabled
	}
	return s.manageTopic(ctx, tokens, topic, s.fcmClient.SubscribeToTopic)
}

func (s *PushNotificationService) UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) error {
	if !s.Enabled() {
		return ErrPushDisabled
	}
	return s.manageTopic(ctx, tokens, topic, s.fcmClient.UnsubscribeFromTopic)
}

type topicFunc func(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)

func (s *PushNotificationService) manageTopic(ctx context.Context, tokens []string, topic string, fn topicFunc) error {
	for start := 0; start < len(tokens); start += maxTokensPerBatch {
		end := min(start+maxTokensPerBatch, len(tokens))
		callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		response, err := fn(callCtx, tokens[start:end], topic)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to manage topic %s: %w", topic, err)
		}
		if response.FailureCount > 0 {
			s.log.Warn("Topic management partially failed", "topic", topic, "failures", response.FailureCount)
		}
	}
	return nil
}
