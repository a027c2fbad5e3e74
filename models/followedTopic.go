package models

import "strings"

const MaxTopicLength = 50

type TopicRequest struct {
	Topic string `json:"topic"`
}

// NormalizeTopic is the stored form of a topic: trimmed and lowercased.
func NormalizeTopic(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}
