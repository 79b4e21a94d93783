package kafkahandlers

import (
	"context"
	"encoding/json"

	"socialnet/internal/services"
	"socialnet/internal/websocket"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"
)

// FriendEventConsumerLogic forwards friend lifecycle events consumed from
// Kafka to the websocket notification hub.
type FriendEventConsumerLogic struct {
	hub *websocket.Hub
}

// NewFriendEventConsumerLogic creates a new FriendEventConsumerLogic instance.
func NewFriendEventConsumerLogic(hub *websocket.Hub) *FriendEventConsumerLogic {
	if hub == nil {
		logrus.Panic("notification hub cannot be nil")
	}
	return &FriendEventConsumerLogic{hub: hub}
}

// HandleFriendEvent is the MessageHandler passed to the Kafka consumer.
// It unmarshals one friend event and hands the raw payload to the hub for
// delivery to the addressed user. Malformed messages are skipped with the
// offset committed, since retrying cannot fix them.
func (h *FriendEventConsumerLogic) HandleFriendEvent(_ context.Context, msg *kafka.Message) error {
	var event services.FriendEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logrus.Errorf("Failed to unmarshal friend event (value: %q): %v. Skipping message.", string(msg.Value), err)
		return nil
	}

	if event.NotifyUserID == 0 {
		logrus.Warnf("Friend event %s for request %d has no notify target, skipping.", event.Type, event.RequestID)
		return nil
	}

	h.hub.DeliverToUser(event.NotifyUserID, msg.Value)

	logrus.WithFields(logrus.Fields{
		"type":      event.Type,
		"requestId": event.RequestID,
		"notify":    event.NotifyUserID,
	}).Debug("Friend event forwarded to notification hub")
	return nil
}
