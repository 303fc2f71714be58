package service

import (
	"context"
	"encoding/json"

	"loan-assist-be/internal/dto"
	"loan-assist-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// ConversationPersister mirrors a session's conversation log to durable storage.
type ConversationPersister interface {
	Persist(ctx context.Context, sessionID string, turns []store.Turn) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

// NewPublisherService queues conversation flushes on topicName.
func NewPublisherService(topicName string, publisher message.Publisher) ConversationPersister {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) Persist(ctx context.Context, sessionID string, turns []store.Turn) error {
	payload := dto.ConversationFlushMessage{
		SessionId:     sessionID,
		Conversations: make([]dto.TurnDTO, 0, len(turns)),
	}
	for _, t := range turns {
		payload.Conversations = append(payload.Conversations, dto.TurnDTO{Role: t.Role, Message: t.Message, Timestamp: t.Timestamp})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(context.WithoutCancel(ctx))
	return ps.publisher.Publish(ps.topicName, msg)
}
