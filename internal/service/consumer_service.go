package service

import (
	"context"
	"encoding/json"
	"time"

	"loan-assist-be/internal/dto"
	"loan-assist-be/internal/entity"
	"loan-assist-be/internal/pkg/logger"
	"loan-assist-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/patrickmn/go-cache"
)

const flushWatermarkTTL = time.Hour

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	repo       contract.LoanSessionRepository
	logger     logger.ILogger

	// Highest conversation length written per session. The log only grows, so a
	// shorter flush arriving late is stale.
	watermarks *cache.Cache
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	repo contract.LoanSessionRepository,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		repo:       repo,
		logger:     log,
		watermarks: cache.New(flushWatermarkTTL, 10*time.Minute),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ConversationFlushMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal conversation flush", map[string]interface{}{"error": err})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if last, ok := cs.watermarks.Get(payload.SessionId); ok && last.(int) > len(payload.Conversations) {
		cs.logger.Debug("ConsumerService", "Skipping stale conversation flush", map[string]interface{}{
			"session_id": payload.SessionId,
			"turns":      len(payload.Conversations),
			"written":    last,
		})
		msg.Ack()
		return
	}

	turns := make([]entity.ConversationTurn, 0, len(payload.Conversations))
	for _, t := range payload.Conversations {
		turns = append(turns, entity.ConversationTurn{Role: t.Role, Message: t.Message, Timestamp: t.Timestamp})
	}

	// Persistence is best-effort; a failed write is logged and dropped so the queue keeps moving.
	if err := cs.repo.UpdateConversations(ctx, payload.SessionId, turns); err != nil {
		cs.logger.Error("ConsumerService", "Failed to persist conversation", map[string]interface{}{
			"session_id": payload.SessionId,
			"turns":      len(turns),
			"error":      err,
		})
		msg.Ack()
		return
	}

	cs.watermarks.SetDefault(payload.SessionId, len(turns))
	cs.logger.Debug("ConsumerService", "Conversation persisted", map[string]interface{}{
		"session_id": payload.SessionId,
		"turns":      len(turns),
	})
	msg.Ack()
}
