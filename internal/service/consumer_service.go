// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"

	"ai-docrouter-be/internal/entity"
	"ai-docrouter-be/internal/pkg/logger"
	aiEvents "ai-docrouter-be/pkg/ai/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// ActivityBroadcaster pushes one audit entry to live viewers.
type ActivityBroadcaster interface {
	BroadcastActivity(entry *entity.AgentLog)
}

type consumerService struct {
	subscriber  message.Subscriber
	topicName   string
	broadcaster ActivityBroadcaster
	publisher   aiEvents.Publisher
	logger      logger.ILogger
}

// NewConsumerService fans audit entries from the in-process bus out to the
// websocket hub and the external event stream. Either sink may be nil.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	broadcaster ActivityBroadcaster,
	publisher aiEvents.Publisher,
	log logger.ILogger,
) IConsumerService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &consumerService{
		subscriber:  subscriber,
		topicName:   topicName,
		broadcaster: broadcaster,
		publisher:   publisher,
		logger:      log,
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
	var entry entity.AgentLog
	if err := json.Unmarshal(msg.Payload, &entry); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal activity", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // retrying a malformed payload cannot succeed
		return
	}

	if cs.broadcaster != nil {
		cs.broadcaster.BroadcastActivity(&entry)
	}
	if cs.publisher != nil {
		cs.publisher.PublishAgentActivity(ctx, &entry)
	}

	msg.Ack()
}
