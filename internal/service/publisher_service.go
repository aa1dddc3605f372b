// FILE: internal/service/publisher_service.go
package service

import (
	"context"
	"encoding/json"

	"ai-docrouter-be/internal/entity"
	"ai-docrouter-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const ActivityTopic = "agent.activity"

// IPublisherService hands audit entries to the in-process event bus. It
// satisfies memory.ActivityNotifier.
type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
	NotifyActivity(ctx context.Context, entry *entity.AgentLog)
}

type publisherService struct {
	topicName string
	publisher message.Publisher
	logger    logger.ILogger
}

func NewPublisherService(topicName string, publisher message.Publisher, log logger.ILogger) IPublisherService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
		logger:    log,
	}
}

func (ps *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.publisher.Publish(ps.topicName, msg)
}

func (ps *publisherService) NotifyActivity(ctx context.Context, entry *entity.AgentLog) {
	payload, err := json.Marshal(entry)
	if err != nil {
		ps.logger.Error("PUBLISHER", "Failed to encode activity", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := ps.Publish(context.WithoutCancel(ctx), payload); err != nil {
		ps.logger.Warn("PUBLISHER", "Failed to publish activity", map[string]interface{}{
			"log_id": entry.Id,
			"error":  err.Error(),
		})
	}
}
