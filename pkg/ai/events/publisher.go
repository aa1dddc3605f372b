package events

import (
	"context"
	"time"

	"ai-docrouter-be/internal/dto"
	"ai-docrouter-be/internal/entity"
	"ai-docrouter-be/internal/pkg/logger"
	pkgEvents "ai-docrouter-be/pkg/events"
)

// Bus is anything that can put an event on the wire. *nats.Publisher satisfies it.
type Bus interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

// Publisher abstracts event publishing for the document pipeline
type Publisher interface {
	PublishDocumentProcessed(ctx context.Context, result *dto.ProcessResult)
	PublishAgentActivity(ctx context.Context, entry *entity.AgentLog)
}

// NatsPublisher implements Publisher on top of a Bus. A nil Bus turns every
// call into a no-op, so the pipeline runs the same without NATS.
type NatsPublisher struct {
	bus    Bus
	logger logger.ILogger
}

func NewNatsPublisher(bus Bus, log logger.ILogger) *NatsPublisher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &NatsPublisher{
		bus:    bus,
		logger: log,
	}
}

// PublishDocumentProcessed emits DOCUMENT_PROCESSED
func (p *NatsPublisher) PublishDocumentProcessed(ctx context.Context, result *dto.ProcessResult) {
	if p.bus == nil || result == nil {
		return
	}

	now := time.Now().UTC()
	evt := pkgEvents.BaseEvent{
		Type: pkgEvents.TypeDocumentProcessed,
		Data: map[string]interface{}{
			"session_id":  result.SessionId,
			"format":      result.Format,
			"intent":      result.Intent,
			"routed_to":   result.RoutedTo,
			"confidence":  result.Classification.Confidence,
			"fallback":    result.Classification.Fallback || (result.Details != nil && result.Details.Degraded()),
			"entity_type": "session",
			"entity_id":   result.SessionId,
			"occurred_at": now,
		},
		OccurredAt: now,
	}

	p.publish(ctx, evt)
}

// PublishAgentActivity emits AGENT_ACTIVITY
func (p *NatsPublisher) PublishAgentActivity(ctx context.Context, entry *entity.AgentLog) {
	if p.bus == nil || entry == nil {
		return
	}

	evt := pkgEvents.BaseEvent{
		Type: pkgEvents.TypeAgentActivity,
		Data: map[string]interface{}{
			"id":          entry.Id,
			"agent_name":  entry.AgentName,
			"action":      entry.Action,
			"details":     entry.Details,
			"occurred_at": entry.Timestamp,
		},
		OccurredAt: entry.Timestamp,
	}

	p.publish(ctx, evt)
}

func (p *NatsPublisher) publish(ctx context.Context, evt pkgEvents.BaseEvent) {
	if err := p.bus.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+evt.Type+" event", map[string]interface{}{"error": err.Error()})
	}
}
