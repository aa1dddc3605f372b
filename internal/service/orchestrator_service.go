// FILE: internal/service/orchestrator_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"ai-docrouter-be/internal/dto"
	"ai-docrouter-be/internal/pkg/logger"
	"ai-docrouter-be/internal/tracer"
	aiEvents "ai-docrouter-be/pkg/ai/events"
	"ai-docrouter-be/pkg/document"
	"ai-docrouter-be/pkg/memory"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	SessionIdPrefix = "conversation_"

	ActionRouted            = "routed"
	ActionUnsupportedFormat = "unsupported_format"
)

type IOrchestratorService interface {
	ProcessInput(ctx context.Context, content string) (*dto.ProcessResult, error)
}

type Classifier interface {
	Classify(ctx context.Context, content string) document.Classification
}

type JSONAgent interface {
	Process(ctx context.Context, content, sessionId string) (*document.JSONExtraction, error)
}

type EmailAgent interface {
	Process(ctx context.Context, content, sessionId string) (*document.EmailExtraction, error)
}

// SharedMemory is the write side of the shared memory manager.
type SharedMemory interface {
	Write(ctx context.Context, sessionId string, partial document.Fields) memory.Status
	LogActivity(ctx context.Context, component, action, detail string) memory.Status
}

type route struct {
	agent   string
	process func(ctx context.Context, content, sessionId string) (document.Envelope, error)
}

type orchestratorService struct {
	classifier Classifier
	memory     SharedMemory
	publisher  aiEvents.Publisher
	logger     logger.ILogger
	routes     map[document.Format]route
}

func NewOrchestratorService(
	classifier Classifier,
	jsonAgent JSONAgent,
	emailAgent EmailAgent,
	sharedMemory SharedMemory,
	publisher aiEvents.Publisher,
	log logger.ILogger,
) IOrchestratorService {
	if log == nil {
		log = logger.NewNopLogger()
	}

	jsonRoute := route{
		agent: document.AgentJSON,
		process: func(ctx context.Context, content, sessionId string) (document.Envelope, error) {
			res, err := jsonAgent.Process(ctx, content, sessionId)
			if err != nil {
				return nil, err
			}
			return res, nil
		},
	}
	emailRoute := route{
		agent: document.AgentEmail,
		process: func(ctx context.Context, content, sessionId string) (document.Envelope, error) {
			res, err := emailAgent.Process(ctx, content, sessionId)
			if err != nil {
				return nil, err
			}
			return res, nil
		},
	}

	return &orchestratorService{
		classifier: classifier,
		memory:     sharedMemory,
		publisher:  publisher,
		logger:     log,
		// PDF has no agent and is rejected as unsupported.
		routes: map[document.Format]route{
			document.FormatJSON:  jsonRoute,
			document.FormatEmail: emailRoute,
			document.FormatText:  emailRoute,
		},
	}
}

// NewSessionId returns a short random identifier such as "conversation_3f9a01bc".
func NewSessionId() string {
	return SessionIdPrefix + uuid.NewString()[:8]
}

func (s *orchestratorService) ProcessInput(ctx context.Context, content string) (*dto.ProcessResult, error) {
	tr := otel.Tracer(tracer.Name)
	ctx, span := tr.Start(ctx, "orchestrator.ProcessInput")
	defer span.End()

	sessionId := NewSessionId()
	span.SetAttributes(attribute.String("session.id", sessionId))

	classifyCtx, classifySpan := tr.Start(ctx, "classifier.Classify")
	classification := s.classifier.Classify(classifyCtx, content)
	classifySpan.SetAttributes(
		attribute.String("document.format", string(classification.Format)),
		attribute.String("document.intent", string(classification.Intent)),
		attribute.Bool("classifier.fallback", classification.Fallback),
	)
	classifySpan.End()

	s.memory.Write(ctx, sessionId, document.Fields{
		document.KeyTimestamp:      time.Now().UTC().Format(time.RFC3339Nano),
		document.KeyClassification: map[string]interface{}(classification.MemoryFields()),
	})

	r, ok := s.routes[classification.Format]
	if !ok {
		s.memory.LogActivity(ctx, document.AgentOrchestrator, ActionUnsupportedFormat,
			fmt.Sprintf("No agent for format %s (intent=%s)", classification.Format, classification.Intent))
		err := fmt.Errorf("%w: %s", document.ErrUnsupportedFormat, classification.Format)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.memory.LogActivity(ctx, document.AgentOrchestrator, ActionRouted,
		fmt.Sprintf("Routed to %s (format=%s, intent=%s)", r.agent, classification.Format, classification.Intent))

	agentCtx, agentSpan := tr.Start(ctx, "agent."+r.agent)
	details, err := r.process(agentCtx, content, sessionId)
	agentSpan.End()
	if err != nil {
		err = fmt.Errorf("%s agent failed for session %s: %w", r.agent, sessionId, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("ORCHESTRATOR", "Agent rejected input", map[string]interface{}{
			"session_id": sessionId,
			"agent":      r.agent,
			"error":      err.Error(),
		})
		return nil, err
	}

	result := &dto.ProcessResult{
		SessionId:      sessionId,
		Format:         classification.Format,
		Intent:         classification.Intent,
		RoutedTo:       r.agent,
		Classification: classification,
		Details:        details,
	}

	s.logger.Info("ORCHESTRATOR", "Document processed", map[string]interface{}{
		"session_id": sessionId,
		"format":     classification.Format,
		"intent":     classification.Intent,
		"routed_to":  r.agent,
		"degraded":   classification.Fallback || details.Degraded(),
	})

	if s.publisher != nil {
		s.publisher.PublishDocumentProcessed(ctx, result)
	}

	return result, nil
}
