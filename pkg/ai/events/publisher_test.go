package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-docrouter-be/internal/dto"
	"ai-docrouter-be/internal/entity"
	"ai-docrouter-be/pkg/document"
	pkgEvents "ai-docrouter-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	published []pkgEvents.Event
	err       error
}

func (b *fakeBus) Publish(_ context.Context, event pkgEvents.Event) error {
	b.published = append(b.published, event)
	return b.err
}

func TestNatsPublisher_DocumentProcessed(t *testing.T) {
	bus := &fakeBus{}
	p := NewNatsPublisher(bus, nil)

	p.PublishDocumentProcessed(context.Background(), &dto.ProcessResult{
		SessionId:      "conversation_abcd1234",
		Format:         document.FormatEmail,
		Intent:         document.IntentRFQ,
		RoutedTo:       document.AgentEmail,
		Classification: document.Classification{Confidence: 0.9},
		Details:        &document.EmailExtraction{Fallback: true},
	})

	require.Len(t, bus.published, 1)
	evt := bus.published[0]
	assert.Equal(t, pkgEvents.TypeDocumentProcessed, evt.EventType())
	assert.Equal(t, "conversation_abcd1234", evt.Payload()["session_id"])
	assert.Equal(t, true, evt.Payload()["fallback"])
}

func TestNatsPublisher_AgentActivity(t *testing.T) {
	bus := &fakeBus{}
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	NewNatsPublisher(bus, nil).PublishAgentActivity(context.Background(), &entity.AgentLog{
		Id: "1", AgentName: "Classifier", Action: "classified", Timestamp: at,
	})

	require.Len(t, bus.published, 1)
	assert.Equal(t, pkgEvents.TypeAgentActivity, bus.published[0].EventType())
	assert.Equal(t, at, bus.published[0].Timestamp())
}

func TestNatsPublisher_NilBusAndErrors(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNatsPublisher(nil, nil).PublishDocumentProcessed(context.Background(), &dto.ProcessResult{})
		NewNatsPublisher(nil, nil).PublishAgentActivity(context.Background(), &entity.AgentLog{})
	})

	bus := &fakeBus{err: errors.New("no responders")}
	assert.NotPanics(t, func() {
		NewNatsPublisher(bus, nil).PublishAgentActivity(context.Background(), &entity.AgentLog{})
	})
	assert.Len(t, bus.published, 1)
}
