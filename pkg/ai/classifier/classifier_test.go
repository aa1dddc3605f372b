package classifier

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-docrouter-be/pkg/ai/inference"
	"ai-docrouter-be/pkg/document"
	"ai-docrouter-be/pkg/llm/llmtest"
	"ai-docrouter-be/pkg/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type activityCall struct {
	component, action, detail string
}

type fakeActivity struct {
	mu    sync.Mutex
	calls []activityCall
}

func (f *fakeActivity) LogActivity(_ context.Context, component, action, detail string) memory.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, activityCall{component, action, detail})
	return memory.Status{Tier: memory.TierPrimary}
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name    string
		content string
		format  document.Format
		intent  document.Intent
	}{
		{"json object", `{"type":"invoice","amount":10}`, document.FormatJSON, document.IntentQuery},
		{"json array", `[1, 2, 3]`, document.FormatJSON, document.IntentQuery},
		{"json scalar", `42`, document.FormatJSON, document.IntentQuery},
		{"from header", "From: a@b.com\nhello", document.FormatEmail, document.IntentQuery},
		{"subject header uppercase", "SUBJECT: Hi\nbody", document.FormatEmail, document.IntentQuery},
		{"marker mid-line", "please forward from: the desk", document.FormatEmail, document.IntentQuery},
		{"broken json with marker", `{"from: x",}`, document.FormatEmail, document.IntentQuery},
		{"plain text", "The quick brown fox", document.FormatText, document.IntentOther},
		{"empty", "", document.FormatText, document.IntentOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fallback(tt.content)
			assert.Equal(t, tt.format, got.Format)
			assert.Equal(t, tt.intent, got.Intent)
			assert.Equal(t, FallbackConfidence, got.Confidence)
			assert.Equal(t, FallbackReasoning, got.Reasoning)
			assert.True(t, got.Fallback)
		})
	}
}

func TestClassify_PrimaryPath(t *testing.T) {
	provider := llmtest.NewScriptedProvider(llmtest.Text(
		`{"format":"JSON","intent":"Invoice","confidence":0.93,"reasoning":"has amount and customer"}`))
	activity := &fakeActivity{}
	c := New(inference.NewClient(provider, time.Second), activity, nil)

	got := c.Classify(context.Background(), `{"type":"invoice"}`)

	assert.Equal(t, document.FormatJSON, got.Format)
	assert.Equal(t, document.IntentInvoice, got.Intent)
	assert.Equal(t, 0.93, got.Confidence)
	assert.Equal(t, "has amount and customer", got.Reasoning)
	assert.False(t, got.Fallback)

	require.Len(t, activity.calls, 1)
	assert.Equal(t, document.AgentClassifier, activity.calls[0].component)
	assert.Equal(t, ActionClassified, activity.calls[0].action)
	assert.Contains(t, activity.calls[0].detail, "Confidence: 0.93")
}

func TestClassify_FallsBackOnBadResponses(t *testing.T) {
	replies := map[string]llmtest.Reply{
		"provider error":     llmtest.Fail(errors.New("503 service unavailable")),
		"missing reasoning":  llmtest.Text(`{"format":"JSON","intent":"Invoice","confidence":0.9}`),
		"missing confidence": llmtest.Text(`{"format":"JSON","intent":"Invoice","reasoning":"x"}`),
		"unknown format":     llmtest.Text(`{"format":"XML","intent":"Invoice","confidence":0.9,"reasoning":"x"}`),
		"not json":           llmtest.Text(`It looks like an invoice.`),
	}

	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			activity := &fakeActivity{}
			c := New(inference.NewClient(llmtest.NewScriptedProvider(reply), time.Second), activity, nil)

			got := c.Classify(context.Background(), `{"amount": 5}`)

			assert.True(t, got.Fallback)
			assert.Equal(t, document.FormatJSON, got.Format)
			assert.Equal(t, document.IntentQuery, got.Intent)
			require.Len(t, activity.calls, 1)
			assert.Equal(t, ActionClassifiedFallback, activity.calls[0].action)
			assert.NotContains(t, activity.calls[0].detail, "Confidence")
		})
	}
}

func TestClassify_NoProviderConfigured(t *testing.T) {
	activity := &fakeActivity{}
	c := New(nil, activity, nil)

	got := c.Classify(context.Background(), "From: john@example.com\nSubject: Hi")

	assert.Equal(t, document.FormatEmail, got.Format)
	assert.Len(t, activity.calls, 1)
}

func TestClassify_TruncatesPrompt(t *testing.T) {
	provider := llmtest.NewScriptedProvider(llmtest.Fail(errors.New("down")))
	c := New(inference.NewClient(provider, time.Second), &fakeActivity{}, nil)

	marker := "END_OF_DOCUMENT"
	c.Classify(context.Background(), strings.Repeat("é", MaxPromptChars)+marker)

	prompts := provider.Prompts()
	require.Len(t, prompts, 1)
	assert.NotContains(t, prompts[0], marker)
	assert.Contains(t, prompts[0], strings.Repeat("é", MaxPromptChars))
}
