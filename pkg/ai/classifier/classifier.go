package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-docrouter-be/internal/pkg/logger"
	"ai-docrouter-be/pkg/ai/inference"
	"ai-docrouter-be/pkg/document"
	"ai-docrouter-be/pkg/memory"
)

const (
	// MaxPromptChars bounds how much of the document is sent to the model.
	MaxPromptChars     = 1500
	FallbackConfidence = 0.5
	FallbackReasoning  = "AI inference unavailable; classified with deterministic rules"

	ActionClassified         = "classified"
	ActionClassifiedFallback = "classified_fallback"

	module = "CLASSIFIER"
)

// ActivityLogger is the slice of the shared memory manager the classifier needs.
type ActivityLogger interface {
	LogActivity(ctx context.Context, component, action, detail string) memory.Status
}

type response struct {
	Format     string   `json:"format" validate:"required,oneof=JSON Email PDF Text"`
	Intent     string   `json:"intent" validate:"required,oneof=Invoice RFQ Complaint Regulation Query Other"`
	Confidence *float64 `json:"confidence" validate:"required,gte=0,lte=1"`
	Reasoning  *string  `json:"reasoning" validate:"required"`
}

type Classifier struct {
	inference *inference.Client
	activity  ActivityLogger
	logger    logger.ILogger
}

func New(client *inference.Client, activity ActivityLogger, log logger.ILogger) *Classifier {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Classifier{
		inference: client,
		activity:  activity,
		logger:    log,
	}
}

// Classify never fails. When inference is unavailable or answers outside the
// schema the deterministic rules decide.
func (c *Classifier) Classify(ctx context.Context, content string) document.Classification {
	res, err := inference.Infer[response](ctx, c.inference, buildPrompt(content))
	if err != nil {
		c.logger.Warn(module, "Inference failed, using rule-based classification", map[string]interface{}{
			"error": err.Error(),
		})
		result := Fallback(content)
		c.activity.LogActivity(ctx, document.AgentClassifier, ActionClassifiedFallback,
			fmt.Sprintf("Format: %s, Intent: %s (inference unavailable)", result.Format, result.Intent))
		return result
	}

	result := document.Classification{
		Format:     document.Format(res.Format),
		Intent:     document.Intent(res.Intent),
		Confidence: *res.Confidence,
		Reasoning:  *res.Reasoning,
	}
	c.activity.LogActivity(ctx, document.AgentClassifier, ActionClassified,
		fmt.Sprintf("Format: %s, Intent: %s, Confidence: %.2f", result.Format, result.Intent, result.Confidence))
	return result
}

// Fallback is the rule cascade used without inference: parsable JSON, then
// mail header markers, then plain text.
func Fallback(content string) document.Classification {
	result := document.Classification{
		Confidence: FallbackConfidence,
		Reasoning:  FallbackReasoning,
		Fallback:   true,
	}

	lower := strings.ToLower(content)
	switch {
	case json.Valid([]byte(content)):
		result.Format, result.Intent = document.FormatJSON, document.IntentQuery
	case strings.Contains(lower, "from:") || strings.Contains(lower, "subject:"):
		result.Format, result.Intent = document.FormatEmail, document.IntentQuery
	default:
		result.Format, result.Intent = document.FormatText, document.IntentOther
	}
	return result
}

func buildPrompt(content string) string {
	return fmt.Sprintf(`You classify business documents.

Decide the document FORMAT:
- JSON: structured data (JSON objects or arrays)
- Email: correspondence with sender/recipient/subject
- PDF: text extracted from a scanned or paginated document
- Text: any other free text

Decide the business INTENT:
- Invoice, RFQ (request for quotation), Complaint, Regulation, Query, Other

Respond ONLY with a JSON object:
{"format": "...", "intent": "...", "confidence": 0.0-1.0, "reasoning": "one sentence"}

DOCUMENT:
%s`, truncate(content, MaxPromptChars))
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
