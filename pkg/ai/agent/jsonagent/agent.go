package jsonagent

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-docrouter-be/internal/pkg/logger"
	"ai-docrouter-be/pkg/ai/inference"
	"ai-docrouter-be/pkg/document"
	"ai-docrouter-be/pkg/memory"
)

const (
	ActionExtractionComplete = "extraction_complete"
	ActionExtractionFallback = "extraction_fallback"

	// maxPromptChars bounds the serialized payload sent to the model.
	maxPromptChars = 6000
	module         = "JSON_AGENT"
)

// Memory is the slice of the shared memory manager the agent writes to.
type Memory interface {
	Write(ctx context.Context, sessionId string, partial document.Fields) memory.Status
	LogActivity(ctx context.Context, component, action, detail string) memory.Status
}

type response struct {
	ExtractedFields    map[string]interface{} `json:"extracted_fields" validate:"required"`
	MissingFields      []string               `json:"missing_fields" validate:"required"`
	Anomalies          []string               `json:"anomalies" validate:"required"`
	StandardizedFormat map[string]interface{} `json:"standardized_format" validate:"required"`
}

type Agent struct {
	inference *inference.Client
	memory    Memory
	logger    logger.ILogger
}

func New(client *inference.Client, mem Memory, log logger.ILogger) *Agent {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Agent{
		inference: client,
		memory:    mem,
		logger:    log,
	}
}

// Process extracts fields from a JSON document and records them under
// sessionId. Content that is not valid JSON fails with document.ErrMalformedInput
// and leaves the session untouched.
func (a *Agent) Process(ctx context.Context, content, sessionId string) (*document.JSONExtraction, error) {
	data, err := Parse(content)
	if err != nil {
		return nil, err
	}

	result, err := a.extract(ctx, data)
	if err != nil {
		a.logger.Warn(module, "Inference failed, passing data through", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		result = Fallback(data)
	}

	a.memory.Write(ctx, sessionId, result.MemoryFields())

	action := ActionExtractionComplete
	if result.Fallback {
		action = ActionExtractionFallback
	}
	a.memory.LogActivity(ctx, document.AgentJSON, action, fmt.Sprintf(
		"Extracted %d fields, %d missing, %d anomalies",
		len(result.ExtractedFields), len(result.MissingFields), len(result.Anomalies)))

	return result, nil
}

// Parse decodes content. A top-level value that is not an object is kept
// under the "value" key.
func Parse(content string) (document.Fields, error) {
	var parsed interface{}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON format: %v", document.ErrMalformedInput, err)
	}
	if obj, ok := parsed.(map[string]interface{}); ok {
		return document.Fields(obj), nil
	}
	return document.Fields{"value": parsed}, nil
}

// Fallback passes the parsed data through unchanged.
func Fallback(data document.Fields) *document.JSONExtraction {
	return &document.JSONExtraction{
		ExtractedFields:    data,
		MissingFields:      []string{},
		Anomalies:          []string{},
		StandardizedFormat: data.Clone(),
		Fallback:           true,
	}
}

func (a *Agent) extract(ctx context.Context, data document.Fields) (*document.JSONExtraction, error) {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, err
	}
	body := string(payload)
	if r := []rune(body); len(r) > maxPromptChars {
		body = string(r[:maxPromptChars])
	}

	res, err := inference.Infer[response](ctx, a.inference, fmt.Sprintf(`You extract data from JSON business documents.

Given the JSON below, respond ONLY with a JSON object:
{
  "extracted_fields": {the key business fields and their values},
  "missing_fields": [names of fields you would expect for this kind of document but are absent],
  "anomalies": [short descriptions of suspicious or inconsistent values],
  "standardized_format": {the same data reshaped with consistent snake_case keys}
}

JSON:
%s`, body))
	if err != nil {
		return nil, err
	}

	return &document.JSONExtraction{
		ExtractedFields:    document.Fields(res.ExtractedFields),
		MissingFields:      res.MissingFields,
		Anomalies:          res.Anomalies,
		StandardizedFormat: document.Fields(res.StandardizedFormat),
	}, nil
}
