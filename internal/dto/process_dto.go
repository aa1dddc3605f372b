package dto

import (
	"time"

	"ai-docrouter-be/pkg/document"
)

type ProcessRequest struct {
	Content string `json:"content" validate:"required"`
}

// ProcessResult is what the orchestrator returns for one processed document.
// Details carries the routed agent's extraction.
type ProcessResult struct {
	SessionId      string                  `json:"session_id"`
	Format         document.Format         `json:"format"`
	Intent         document.Intent         `json:"intent"`
	RoutedTo       string                  `json:"routed_to"`
	Classification document.Classification `json:"classification"`
	Details        document.Envelope       `json:"details"`
}

type SessionRecordResponse struct {
	SessionId string                 `json:"session_id"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"created_at"`
}

type AgentLogResponse struct {
	Id        string    `json:"id"`
	AgentName string    `json:"agent_name"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

type LogsQuery struct {
	Limit int `query:"limit" validate:"gte=0,lte=500"`
}

type HealthResponse struct {
	Storage         string `json:"storage"`
	LLMProvider     string `json:"llm_provider"`
	DegradedStorage bool   `json:"degraded_storage"`
}
