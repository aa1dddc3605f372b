package entity

import (
	"time"

	"ai-docrouter-be/pkg/document"
)

// SessionRecord is the accumulated knowledge about one processing request.
type SessionRecord struct {
	SessionId string          `json:"session_id"`
	Data      document.Fields `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// AgentLog is one observable action taken by one component.
type AgentLog struct {
	Id        string    `json:"id"`
	AgentName string    `json:"agent_name"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}
