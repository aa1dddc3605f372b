package contract

import (
	"context"

	"ai-docrouter-be/internal/entity"
)

// MemoryRepository is the storage backend for session records and the audit log.
// Durable and in-process implementations share these semantics; only durability differs.
type MemoryRepository interface {
	// PutRecord creates or fully replaces the stored mapping for record.SessionId.
	// CreatedAt is kept from the first write of a session.
	PutRecord(ctx context.Context, record *entity.SessionRecord) error
	// GetRecord returns (nil, nil) when no record exists.
	GetRecord(ctx context.Context, sessionId string) (*entity.SessionRecord, error)
	// ListRecords returns every record. Order is unspecified.
	ListRecords(ctx context.Context) ([]*entity.SessionRecord, error)
	AppendLog(ctx context.Context, entry *entity.AgentLog) error
	// ListLogs returns at most limit entries, newest first.
	ListLogs(ctx context.Context, limit int) ([]*entity.AgentLog, error)
}
