package service

import (
	"context"
	"errors"
	"sort"

	"ai-docrouter-be/internal/dto"
	"ai-docrouter-be/internal/entity"
	"ai-docrouter-be/pkg/memory"
)

const MaxLogLimit = 500

var ErrSessionNotFound = errors.New("session not found")

type IMemoryService interface {
	GetSession(ctx context.Context, sessionId string) (*dto.SessionRecordResponse, error)
	ListSessions(ctx context.Context) ([]*dto.SessionRecordResponse, error)
	ListLogs(ctx context.Context, limit int) ([]*dto.AgentLogResponse, error)
	Health(ctx context.Context) *dto.HealthResponse
}

// MemoryReader is the read side of the shared memory manager.
type MemoryReader interface {
	Read(ctx context.Context, sessionId string) (*entity.SessionRecord, memory.Status)
	ReadAll(ctx context.Context) ([]*entity.SessionRecord, memory.Status)
	ReadLogs(ctx context.Context, limit int) ([]*entity.AgentLog, memory.Status)
}

type memoryService struct {
	memory      MemoryReader
	storage     string
	llmProvider string
}

// NewMemoryService exposes session records and the audit log. storage and
// llmProvider are reported verbatim by Health.
func NewMemoryService(reader MemoryReader, storage, llmProvider string) IMemoryService {
	return &memoryService{
		memory:      reader,
		storage:     storage,
		llmProvider: llmProvider,
	}
}

func (s *memoryService) GetSession(ctx context.Context, sessionId string) (*dto.SessionRecordResponse, error) {
	record, _ := s.memory.Read(ctx, sessionId)
	if record == nil {
		return nil, ErrSessionNotFound
	}
	return toSessionResponse(record), nil
}

func (s *memoryService) ListSessions(ctx context.Context) ([]*dto.SessionRecordResponse, error) {
	records, _ := s.memory.ReadAll(ctx)

	res := make([]*dto.SessionRecordResponse, 0, len(records))
	for _, r := range records {
		res = append(res, toSessionResponse(r))
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (s *memoryService) ListLogs(ctx context.Context, limit int) ([]*dto.AgentLogResponse, error) {
	if limit <= 0 {
		limit = memory.DefaultLogLimit
	}
	if limit > MaxLogLimit {
		limit = MaxLogLimit
	}

	logs, _ := s.memory.ReadLogs(ctx, limit)
	res := make([]*dto.AgentLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, &dto.AgentLogResponse{
			Id:        l.Id,
			AgentName: l.AgentName,
			Action:    l.Action,
			Details:   l.Details,
			Timestamp: l.Timestamp,
		})
	}
	return res, nil
}

// Health probes the log path, the cheapest read both backends support.
func (s *memoryService) Health(ctx context.Context) *dto.HealthResponse {
	_, status := s.memory.ReadLogs(ctx, 1)
	return &dto.HealthResponse{
		Storage:         s.storage,
		LLMProvider:     s.llmProvider,
		DegradedStorage: status.Degraded(),
	}
}

func toSessionResponse(r *entity.SessionRecord) *dto.SessionRecordResponse {
	return &dto.SessionRecordResponse{
		SessionId: r.SessionId,
		Data:      r.Data,
		CreatedAt: r.CreatedAt,
	}
}
