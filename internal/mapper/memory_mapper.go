package mapper

import (
	"encoding/json"
	"fmt"

	"ai-docrouter-be/internal/entity"
	"ai-docrouter-be/internal/model"
	"ai-docrouter-be/pkg/document"

	"gorm.io/datatypes"
)

type MemoryMapper struct{}

func NewMemoryMapper() *MemoryMapper {
	return &MemoryMapper{}
}

func (m *MemoryMapper) ToRecordEntity(r *model.SharedMemory) (*entity.SessionRecord, error) {
	if r == nil {
		return nil, nil
	}

	data := document.Fields{}
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &data); err != nil {
			return nil, fmt.Errorf("decode memory for %s: %w", r.SessionId, err)
		}
	}

	return &entity.SessionRecord{
		SessionId: r.SessionId,
		Data:      data,
		CreatedAt: r.CreatedAt,
	}, nil
}

func (m *MemoryMapper) ToRecordModel(r *entity.SessionRecord) (*model.SharedMemory, error) {
	if r == nil {
		return nil, nil
	}

	data := r.Data
	if data == nil {
		data = document.Fields{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode memory for %s: %w", r.SessionId, err)
	}

	return &model.SharedMemory{
		SessionId: r.SessionId,
		Data:      datatypes.JSON(raw),
		CreatedAt: r.CreatedAt,
	}, nil
}

func (m *MemoryMapper) ToRecordEntities(records []*model.SharedMemory) ([]*entity.SessionRecord, error) {
	entities := make([]*entity.SessionRecord, 0, len(records))
	for _, r := range records {
		e, err := m.ToRecordEntity(r)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (m *MemoryMapper) ToLogEntity(l *model.AgentLog) *entity.AgentLog {
	if l == nil {
		return nil
	}
	return &entity.AgentLog{
		Id:        l.Id,
		AgentName: l.AgentName,
		Action:    l.Action,
		Details:   l.Details,
		Timestamp: l.Timestamp,
	}
}

func (m *MemoryMapper) ToLogModel(l *entity.AgentLog) *model.AgentLog {
	if l == nil {
		return nil
	}
	return &model.AgentLog{
		Id:        l.Id,
		AgentName: l.AgentName,
		Action:    l.Action,
		Details:   l.Details,
		Timestamp: l.Timestamp,
	}
}

func (m *MemoryMapper) ToLogEntities(logs []*model.AgentLog) []*entity.AgentLog {
	entities := make([]*entity.AgentLog, len(logs))
	for i, l := range logs {
		entities[i] = m.ToLogEntity(l)
	}
	return entities
}
