package implementation

import (
	"context"
	"errors"
	"time"

	"ai-docrouter-be/internal/entity"
	"ai-docrouter-be/internal/mapper"
	"ai-docrouter-be/internal/model"
	"ai-docrouter-be/internal/repository/contract"
	"ai-docrouter-be/internal/repository/scope"
	"ai-docrouter-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// schemaLockKey serializes concurrent schema setup across processes.
const schemaLockKey = 7305821146

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS shared_memory (
		session_id VARCHAR(64) PRIMARY KEY,
		data JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS agent_logs (
		id VARCHAR(64) PRIMARY KEY,
		agent_name VARCHAR(100) NOT NULL,
		action VARCHAR(100) NOT NULL,
		details TEXT,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_logs_timestamp ON agent_logs (timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_logs_agent_name ON agent_logs (agent_name)`,
}

type MemoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MemoryMapper
}

func NewMemoryRepository(db *gorm.DB) *MemoryRepositoryImpl {
	return &MemoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewMemoryMapper(),
	}
}

var _ contract.MemoryRepository = &MemoryRepositoryImpl{}

// EnsureSchema creates the storage tables if they are missing. Safe to call
// from several processes at once and on every startup.
func (r *MemoryRepositoryImpl) EnsureSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", schemaLockKey).Error; err != nil {
			return err
		}
		for _, stmt := range schemaStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *MemoryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MemoryRepositoryImpl) PutRecord(ctx context.Context, record *entity.SessionRecord) error {
	modelRecord, err := r.mapper.ToRecordModel(record)
	if err != nil {
		return err
	}
	if modelRecord.CreatedAt.IsZero() {
		modelRecord.CreatedAt = time.Now().UTC()
	}

	// created_at is left out of the update set so the first write wins.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data"}),
	}).Create(modelRecord).Error
}

func (r *MemoryRepositoryImpl) GetRecord(ctx context.Context, sessionId string) (*entity.SessionRecord, error) {
	var modelRecord model.SharedMemory
	query := r.applySpecifications(r.db.WithContext(ctx), specification.BySessionID{SessionID: sessionId})

	if err := query.First(&modelRecord).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToRecordEntity(&modelRecord)
}

func (r *MemoryRepositoryImpl) ListRecords(ctx context.Context) ([]*entity.SessionRecord, error) {
	var modelRecords []*model.SharedMemory
	if err := r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc).Find(&modelRecords).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToRecordEntities(modelRecords)
}

func (r *MemoryRepositoryImpl) AppendLog(ctx context.Context, entry *entity.AgentLog) error {
	modelLog := r.mapper.ToLogModel(entry)
	if modelLog.Timestamp.IsZero() {
		modelLog.Timestamp = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(modelLog).Error
}

func (r *MemoryRepositoryImpl) ListLogs(ctx context.Context, limit int) ([]*entity.AgentLog, error) {
	var modelLogs []*model.AgentLog
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.OrderBy{Field: "timestamp", Desc: true},
		specification.Pagination{Limit: limit},
	)

	if err := query.Find(&modelLogs).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToLogEntities(modelLogs), nil
}
