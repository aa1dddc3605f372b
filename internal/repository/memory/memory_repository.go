package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ai-docrouter-be/internal/entity"
	"ai-docrouter-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// MaxLogEntries is how many audit entries the in-process store retains.
const MaxLogEntries = 100

// MemoryRepository is the in-process storage backend. Records never expire;
// the audit log keeps the newest MaxLogEntries entries.
type MemoryRepository struct {
	records *cache.Cache

	mu     sync.Mutex
	logs   []*entity.AgentLog
	logCap int
}

var _ contract.MemoryRepository = &MemoryRepository{}

func NewMemoryRepository() *MemoryRepository {
	return NewMemoryRepositoryWithCapacity(MaxLogEntries)
}

func NewMemoryRepositoryWithCapacity(logCap int) *MemoryRepository {
	if logCap <= 0 {
		logCap = MaxLogEntries
	}
	return &MemoryRepository{
		// No default expiration and no janitor: retention is not this layer's concern.
		records: cache.New(cache.NoExpiration, 0),
		logs:    make([]*entity.AgentLog, 0, logCap),
		logCap:  logCap,
	}
}

func (r *MemoryRepository) PutRecord(ctx context.Context, record *entity.SessionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := copyRecord(record)
	if existing, found := r.records.Get(record.SessionId); found {
		stored.CreatedAt = existing.(*entity.SessionRecord).CreatedAt
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.records.Set(record.SessionId, stored, cache.NoExpiration)
	return nil
}

func (r *MemoryRepository) GetRecord(ctx context.Context, sessionId string) (*entity.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if x, found := r.records.Get(sessionId); found {
		return copyRecord(x.(*entity.SessionRecord)), nil
	}
	return nil, nil
}

func (r *MemoryRepository) ListRecords(ctx context.Context) ([]*entity.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := r.records.Items()
	records := make([]*entity.SessionRecord, 0, len(items))
	for _, item := range items {
		records = append(records, copyRecord(item.Object.(*entity.SessionRecord)))
	}
	return records, nil
}

func (r *MemoryRepository) AppendLog(ctx context.Context, entry *entity.AgentLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := *entry

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.logs) >= r.logCap {
		// Drop oldest first.
		copy(r.logs, r.logs[len(r.logs)-r.logCap+1:])
		r.logs = r.logs[:r.logCap-1]
	}
	r.logs = append(r.logs, &e)
	return nil
}

func (r *MemoryRepository) ListLogs(ctx context.Context, limit int) ([]*entity.AgentLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	out := make([]*entity.AgentLog, 0, len(r.logs))
	for i := len(r.logs) - 1; i >= 0; i-- {
		e := *r.logs[i]
		out = append(out, &e)
	}
	r.mu.Unlock()

	// Entries are appended in arrival order; a stable sort keeps that order for equal timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LogCount is the number of retained audit entries.
func (r *MemoryRepository) LogCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.logs)
}

func copyRecord(r *entity.SessionRecord) *entity.SessionRecord {
	return &entity.SessionRecord{
		SessionId: r.SessionId,
		Data:      r.Data.Clone(),
		CreatedAt: r.CreatedAt,
	}
}
