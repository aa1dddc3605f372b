package memory

import (
	"context"
	"time"

	"ai-docrouter-be/internal/entity"
	"ai-docrouter-be/internal/pkg/logger"
	"ai-docrouter-be/internal/repository/contract"
	"ai-docrouter-be/pkg/document"

	"github.com/google/uuid"
)

const (
	DefaultLogLimit = 50
	module          = "SHARED_MEMORY"
)

// Tier names the store that served an operation.
type Tier string

const (
	TierPrimary  Tier = "primary"
	TierFallback Tier = "fallback"
)

// Status accompanies every Manager result so callers can tell whether the
// primary backend answered or the in-process fallback took over.
type Status struct {
	Tier Tier
}

func (s Status) Degraded() bool {
	return s.Tier == TierFallback
}

// ActivityNotifier receives every audit entry after it has been stored.
type ActivityNotifier interface {
	NotifyActivity(ctx context.Context, entry *entity.AgentLog)
}

// Manager owns session records and the audit log. None of its operations
// fail: a backend error reroutes the call to the fallback store, which lives
// as long as the Manager.
type Manager struct {
	primary  contract.MemoryRepository
	fallback contract.MemoryRepository
	logger   logger.ILogger
	notifier ActivityNotifier
	now      func() time.Time
}

func NewManager(primary, fallback contract.MemoryRepository, log logger.ILogger) *Manager {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Manager{
		primary:  primary,
		fallback: fallback,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetNotifier installs the downstream activity sink. Call before serving traffic.
func (m *Manager) SetNotifier(n ActivityNotifier) {
	m.notifier = n
}

// Write merges partial into the session record for sessionId. Keys in
// partial overwrite existing keys; every other key is kept.
//
// The read-merge-put is not atomic: two concurrent writers of the same
// session can lose one update.
func (m *Manager) Write(ctx context.Context, sessionId string, partial document.Fields) Status {
	current, err := m.primary.GetRecord(ctx, sessionId)
	if err != nil {
		m.warn("write", sessionId, err)

		// The fallback is in-process and only fails on cancellation, which must not drop the write.
		fctx := context.WithoutCancel(ctx)
		current, _ = m.fallback.GetRecord(fctx, sessionId)
		_ = m.fallback.PutRecord(fctx, m.merge(sessionId, current, partial))
		return Status{Tier: TierFallback}
	}

	merged := m.merge(sessionId, current, partial)
	if err := m.primary.PutRecord(ctx, merged); err != nil {
		m.warn("write", sessionId, err)

		// The primary copy was read, so merged already carries every key it had.
		_ = m.fallback.PutRecord(context.WithoutCancel(ctx), merged)
		return Status{Tier: TierFallback}
	}
	return Status{Tier: TierPrimary}
}

func (m *Manager) merge(sessionId string, current *entity.SessionRecord, partial document.Fields) *entity.SessionRecord {
	if current == nil {
		current = &entity.SessionRecord{
			SessionId: sessionId,
			Data:      document.Fields{},
			CreatedAt: m.now(),
		}
	}

	return &entity.SessionRecord{
		SessionId: sessionId,
		Data:      current.Data.Merge(partial),
		CreatedAt: current.CreatedAt,
	}
}

// Read returns the record for sessionId or nil when neither store has it.
func (m *Manager) Read(ctx context.Context, sessionId string) (*entity.SessionRecord, Status) {
	record, err := m.primary.GetRecord(ctx, sessionId)
	if err == nil {
		return record, Status{Tier: TierPrimary}
	}
	m.warn("read", sessionId, err)

	record, _ = m.fallback.GetRecord(context.WithoutCancel(ctx), sessionId)
	return record, Status{Tier: TierFallback}
}

func (m *Manager) ReadAll(ctx context.Context) ([]*entity.SessionRecord, Status) {
	records, err := m.primary.ListRecords(ctx)
	if err == nil {
		return records, Status{Tier: TierPrimary}
	}
	m.warn("read_all", "", err)

	records, _ = m.fallback.ListRecords(context.WithoutCancel(ctx))
	return records, Status{Tier: TierFallback}
}

// LogActivity appends one audit entry. It is best-effort from the caller's
// point of view and never blocks the pipeline on storage trouble.
func (m *Manager) LogActivity(ctx context.Context, component, action, detail string) Status {
	entry := &entity.AgentLog{
		Id:        uuid.NewString(),
		AgentName: component,
		Action:    action,
		Details:   detail,
		Timestamp: m.now(),
	}

	status := Status{Tier: TierPrimary}
	if err := m.primary.AppendLog(ctx, entry); err != nil {
		m.warn("log_activity", entry.Id, err)
		_ = m.fallback.AppendLog(context.WithoutCancel(ctx), entry)
		status = Status{Tier: TierFallback}
	}

	if m.notifier != nil {
		m.notifier.NotifyActivity(ctx, entry)
	}
	return status
}

// ReadLogs returns up to limit entries, newest first. A non-positive limit
// means DefaultLogLimit.
func (m *Manager) ReadLogs(ctx context.Context, limit int) ([]*entity.AgentLog, Status) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}

	logs, err := m.primary.ListLogs(ctx, limit)
	if err == nil {
		return logs, Status{Tier: TierPrimary}
	}
	m.warn("read_logs", "", err)

	logs, _ = m.fallback.ListLogs(context.WithoutCancel(ctx), limit)
	return logs, Status{Tier: TierFallback}
}

func (m *Manager) warn(op, key string, err error) {
	m.logger.Warn(module, "Primary storage failed, using in-process fallback", map[string]interface{}{
		"operation": op,
		"key":       key,
		"error":     err.Error(),
	})
}
