package service

import (
	"context"
	"testing"
	"time"

	"ai-docrouter-be/internal/entity"
	memrepo "ai-docrouter-be/internal/repository/memory"
	"ai-docrouter-be/pkg/document"
	"ai-docrouter-be/pkg/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unreachableRepository struct{}

func (unreachableRepository) PutRecord(context.Context, *entity.SessionRecord) error {
	return errUpstream
}
func (unreachableRepository) GetRecord(context.Context, string) (*entity.SessionRecord, error) {
	return nil, errUpstream
}
func (unreachableRepository) ListRecords(context.Context) ([]*entity.SessionRecord, error) {
	return nil, errUpstream
}
func (unreachableRepository) AppendLog(context.Context, *entity.AgentLog) error {
	return errUpstream
}
func (unreachableRepository) ListLogs(context.Context, int) ([]*entity.AgentLog, error) {
	return nil, errUpstream
}

func TestMemoryService_Sessions(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.NewMemoryRepository()
	now := time.Now().UTC()
	require.NoError(t, repo.PutRecord(ctx, &entity.SessionRecord{SessionId: "old", Data: document.Fields{}, CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.PutRecord(ctx, &entity.SessionRecord{SessionId: "new", Data: document.Fields{"k": "v"}, CreatedAt: now}))

	svc := NewMemoryService(memory.NewManager(repo, repo, nil), "ephemeral", "ollama")

	all, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].SessionId)
	assert.Equal(t, "old", all[1].SessionId)

	one, err := svc.GetSession(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "v", one.Data["k"])

	_, err = svc.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryService_LogLimits(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.NewMemoryRepository()
	mgr := memory.NewManager(repo, repo, nil)
	for i := 0; i < memrepo.MaxLogEntries; i++ {
		mgr.LogActivity(ctx, "Test", "tick", "")
	}
	svc := NewMemoryService(mgr, "ephemeral", "none")

	logs, err := svc.ListLogs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, logs, memory.DefaultLogLimit)

	logs, err = svc.ListLogs(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 10)

	logs, err = svc.ListLogs(ctx, MaxLogLimit+1)
	require.NoError(t, err)
	assert.Len(t, logs, memrepo.MaxLogEntries)
}

func TestMemoryService_HealthReportsDegradedStorage(t *testing.T) {
	ctx := context.Background()

	healthy := NewMemoryService(memory.NewManager(memrepo.NewMemoryRepository(), memrepo.NewMemoryRepository(), nil), "ephemeral", "none")
	h := healthy.Health(ctx)
	assert.Equal(t, "ephemeral", h.Storage)
	assert.Equal(t, "none", h.LLMProvider)
	assert.False(t, h.DegradedStorage)

	degraded := NewMemoryService(memory.NewManager(unreachableRepository{}, memrepo.NewMemoryRepository(), nil), "durable", "ollama")
	assert.True(t, degraded.Health(ctx).DegradedStorage)
}
