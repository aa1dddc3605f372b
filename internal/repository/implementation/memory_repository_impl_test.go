package implementation

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"ai-docrouter-be/internal/entity"
	"ai-docrouter-be/pkg/database"
	"ai-docrouter-be/pkg/document"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *MemoryRepositoryImpl {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)

	repo := NewMemoryRepository(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestMemoryRepositoryImpl_EnsureSchemaIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)

	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() { errs <- repo.EnsureSchema(context.Background()) }()
	}
	for i := 0; i < 3; i++ {
		assert.NoError(t, <-errs)
	}
}

func TestMemoryRepositoryImpl_RecordUpsertKeepsCreatedAt(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	id := "test_" + uuid.NewString()[:8]

	got, err := repo.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	first := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.PutRecord(ctx, &entity.SessionRecord{
		SessionId: id,
		Data:      document.Fields{"classification": map[string]interface{}{"format": "JSON"}},
		CreatedAt: first,
	}))
	require.NoError(t, repo.PutRecord(ctx, &entity.SessionRecord{
		SessionId: id,
		Data:      document.Fields{"agent": "Email"},
		CreatedAt: first.Add(time.Hour),
	}))

	got, err = repo.GetRecord(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, document.Fields{"agent": "Email"}, got.Data)
	assert.WithinDuration(t, first, got.CreatedAt, time.Millisecond)
}

func TestMemoryRepositoryImpl_LogsNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	agent := "Test-" + uuid.NewString()[:8]
	base := time.Now().UTC().Add(time.Hour)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.AppendLog(ctx, &entity.AgentLog{
			Id:        uuid.NewString(),
			AgentName: agent,
			Action:    fmt.Sprintf("step_%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	logs, err := repo.ListLogs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "step_2", logs[0].Action)
	assert.Equal(t, "step_1", logs[1].Action)
}
