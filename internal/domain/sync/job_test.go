package sync

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobLifecycle(t *testing.T) {
	job := NewJob(uuid.New(), EntityKindProducts, nil)
	assert.Equal(t, StatusPending, job.Status)
	assert.Nil(t, job.StartedAt)

	require.NoError(t, job.Start())
	assert.Equal(t, StatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)

	require.NoError(t, job.RecordProgress(200, 198, 2, 0, "cursor-1"))
	require.NoError(t, job.RecordProgress(200, 200, 0, 0, "cursor-2"))
	require.NoError(t, job.RecordProgress(47, 40, 3, 4, "cursor-3"))

	require.NoError(t, job.Complete())
	assert.Equal(t, StatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)

	assert.Equal(t, int64(447), job.TotalItems)
	assert.Equal(t, int64(447), job.ProcessedItems)
	assert.Equal(t, int64(438), job.SuccessCount)
	assert.Equal(t, int64(5), job.ErrorCount)
	assert.Equal(t, int64(4), job.SkipCount)
	assert.Equal(t, "cursor-3", job.Cursor)
}

func TestJobStartRequiresPending(t *testing.T) {
	job := NewJob(uuid.New(), EntityKindOrders, nil)
	require.NoError(t, job.Start())

	err := job.Start()
	assert.Error(t, err)
	assert.Equal(t, StatusRunning, job.Status)
}

func TestJobTerminalStatesAreFinal(t *testing.T) {
	job := NewJob(uuid.New(), EntityKindOrders, nil)
	require.NoError(t, job.Start())
	require.NoError(t, job.Complete())

	assert.Error(t, job.Fail("late failure"))
	assert.Error(t, job.Cancel())
	assert.Error(t, job.Pause())
	assert.Error(t, job.RecordProgress(1, 1, 0, 0, ""))
	assert.Equal(t, StatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMessage)
}

func TestJobFailCapturesMessage(t *testing.T) {
	job := NewJob(uuid.New(), EntityKindCustomers, nil)
	require.NoError(t, job.Start())

	require.NoError(t, job.Fail("platform authentication failed"))
	assert.Equal(t, StatusFailed, job.Status)
	assert.Equal(t, "platform authentication failed", job.ErrorMessage)
	require.NotNil(t, job.CompletedAt)
}

func TestJobPauseAndResume(t *testing.T) {
	job := NewJob(uuid.New(), EntityKindProducts, nil)
	require.NoError(t, job.Start())

	require.NoError(t, job.Pause())
	assert.Equal(t, StatusPaused, job.Status)

	// progress while paused is rejected
	assert.Error(t, job.RecordProgress(10, 10, 0, 0, "c"))

	require.NoError(t, job.Resume())
	assert.Equal(t, StatusRunning, job.Status)
	require.NoError(t, job.RecordProgress(10, 10, 0, 0, "c"))
}

func TestJobCancelFromRunning(t *testing.T) {
	job := NewJob(uuid.New(), EntityKindOrders, nil)
	require.NoError(t, job.Start())
	require.NoError(t, job.Cancel())
	assert.Equal(t, StatusCancelled, job.Status)
	require.NotNil(t, job.CompletedAt)
}

func TestJobProcessedNeverExceedsTotal(t *testing.T) {
	job := NewJob(uuid.New(), EntityKindProducts, nil)
	require.NoError(t, job.Start())
	require.NoError(t, job.RecordProgress(250, 250, 0, 0, "c"))
	assert.GreaterOrEqual(t, job.TotalItems, job.ProcessedItems)
}

func TestEntityKindValidation(t *testing.T) {
	assert.True(t, EntityKindProducts.IsValid())
	assert.True(t, EntityKindOrders.IsValid())
	assert.True(t, EntityKindCustomers.IsValid())
	assert.False(t, EntityKind("inventory").IsValid())
}

func TestRequestValidate(t *testing.T) {
	req := Request{TenantID: uuid.New(), EntityKind: EntityKindProducts, Mode: ModeFull}
	assert.NoError(t, req.Validate())

	assert.Error(t, Request{EntityKind: EntityKindProducts, Mode: ModeFull}.Validate())
	assert.Error(t, Request{TenantID: uuid.New(), EntityKind: "x", Mode: ModeFull}.Validate())
	assert.Error(t, Request{TenantID: uuid.New(), EntityKind: EntityKindOrders, Mode: "y"}.Validate())
}
