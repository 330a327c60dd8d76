package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"StorePilot/internal/modules/agent/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueueForTest() (ActionQueueService, *fakeActionRepo, *fakeExecutor) {
	repo := newFakeActionRepo()
	executor := newFakeExecutor()
	return NewActionQueueService(repo, executor, nil, testConfig()), repo, executor
}

func enqueueTest(t *testing.T, queue ActionQueueService) *entity.PendingAction {
	t.Helper()
	action, err := queue.Enqueue(context.Background(), 1, 7, "admin-1", "issue_refund", `{"order_id":"1001"}`, "退款")
	require.NoError(t, err)
	return action
}

func TestEnqueue(t *testing.T) {
	queue, _, _ := newQueueForTest()
	action := enqueueTest(t, queue)

	assert.NotEmpty(t, action.ActionUuid)
	assert.Equal(t, entity.ActionStatusPending, action.Status)
	assert.Equal(t, "issue_refund", action.ToolName)
	require.True(t, action.MessageId.Valid)
	assert.EqualValues(t, 7, action.MessageId.Int64)
	assert.WithinDuration(t, time.Now().Add(time.Hour), action.ExpiresAt, 5*time.Second)
}

func TestApproveExecutes(t *testing.T) {
	queue, repo, executor := newQueueForTest()
	executor.results["issue_refund"] = `{"refund_id": "re_1"}`
	action := enqueueTest(t, queue)

	resolved, err := queue.Approve(context.Background(), action.ActionUuid, "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ActionStatusExecuted, resolved.Status)
	assert.Equal(t, `{"refund_id": "re_1"}`, resolved.ResultJson)
	assert.Equal(t, "reviewer-1", resolved.ResolvedBy)
	assert.Equal(t, []string{"issue_refund"}, executor.calls)

	stored, err := repo.GetByUuid(context.Background(), action.ActionUuid)
	require.NoError(t, err)
	assert.Equal(t, entity.ActionStatusExecuted, stored.Status)
}

func TestApproveExecutionFailure(t *testing.T) {
	queue, repo, executor := newQueueForTest()
	executor.errs["issue_refund"] = errors.New("upstream 502")
	action := enqueueTest(t, queue)

	resolved, err := queue.Approve(context.Background(), action.ActionUuid, "reviewer-1")
	require.NoError(t, err, "execution failure is reported through action status, not an error")
	assert.Equal(t, entity.ActionStatusFailed, resolved.Status)
	assert.Equal(t, "upstream 502", resolved.ErrorMsg)

	stored, _ := repo.GetByUuid(context.Background(), action.ActionUuid)
	assert.Equal(t, entity.ActionStatusFailed, stored.Status)
}

func TestRejectThenApprove(t *testing.T) {
	queue, _, executor := newQueueForTest()
	action := enqueueTest(t, queue)

	rejected, err := queue.Reject(context.Background(), action.ActionUuid, "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ActionStatusRejected, rejected.Status)

	// 已拒绝的动作不可再批准，也绝不能被执行
	_, err = queue.Approve(context.Background(), action.ActionUuid, "reviewer-2")
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
	assert.Empty(t, executor.calls)
}

func TestDoubleApprove(t *testing.T) {
	queue, _, executor := newQueueForTest()
	action := enqueueTest(t, queue)

	_, err := queue.Approve(context.Background(), action.ActionUuid, "reviewer-1")
	require.NoError(t, err)
	_, err = queue.Approve(context.Background(), action.ActionUuid, "reviewer-2")
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
	assert.Len(t, executor.calls, 1, "a second approval must not re-execute")
}

func TestApproveExpiredAction(t *testing.T) {
	queue, repo, executor := newQueueForTest()
	action := enqueueTest(t, queue)

	// 把有效期拨回过去
	repo.mu.Lock()
	repo.actions[action.ActionUuid].ExpiresAt = time.Now().Add(-time.Minute)
	repo.mu.Unlock()

	resolved, err := queue.Approve(context.Background(), action.ActionUuid, "reviewer-1")
	assert.ErrorIs(t, err, entity.ErrActionExpired)
	assert.Equal(t, entity.ActionStatusExpired, resolved.Status)
	assert.Empty(t, executor.calls)
}

func TestApproveUnknownAction(t *testing.T) {
	queue, _, _ := newQueueForTest()
	_, err := queue.Approve(context.Background(), "no-such-uuid", "reviewer-1")
	assert.ErrorIs(t, err, entity.ErrUnknownReference)
}

func TestSweepExpired(t *testing.T) {
	queue, repo, _ := newQueueForTest()
	stale := enqueueTest(t, queue)
	fresh := enqueueTest(t, queue)

	repo.mu.Lock()
	repo.actions[stale.ActionUuid].ExpiresAt = time.Now().Add(-time.Minute)
	repo.mu.Unlock()

	swept, err := queue.SweepExpired(context.Background())
	require.NoError(t, err)
	require.Len(t, swept, 1)
	assert.Equal(t, stale.ActionUuid, swept[0].ActionUuid)
	assert.Equal(t, entity.ActionStatusExpired, swept[0].Status)

	// 再扫一遍应当无事发生
	swept, err = queue.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Empty(t, swept)

	stored, _ := repo.GetByUuid(context.Background(), fresh.ActionUuid)
	assert.Equal(t, entity.ActionStatusPending, stored.Status)
}

func TestSweepExpiredDrainsAllBatches(t *testing.T) {
	queue, repo, _ := newQueueForTest()

	// 超过单批上限，清扫应当分批处理到没有剩余
	total := sweepBatchSize + 50
	for i := 0; i < total; i++ {
		action := enqueueTest(t, queue)
		repo.mu.Lock()
		repo.actions[action.ActionUuid].ExpiresAt = time.Now().Add(-time.Minute)
		repo.mu.Unlock()
	}

	swept, err := queue.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Len(t, swept, total)

	swept, err = queue.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Empty(t, swept)
}

func TestAttachExternalRefOnlyWhilePending(t *testing.T) {
	queue, _, _ := newQueueForTest()
	action := enqueueTest(t, queue)

	require.NoError(t, queue.AttachExternalRef(context.Background(), action.ActionUuid, "C123:1700000000.1"))

	got, err := queue.GetByExternalRef(context.Background(), "C123:1700000000.1")
	require.NoError(t, err)
	assert.Equal(t, action.ActionUuid, got.ActionUuid)

	_, err = queue.Reject(context.Background(), action.ActionUuid, "reviewer-1")
	require.NoError(t, err)
	err = queue.AttachExternalRef(context.Background(), action.ActionUuid, "C123:1700000000.2")
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
}
