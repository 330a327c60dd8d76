package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"StorePilot/internal/modules/agent/application/dto/respond"
	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/internal/modules/agent/infrastructure/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNotifier 记录卡片操作
type fakeNotifier struct {
	mu       sync.Mutex
	ref      string
	postErr  error
	posted   []*entity.PendingAction
	updated  []string
	statuses []string
}

func (n *fakeNotifier) PostApprovalCard(ctx context.Context, action *entity.PendingAction) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.postErr != nil {
		return "", n.postErr
	}
	n.posted = append(n.posted, action)
	return n.ref, nil
}

func (n *fakeNotifier) UpdateCard(ctx context.Context, externalRef string, action *entity.PendingAction) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updated = append(n.updated, externalRef)
	n.statuses = append(n.statuses, action.Status)
	return nil
}

// fakeResumer 记录被续跑的动作
type fakeResumer struct {
	mu      sync.Mutex
	resumed []*entity.PendingAction
}

func (f *fakeResumer) ResumeOnDecision(ctx context.Context, action *entity.PendingAction) (*respond.ChatResumeRespond, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumed = append(f.resumed, action)
	return &respond.ChatResumeRespond{}, nil
}

func newGatewayForTest(notifier notify.Notifier) (ApprovalGatewayService, ActionQueueService, *fakeActionRepo) {
	repo := newFakeActionRepo()
	queue := NewActionQueueService(repo, newFakeExecutor(), nil, testConfig())
	return NewApprovalGatewayService(queue, notifier, nil), queue, repo
}

func TestRequestApprovalAttachesRef(t *testing.T) {
	notifier := &fakeNotifier{ref: "C1:111.222"}
	gateway, queue, _ := newGatewayForTest(notifier)
	action := enqueueTest(t, queue)

	gateway.RequestApproval(context.Background(), action)
	require.Len(t, notifier.posted, 1)
	assert.True(t, action.ExternalRef.Valid)
	assert.Equal(t, "C1:111.222", action.ExternalRef.String)

	got, err := queue.GetByExternalRef(context.Background(), "C1:111.222")
	require.NoError(t, err)
	assert.Equal(t, action.ActionUuid, got.ActionUuid)
}

func TestDecideApproveUpdatesCard(t *testing.T) {
	notifier := &fakeNotifier{ref: "C1:111.222"}
	gateway, queue, _ := newGatewayForTest(notifier)
	action := enqueueTest(t, queue)
	gateway.RequestApproval(context.Background(), action)

	resolved, err := gateway.Decide(context.Background(), action.ActionUuid, DecisionApprove, "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ActionStatusExecuted, resolved.Status)
	require.Len(t, notifier.updated, 1)
	assert.Equal(t, "C1:111.222", notifier.updated[0])
	assert.Equal(t, entity.ActionStatusExecuted, notifier.statuses[0])
}

func TestDecideByCallbackPrefixes(t *testing.T) {
	notifier := &fakeNotifier{ref: "C1:1.2"}
	gateway, queue, _ := newGatewayForTest(notifier)

	approveMe := enqueueTest(t, queue)
	rejectMe := enqueueTest(t, queue)

	resolved, err := gateway.DecideByCallback(context.Background(), notify.ApproveActionPrefix+approveMe.ActionUuid, "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ActionStatusExecuted, resolved.Status)

	resolved, err = gateway.DecideByCallback(context.Background(), notify.RejectActionPrefix+rejectMe.ActionUuid, "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ActionStatusRejected, resolved.Status)

	_, err = gateway.DecideByCallback(context.Background(), "bogus_"+approveMe.ActionUuid, "reviewer-1")
	assert.ErrorIs(t, err, entity.ErrUnknownReference)
}

func TestDecideExpiredStillUpdatesCard(t *testing.T) {
	notifier := &fakeNotifier{ref: "C1:1.2"}
	gateway, queue, repo := newGatewayForTest(notifier)
	resumer := &fakeResumer{}
	gateway.BindResumer(resumer)
	action := enqueueTest(t, queue)
	gateway.RequestApproval(context.Background(), action)

	repo.mu.Lock()
	repo.actions[action.ActionUuid].ExpiresAt = time.Now().Add(-time.Minute)
	repo.mu.Unlock()

	resolved, err := gateway.Decide(context.Background(), action.ActionUuid, DecisionApprove, "reviewer-1")
	assert.ErrorIs(t, err, entity.ErrActionExpired)
	assert.Equal(t, entity.ActionStatusExpired, resolved.Status)

	// 审批人应当看到卡片变成过期态
	require.Len(t, notifier.statuses, 1)
	assert.Equal(t, entity.ActionStatusExpired, notifier.statuses[0])

	// 过期说明要落回会话，调用方拿到 ErrActionExpired 后不会再续跑
	require.Len(t, resumer.resumed, 1)
	assert.Equal(t, action.ActionUuid, resumer.resumed[0].ActionUuid)
}

func TestSweepExpiredUpdatesCards(t *testing.T) {
	notifier := &fakeNotifier{ref: "C1:1.2"}
	gateway, queue, repo := newGatewayForTest(notifier)
	resumer := &fakeResumer{}
	gateway.BindResumer(resumer)

	action := enqueueTest(t, queue)
	gateway.RequestApproval(context.Background(), action)
	repo.mu.Lock()
	repo.actions[action.ActionUuid].ExpiresAt = time.Now().Add(-time.Minute)
	repo.mu.Unlock()

	count, err := gateway.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, notifier.statuses, 1)
	assert.Equal(t, entity.ActionStatusExpired, notifier.statuses[0])

	// 后台扫过期的动作也要把过期说明落回各自的会话
	require.Len(t, resumer.resumed, 1)
	assert.Equal(t, action.ActionUuid, resumer.resumed[0].ActionUuid)
}

func TestNotifierFailureDoesNotBlock(t *testing.T) {
	notifier := &fakeNotifier{postErr: assert.AnError}
	gateway, queue, _ := newGatewayForTest(notifier)
	action := enqueueTest(t, queue)

	// 卡片发送失败不影响后续的后台裁决
	gateway.RequestApproval(context.Background(), action)
	assert.False(t, action.ExternalRef.Valid)

	resolved, err := gateway.Decide(context.Background(), action.ActionUuid, DecisionApprove, "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ActionStatusExecuted, resolved.Status)
}
