package notify

import (
	"context"

	"StorePilot/internal/modules/agent/domain/entity"
)

// Notifier 审批通知渠道。PostApprovalCard 返回渠道侧的消息标识，
// 后续凭它定位并改写卡片
type Notifier interface {
	// PostApprovalCard 发送带批准/拒绝按钮的审批卡片
	PostApprovalCard(ctx context.Context, action *entity.PendingAction) (externalRef string, err error)

	// UpdateCard 动作到达终态后改写卡片，移除按钮
	UpdateCard(ctx context.Context, externalRef string, action *entity.PendingAction) error
}

// NoopNotifier 未配置通知渠道时的空实现，审批只能走管理后台接口
type NoopNotifier struct{}

func (NoopNotifier) PostApprovalCard(ctx context.Context, action *entity.PendingAction) (string, error) {
	return "", nil
}

func (NoopNotifier) UpdateCard(ctx context.Context, externalRef string, action *entity.PendingAction) error {
	return nil
}

var _ Notifier = (*NoopNotifier)(nil)
