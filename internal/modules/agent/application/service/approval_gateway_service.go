package service

import (
	"context"
	"strings"

	"StorePilot/internal/modules/agent/application/dto/respond"
	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/internal/modules/agent/infrastructure/notify"
	"StorePilot/pkg/ws"
	"StorePilot/pkg/zlog"

	"go.uber.org/zap"
)

// 审批决定
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ActionResumer 动作到达终态后续跑被挂起对话轮次的入口，由对话编排实现
type ActionResumer interface {
	ResumeOnDecision(ctx context.Context, action *entity.PendingAction) (*respond.ChatResumeRespond, error)
}

// ApprovalGatewayService 审批网关：负责卡片的发送与改写，
// 并把渠道回调翻译成队列状态迁移
type ApprovalGatewayService interface {
	// RequestApproval 为已入队动作发送审批卡片并绑定消息标识。
	// 通知渠道故障不阻断主流程，动作仍可从管理后台裁决
	RequestApproval(ctx context.Context, action *entity.PendingAction)

	// Decide 按 UUID 裁决动作，approve 会同步执行；终态卡片随之改写
	Decide(ctx context.Context, actionUuid, decision, reviewer string) (*entity.PendingAction, error)

	// DecideByCallback 按渠道回调的 action_id（带 approve_/reject_ 前缀）裁决
	DecideByCallback(ctx context.Context, callbackActionId, reviewer string) (*entity.PendingAction, error)

	// SweepExpired 清扫超期动作，改写其卡片并把过期说明落回各自会话
	SweepExpired(ctx context.Context) (int, error)

	// BindResumer 回绑对话续跑入口。对话编排依赖网关，只能在两者都构建后绑定
	BindResumer(resumer ActionResumer)
}

type approvalGatewayServiceImpl struct {
	queue    ActionQueueService
	notifier notify.Notifier
	hub      *ws.Hub
	resumer  ActionResumer
}

// NewApprovalGatewayService 创建 ApprovalGatewayService，hub 可为 nil
func NewApprovalGatewayService(queue ActionQueueService, notifier notify.Notifier, hub *ws.Hub) ApprovalGatewayService {
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	return &approvalGatewayServiceImpl{
		queue:    queue,
		notifier: notifier,
		hub:      hub,
	}
}

func (s *approvalGatewayServiceImpl) RequestApproval(ctx context.Context, action *entity.PendingAction) {
	externalRef, err := s.notifier.PostApprovalCard(ctx, action)
	if err != nil {
		zlog.Error("post approval card failed",
			zap.String("action_uuid", action.ActionUuid),
			zap.Error(err))
		return
	}
	if externalRef == "" {
		return
	}
	if err := s.queue.AttachExternalRef(ctx, action.ActionUuid, externalRef); err != nil {
		zlog.Error("attach external ref failed",
			zap.String("action_uuid", action.ActionUuid),
			zap.String("external_ref", externalRef),
			zap.Error(err))
		return
	}
	action.ExternalRef.String = externalRef
	action.ExternalRef.Valid = true
}

func (s *approvalGatewayServiceImpl) Decide(ctx context.Context, actionUuid, decision, reviewer string) (*entity.PendingAction, error) {
	var (
		action *entity.PendingAction
		err    error
	)
	switch decision {
	case DecisionApprove:
		action, err = s.queue.Approve(ctx, actionUuid, reviewer)
	case DecisionReject:
		action, err = s.queue.Reject(ctx, actionUuid, reviewer)
	default:
		return nil, entity.ErrInvalidTransition
	}

	// 过期裁决也要改写卡片，让审批人看到动作已失效
	if action != nil && action.IsTerminal() {
		s.updateCard(ctx, action)
		s.pushResolved(action)
	}
	// 裁决时才发现已过期：过期说明也要落回会话，调用方不会再续跑
	if err == entity.ErrActionExpired && action != nil && action.Status == entity.ActionStatusExpired {
		s.resume(ctx, action)
	}
	if err != nil {
		return action, err
	}
	return action, nil
}

func (s *approvalGatewayServiceImpl) BindResumer(resumer ActionResumer) {
	s.resumer = resumer
}

func (s *approvalGatewayServiceImpl) resume(ctx context.Context, action *entity.PendingAction) {
	if s.resumer == nil {
		return
	}
	if _, err := s.resumer.ResumeOnDecision(ctx, action); err != nil {
		zlog.Error("resume after expiry failed",
			zap.String("action_uuid", action.ActionUuid),
			zap.Error(err))
	}
}

func (s *approvalGatewayServiceImpl) DecideByCallback(ctx context.Context, callbackActionId, reviewer string) (*entity.PendingAction, error) {
	switch {
	case strings.HasPrefix(callbackActionId, notify.ApproveActionPrefix):
		return s.Decide(ctx, strings.TrimPrefix(callbackActionId, notify.ApproveActionPrefix), DecisionApprove, reviewer)
	case strings.HasPrefix(callbackActionId, notify.RejectActionPrefix):
		return s.Decide(ctx, strings.TrimPrefix(callbackActionId, notify.RejectActionPrefix), DecisionReject, reviewer)
	}
	return nil, entity.ErrUnknownReference
}

func (s *approvalGatewayServiceImpl) SweepExpired(ctx context.Context) (int, error) {
	swept, err := s.queue.SweepExpired(ctx)
	for _, action := range swept {
		s.updateCard(ctx, action)
		s.pushResolved(action)
		s.resume(ctx, action)
	}
	return len(swept), err
}

func (s *approvalGatewayServiceImpl) updateCard(ctx context.Context, action *entity.PendingAction) {
	if !action.ExternalRef.Valid || action.ExternalRef.String == "" {
		return
	}
	if err := s.notifier.UpdateCard(ctx, action.ExternalRef.String, action); err != nil {
		zlog.Error("update approval card failed",
			zap.String("action_uuid", action.ActionUuid),
			zap.Error(err))
	}
}

// pushResolved 把终态推给发起人的在线客户端
func (s *approvalGatewayServiceImpl) pushResolved(action *entity.PendingAction) {
	if s.hub == nil || action.RequesterId == "" {
		return
	}
	_ = s.hub.SendJSON(action.RequesterId, map[string]interface{}{
		"type":        "action_resolved",
		"action_uuid": action.ActionUuid,
		"status":      action.Status,
		"tool_name":   action.ToolName,
	})
}
