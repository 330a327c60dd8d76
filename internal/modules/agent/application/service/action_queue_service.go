package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"StorePilot/internal/config"
	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/internal/modules/agent/domain/repository"
	"StorePilot/internal/modules/agent/infrastructure/commerce"
	"StorePilot/internal/modules/agent/infrastructure/mq"
	"StorePilot/pkg/util"
	"StorePilot/pkg/zlog"

	"go.uber.org/zap"
)

// ActionQueueService 变更类工具调用的持久化审批队列。
// 状态机：pending -> approved/rejected/expired，approved -> executed/failed
type ActionQueueService interface {
	// Enqueue 入队一条待审批动作，messageId 关联触发它的调用消息（0 表示无）
	Enqueue(ctx context.Context, sessionId, messageId int64, requesterId, toolName, argsJSON, summary string) (*entity.PendingAction, error)

	// AttachExternalRef 绑定审批渠道的消息标识
	AttachExternalRef(ctx context.Context, actionUuid, externalRef string) error

	// Approve 批准并立即执行。动作已过墙钟有效期时先落为 expired 并返回
	// entity.ErrActionExpired；状态竞争返回 entity.ErrInvalidTransition
	Approve(ctx context.Context, actionUuid, reviewer string) (*entity.PendingAction, error)

	// Reject 拒绝动作
	Reject(ctx context.Context, actionUuid, reviewer string) (*entity.PendingAction, error)

	// SweepExpired 把所有已超期的 pending 动作落为 expired，返回本次处理的动作
	SweepExpired(ctx context.Context) ([]*entity.PendingAction, error)

	// GetAction 按 UUID 获取动作，不存在返回 entity.ErrUnknownReference
	GetAction(ctx context.Context, actionUuid string) (*entity.PendingAction, error)

	// GetByExternalRef 按渠道消息标识获取动作，不存在返回 entity.ErrUnknownReference
	GetByExternalRef(ctx context.Context, externalRef string) (*entity.PendingAction, error)

	// ListBySession 会话下的动作列表
	ListBySession(ctx context.Context, sessionId int64, limit, offset int) ([]*entity.PendingAction, error)

	// ListPendingByRequester 管理员名下待审批的动作列表
	ListPendingByRequester(ctx context.Context, requesterId string, limit, offset int) ([]*entity.PendingAction, error)

	// DeleteBySession 会话删除时连带清理其全部动作
	DeleteBySession(ctx context.Context, sessionId int64) error
}

type actionQueueServiceImpl struct {
	actionRepo repository.PendingActionRepository
	executor   commerce.ToolExecutor
	audit      *mq.AuditEmitter
	ttl        time.Duration
}

// NewActionQueueService 创建 ActionQueueService，audit 可为 nil
func NewActionQueueService(
	actionRepo repository.PendingActionRepository,
	executor commerce.ToolExecutor,
	audit *mq.AuditEmitter,
	conf *config.Config,
) ActionQueueService {
	return &actionQueueServiceImpl{
		actionRepo: actionRepo,
		executor:   executor,
		audit:      audit,
		ttl:        conf.AgentConfig.ActionTTL(),
	}
}

func (s *actionQueueServiceImpl) Enqueue(ctx context.Context, sessionId, messageId int64, requesterId, toolName, argsJSON, summary string) (*entity.PendingAction, error) {
	if sessionId <= 0 || strings.TrimSpace(toolName) == "" {
		return nil, fmt.Errorf("sessionId and toolName are required")
	}
	if argsJSON == "" {
		argsJSON = "{}"
	}

	now := time.Now()
	action := &entity.PendingAction{
		ActionUuid:    util.GenerateUUID(),
		SessionId:     sessionId,
		MessageId:     sql.NullInt64{Int64: messageId, Valid: messageId > 0},
		RequesterId:   requesterId,
		ToolName:      toolName,
		ArgumentsJson: argsJSON,
		Summary:       summary,
		Status:        entity.ActionStatusPending,
		ExpiresAt:     now.Add(s.ttl),
		CreatedAt:     now,
	}
	if err := s.actionRepo.CreateAction(ctx, action); err != nil {
		return nil, err
	}

	s.audit.EmitActionEvent(ctx, mq.EventActionEnqueued, action)
	zlog.Info("action enqueued",
		zap.String("action_uuid", action.ActionUuid),
		zap.String("tool", toolName),
		zap.Int64("session_id", sessionId))
	return action, nil
}

func (s *actionQueueServiceImpl) AttachExternalRef(ctx context.Context, actionUuid, externalRef string) error {
	return s.actionRepo.AttachExternalRef(ctx, actionUuid, externalRef)
}

func (s *actionQueueServiceImpl) Approve(ctx context.Context, actionUuid, reviewer string) (*entity.PendingAction, error) {
	action, err := s.loadPending(ctx, actionUuid)
	if err != nil {
		return action, err
	}

	if err := s.actionRepo.TransitionStatus(ctx, actionUuid, entity.ActionStatusPending, entity.ActionStatusApproved,
		repository.ActionUpdate{ResolvedBy: reviewer}); err != nil {
		return nil, err
	}
	action.Status = entity.ActionStatusApproved
	action.ResolvedBy = reviewer
	s.audit.EmitActionEvent(ctx, mq.EventActionApproved, action)

	// 批准即执行
	result, execErr := s.executor.Execute(ctx, action.ToolName, action.ArgumentsJson)
	if execErr != nil {
		if err := s.actionRepo.TransitionStatus(ctx, actionUuid, entity.ActionStatusApproved, entity.ActionStatusFailed,
			repository.ActionUpdate{ErrorMsg: execErr.Error()}); err != nil {
			zlog.Error("mark action failed errored", zap.String("action_uuid", actionUuid), zap.Error(err))
		}
		action.Status = entity.ActionStatusFailed
		action.ErrorMsg = execErr.Error()
		s.audit.EmitActionEvent(ctx, mq.EventActionFailed, action)
		zlog.Warn("approved action execution failed",
			zap.String("action_uuid", actionUuid),
			zap.String("tool", action.ToolName),
			zap.Error(execErr))
		return action, nil
	}

	if err := s.actionRepo.TransitionStatus(ctx, actionUuid, entity.ActionStatusApproved, entity.ActionStatusExecuted,
		repository.ActionUpdate{ResultJson: result}); err != nil {
		return nil, err
	}
	action.Status = entity.ActionStatusExecuted
	action.ResultJson = result
	s.audit.EmitActionEvent(ctx, mq.EventActionExecuted, action)
	zlog.Info("action executed",
		zap.String("action_uuid", actionUuid),
		zap.String("tool", action.ToolName))
	return action, nil
}

func (s *actionQueueServiceImpl) Reject(ctx context.Context, actionUuid, reviewer string) (*entity.PendingAction, error) {
	action, err := s.loadPending(ctx, actionUuid)
	if err != nil {
		return action, err
	}

	if err := s.actionRepo.TransitionStatus(ctx, actionUuid, entity.ActionStatusPending, entity.ActionStatusRejected,
		repository.ActionUpdate{ResolvedBy: reviewer}); err != nil {
		return nil, err
	}
	action.Status = entity.ActionStatusRejected
	action.ResolvedBy = reviewer
	s.audit.EmitActionEvent(ctx, mq.EventActionRejected, action)
	return action, nil
}

// loadPending 加载动作并处理墙钟过期：过期的 pending 动作被顺手落为 expired
func (s *actionQueueServiceImpl) loadPending(ctx context.Context, actionUuid string) (*entity.PendingAction, error) {
	action, err := s.actionRepo.GetByUuid(ctx, actionUuid)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, entity.ErrUnknownReference
	}
	if action.IsTerminal() || action.Status != entity.ActionStatusPending {
		return action, entity.ErrInvalidTransition
	}
	if action.WallClockExpired(time.Now()) {
		if err := s.actionRepo.TransitionStatus(ctx, actionUuid, entity.ActionStatusPending, entity.ActionStatusExpired,
			repository.ActionUpdate{}); err == nil {
			action.Status = entity.ActionStatusExpired
			s.audit.EmitActionEvent(ctx, mq.EventActionExpired, action)
		}
		return action, entity.ErrActionExpired
	}
	return action, nil
}

// sweepBatchSize 单次查询的超期动作数，清扫会循环直到没有剩余
const sweepBatchSize = 200

func (s *actionQueueServiceImpl) SweepExpired(ctx context.Context) ([]*entity.PendingAction, error) {
	var swept []*entity.PendingAction
	for {
		stale, err := s.actionRepo.ListExpired(ctx, time.Now(), sweepBatchSize)
		if err != nil {
			return swept, err
		}
		if len(stale) == 0 {
			break
		}

		for _, action := range stale {
			err := s.actionRepo.TransitionStatus(ctx, action.ActionUuid, entity.ActionStatusPending, entity.ActionStatusExpired,
				repository.ActionUpdate{})
			if err == entity.ErrInvalidTransition {
				// 并发方已迁走，跳过
				continue
			}
			if err != nil {
				return swept, err
			}
			action.Status = entity.ActionStatusExpired
			s.audit.EmitActionEvent(ctx, mq.EventActionExpired, action)
			swept = append(swept, action)
		}
	}
	if len(swept) > 0 {
		zlog.Info("expired actions swept", zap.Int("count", len(swept)))
	}
	return swept, nil
}

func (s *actionQueueServiceImpl) GetAction(ctx context.Context, actionUuid string) (*entity.PendingAction, error) {
	action, err := s.actionRepo.GetByUuid(ctx, actionUuid)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, entity.ErrUnknownReference
	}
	return action, nil
}

func (s *actionQueueServiceImpl) GetByExternalRef(ctx context.Context, externalRef string) (*entity.PendingAction, error) {
	action, err := s.actionRepo.GetByExternalRef(ctx, externalRef)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, entity.ErrUnknownReference
	}
	return action, nil
}

func (s *actionQueueServiceImpl) ListBySession(ctx context.Context, sessionId int64, limit, offset int) ([]*entity.PendingAction, error) {
	return s.actionRepo.ListBySession(ctx, sessionId, limit, offset)
}

func (s *actionQueueServiceImpl) ListPendingByRequester(ctx context.Context, requesterId string, limit, offset int) ([]*entity.PendingAction, error) {
	return s.actionRepo.ListPendingByRequester(ctx, requesterId, limit, offset)
}

func (s *actionQueueServiceImpl) DeleteBySession(ctx context.Context, sessionId int64) error {
	return s.actionRepo.DeleteBySession(ctx, sessionId)
}
