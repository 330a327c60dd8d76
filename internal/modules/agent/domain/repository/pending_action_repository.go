package repository

import (
	"context"
	"time"

	"StorePilot/internal/modules/agent/domain/entity"
)

// ActionUpdate 状态迁移时附带写入的字段
type ActionUpdate struct {
	ResultJson string
	ErrorMsg   string
	ResolvedBy string
}

// PendingActionRepository 待审批动作仓储接口，状态迁移使用条件更新保证并发安全
type PendingActionRepository interface {
	// CreateAction 写入一条待审批动作
	CreateAction(ctx context.Context, action *entity.PendingAction) error

	// GetByUuid 按外部 UUID 获取动作，不存在返回 nil, nil
	GetByUuid(ctx context.Context, actionUuid string) (*entity.PendingAction, error)

	// GetByExternalRef 按审批渠道回执标识获取动作，不存在返回 nil, nil
	GetByExternalRef(ctx context.Context, externalRef string) (*entity.PendingAction, error)

	// AttachExternalRef 绑定审批渠道回执标识（仅 pending 状态可绑定）
	AttachExternalRef(ctx context.Context, actionUuid, externalRef string) error

	// TransitionStatus 条件更新：仅当当前状态为 fromStatus 时迁移到 toStatus，
	// 竞争失败返回 entity.ErrInvalidTransition
	TransitionStatus(ctx context.Context, actionUuid, fromStatus, toStatus string, update ActionUpdate) error

	// ListExpired 已过墙钟有效期但仍处于 pending 的动作
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*entity.PendingAction, error)

	// ListBySession 某会话下的动作（按创建时间倒序）
	ListBySession(ctx context.Context, sessionId int64, limit, offset int) ([]*entity.PendingAction, error)

	// ListPendingByRequester 某管理员名下仍在等待审批的动作
	ListPendingByRequester(ctx context.Context, requesterId string, limit, offset int) ([]*entity.PendingAction, error)

	// DeleteBySession 删除某会话的全部动作（会话删除时级联调用）
	DeleteBySession(ctx context.Context, sessionId int64) error
}
