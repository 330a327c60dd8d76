package repository

import (
	"context"

	"StorePilot/internal/modules/agent/domain/entity"
)

// ChatSessionRepository 对话会话仓储接口
type ChatSessionRepository interface {
	// CreateSession 创建新会话
	CreateSession(ctx context.Context, session *entity.ChatSession) error

	// GetSessionByUuid 按外部 UUID 获取会话，不存在返回 nil, nil
	GetSessionByUuid(ctx context.Context, sessionUuid string) (*entity.ChatSession, error)

	// GetSessionById 按主键获取会话，不存在返回 nil, nil
	GetSessionById(ctx context.Context, sessionId int64) (*entity.ChatSession, error)

	// ListSessions 某管理员的会话列表（按更新时间倒序）
	ListSessions(ctx context.Context, adminUserId string, limit, offset int) ([]*entity.ChatSession, error)

	// UpdateSessionTitle 更新会话标题
	UpdateSessionTitle(ctx context.Context, sessionId int64, title string) error

	// TouchSession 更新会话的 updated_at（每轮消息后调用）
	TouchSession(ctx context.Context, sessionId int64) error

	// DeleteSession 删除会话本体，子表由应用层级联清理
	DeleteSession(ctx context.Context, sessionId int64) error
}

// ChatMessageRepository 对话消息仓储接口
type ChatMessageRepository interface {
	// AppendMessage 追加一条消息
	AppendMessage(ctx context.Context, msg *entity.ChatMessage) error

	// ListMessages 会话消息（按写入顺序升序）
	ListMessages(ctx context.Context, sessionId int64, limit, offset int) ([]*entity.ChatMessage, error)

	// CountMessages 会话消息总数
	CountMessages(ctx context.Context, sessionId int64) (int64, error)

	// DeleteBySession 清空某会话的全部消息
	DeleteBySession(ctx context.Context, sessionId int64) error
}

// MetricsDelta 单次模型调用产生的用量增量
type MetricsDelta struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	ModelCalls       int64
	ToolCalls        int64
	DurationMs       int64
}

// ChatMetricsRepository 会话用量仓储接口
type ChatMetricsRepository interface {
	// AddUsage 以 upsert 方式累加用量，计数只增不减
	AddUsage(ctx context.Context, sessionId int64, delta MetricsDelta) error

	// GetBySession 获取会话用量，不存在返回 nil, nil
	GetBySession(ctx context.Context, sessionId int64) (*entity.ChatSessionMetrics, error)

	// DeleteBySession 删除某会话的用量行
	DeleteBySession(ctx context.Context, sessionId int64) error
}
