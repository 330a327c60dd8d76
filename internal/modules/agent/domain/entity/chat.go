package entity

import (
	"time"

	"gorm.io/gorm"
)

// 消息角色
const (
	RoleUser           = "user"
	RoleAssistant      = "assistant"
	RoleToolInvocation = "tool_invocation"
	RoleToolResult     = "tool_result"
)

// ChatSession 管理后台的一次对话
type ChatSession struct {
	Id          int64          `gorm:"column:id;primaryKey;autoIncrement"`
	SessionUuid string         `gorm:"column:session_uuid;type:char(36);not null;uniqueIndex:uniq_agent_session_uuid"`
	AdminUserId string         `gorm:"column:admin_user_id;type:varchar(36);not null;index:idx_agent_session_admin"`
	Title       string         `gorm:"column:title;type:varchar(64);not null"`
	CreatedAt   time.Time      `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;type:datetime;not null"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;type:datetime;index"`
}

func (ChatSession) TableName() string { return "agent_chat_session" }

// ChatMessage 对话消息，tool_invocation/tool_result 角色带结构化载荷
type ChatMessage struct {
	Id           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SessionId    int64     `gorm:"column:session_id;not null;index:idx_agent_message_session"`
	Role         string    `gorm:"column:role;type:varchar(20);not null"`
	Content      string    `gorm:"column:content;type:mediumtext"`
	ToolCallJson string    `gorm:"column:tool_call_json;type:json"`
	CreatedAt    time.Time `gorm:"column:created_at;type:datetime;not null"`
}

func (ChatMessage) TableName() string { return "agent_chat_message" }

// ChatSessionMetrics 会话级累计用量，单调递增
type ChatSessionMetrics struct {
	Id               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SessionId        int64     `gorm:"column:session_id;not null;uniqueIndex:uniq_agent_metrics_session"`
	PromptTokens     int64     `gorm:"column:prompt_tokens;type:bigint;not null;default:0"`
	CompletionTokens int64     `gorm:"column:completion_tokens;type:bigint;not null;default:0"`
	TotalTokens      int64     `gorm:"column:total_tokens;type:bigint;not null;default:0"`
	ModelCalls       int64     `gorm:"column:model_calls;type:bigint;not null;default:0"`
	ToolCalls        int64     `gorm:"column:tool_calls;type:bigint;not null;default:0"`
	TotalDurationMs  int64     `gorm:"column:total_duration_ms;type:bigint;not null;default:0"`
	UpdatedAt        time.Time `gorm:"column:updated_at;type:datetime;not null"`
}

func (ChatSessionMetrics) TableName() string { return "agent_chat_session_metrics" }
