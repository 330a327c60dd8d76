package entity

import (
	"database/sql"
	"time"
)

// 待审批动作状态机
const (
	ActionStatusPending  = "pending"
	ActionStatusApproved = "approved"
	ActionStatusRejected = "rejected"
	ActionStatusExpired  = "expired"
	ActionStatusExecuted = "executed"
	ActionStatusFailed   = "failed"
)

// PendingAction 等待人工审批的变更类工具调用
type PendingAction struct {
	Id            int64          `gorm:"column:id;primaryKey;autoIncrement"`
	ActionUuid    string         `gorm:"column:action_uuid;type:char(36);not null;uniqueIndex:uniq_agent_action_uuid"`
	SessionId     int64          `gorm:"column:session_id;not null;index:idx_agent_action_session"`
	MessageId     sql.NullInt64  `gorm:"column:message_id;type:bigint"`
	RequesterId   string         `gorm:"column:requester_id;type:varchar(36);not null;index:idx_agent_action_requester"`
	ToolName      string         `gorm:"column:tool_name;type:varchar(100);not null"`
	ArgumentsJson string         `gorm:"column:arguments_json;type:json;not null"`
	Summary       string         `gorm:"column:summary;type:varchar(512);not null"`
	Status        string         `gorm:"column:status;type:varchar(20);not null;default:pending;index:idx_agent_action_status"`
	ExternalRef   sql.NullString `gorm:"column:external_ref;type:varchar(128);uniqueIndex:uniq_agent_action_ext"`
	ResultJson    string         `gorm:"column:result_json;type:json"`
	ErrorMsg      string         `gorm:"column:error_msg;type:varchar(512)"`
	ResolvedBy    string         `gorm:"column:resolved_by;type:varchar(64)"`
	ResolvedAt    sql.NullTime   `gorm:"column:resolved_at;type:datetime"`
	ExpiresAt     time.Time      `gorm:"column:expires_at;type:datetime;not null;index:idx_agent_action_expires"`
	CreatedAt     time.Time      `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;type:datetime;not null"`
}

func (PendingAction) TableName() string { return "agent_pending_action" }

// IsTerminal 是否已到达终态
func (p *PendingAction) IsTerminal() bool {
	switch p.Status {
	case ActionStatusRejected, ActionStatusExpired, ActionStatusExecuted, ActionStatusFailed:
		return true
	}
	return false
}

// WallClockExpired 按墙钟判断是否已过期（清扫任务落地前也成立）
func (p *PendingAction) WallClockExpired(now time.Time) bool {
	return p.Status == ActionStatusPending && !now.Before(p.ExpiresAt)
}
