package respond

import "time"

// PendingActionRespond 待审批动作
type PendingActionRespond struct {
	ActionUuid  string     `json:"action_uuid"`
	SessionUuid string     `json:"session_uuid,omitempty"`
	ToolName    string     `json:"tool_name"`
	Arguments   string     `json:"arguments"`
	Summary     string     `json:"summary"`
	Status      string     `json:"status"`
	Result      string     `json:"result,omitempty"`
	ErrorMsg    string     `json:"error_msg,omitempty"`
	ResolvedBy  string     `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ActionListRespond 动作列表
type ActionListRespond struct {
	Actions []PendingActionRespond `json:"actions"`
}
