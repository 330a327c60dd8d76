package respond

import "time"

// ChatMessageRespond 单条会话消息
type ChatMessageRespond struct {
	Id        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ToolCall  string    `json:"tool_call,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSendRespond 一轮对话的结果。
// Status 为 awaiting_approval 时 PendingAction 非空，本轮挂起等待审批
type ChatSendRespond struct {
	SessionUuid   string                `json:"session_uuid"`
	Title         string                `json:"title"`
	Status        string                `json:"status"` // completed / awaiting_approval
	Reply         string                `json:"reply"`
	PendingAction *PendingActionRespond `json:"pending_action,omitempty"`
}

// ChatResumeRespond 审批落地后续跑的结果
type ChatResumeRespond struct {
	SessionUuid string `json:"session_uuid"`
	ActionUuid  string `json:"action_uuid"`
	Status      string `json:"status"`
	Reply       string `json:"reply"`
}

// SessionRespond 会话概要
type SessionRespond struct {
	SessionUuid string    `json:"session_uuid"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SessionListRespond 会话列表
type SessionListRespond struct {
	Sessions []SessionRespond `json:"sessions"`
}

// MessageListRespond 会话消息列表
type MessageListRespond struct {
	Messages []ChatMessageRespond `json:"messages"`
	Total    int64                `json:"total"`
}

// SessionMetricsRespond 会话累计用量
type SessionMetricsRespond struct {
	SessionUuid      string `json:"session_uuid"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
	TotalTokens      int64  `json:"total_tokens"`
	ModelCalls       int64  `json:"model_calls"`
	ToolCalls        int64  `json:"tool_calls"`
	TotalDurationMs  int64  `json:"total_duration_ms"`
}
