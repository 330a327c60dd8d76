package request

// ChatSendRequest 发送消息请求
type ChatSendRequest struct {
	SessionUuid string `json:"session_uuid"` // 会话UUID（可空，不传则创建新会话）
	Message     string `json:"message" binding:"required"`
	DomainHint  string `json:"domain_hint"` // 可空，配置后把路由范围收窄到指定业务域

}

// SessionListRequest 获取会话列表请求
type SessionListRequest struct {
	Limit  int `form:"limit"`  // 每页数量（默认20）
	Offset int `form:"offset"` // 偏移量（默认0）
}

// MessageListRequest 获取会话消息请求
type MessageListRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
