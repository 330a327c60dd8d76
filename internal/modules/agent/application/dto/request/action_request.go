package request

// DecisionRequest 管理后台直接裁决待审批动作
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
}

// ActionListRequest 获取动作列表请求
type ActionListRequest struct {
	SessionUuid string `form:"session_uuid"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}
