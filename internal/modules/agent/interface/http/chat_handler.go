package http

import (
	"strings"

	agentRequest "StorePilot/internal/modules/agent/application/dto/request"
	"StorePilot/internal/modules/agent/application/service"
	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/pkg/back"
	"StorePilot/pkg/xerr"
	"StorePilot/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler 对话HTTP Handler
type ChatHandler struct {
	svc service.ChatService
}

// NewChatHandler 创建ChatHandler
func NewChatHandler(svc service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Send 处理一条用户消息
//
// 路由: POST /agent/chat/send
// 鉴权: 需要JWT（从authed分组继承）
func (h *ChatHandler) Send(c *gin.Context) {
	var req agentRequest.ChatSendRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error("chat send bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	uuid := strings.TrimSpace(c.GetString("uuid"))
	if uuid == "" {
		back.Error(c, xerr.Unauthorized, "未登录")
		return
	}

	data, err := h.svc.SendMessage(c.Request.Context(), uuid, req)
	if err != nil {
		zlog.Error("chat send failed", zap.Error(err), zap.String("uuid", uuid))
		if err == entity.ErrSessionNotFound {
			back.Error(c, xerr.NotFound, "会话不存在")
			return
		}
	}
	back.Result(c, data, err)
}

// ListSessions 会话列表
//
// 路由: GET /agent/chat/sessions
func (h *ChatHandler) ListSessions(c *gin.Context) {
	var req agentRequest.SessionListRequest
	if err := c.BindQuery(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	uuid := strings.TrimSpace(c.GetString("uuid"))
	if uuid == "" {
		back.Error(c, xerr.Unauthorized, "未登录")
		return
	}

	data, err := h.svc.ListSessions(c.Request.Context(), uuid, req.Limit, req.Offset)
	back.Result(c, data, err)
}

// ListMessages 会话消息
//
// 路由: GET /agent/chat/sessions/:sessionUuid/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	var req agentRequest.MessageListRequest
	if err := c.BindQuery(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	uuid := strings.TrimSpace(c.GetString("uuid"))
	sessionUuid := strings.TrimSpace(c.Param("sessionUuid"))
	if uuid == "" || sessionUuid == "" {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.svc.ListMessages(c.Request.Context(), uuid, sessionUuid, req.Limit, req.Offset)
	if err == entity.ErrSessionNotFound {
		back.Error(c, xerr.NotFound, "会话不存在")
		return
	}
	back.Result(c, data, err)
}

// DeleteSession 删除会话及其消息、用量和未决动作
//
// 路由: DELETE /agent/chat/sessions/:sessionUuid
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	uuid := strings.TrimSpace(c.GetString("uuid"))
	sessionUuid := strings.TrimSpace(c.Param("sessionUuid"))
	if uuid == "" || sessionUuid == "" {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	err := h.svc.DeleteSession(c.Request.Context(), uuid, sessionUuid)
	if err == entity.ErrSessionNotFound {
		back.Error(c, xerr.NotFound, "会话不存在")
		return
	}
	back.Result(c, nil, err)
}

// GetMetrics 会话累计用量
//
// 路由: GET /agent/chat/sessions/:sessionUuid/metrics
func (h *ChatHandler) GetMetrics(c *gin.Context) {
	uuid := strings.TrimSpace(c.GetString("uuid"))
	sessionUuid := strings.TrimSpace(c.Param("sessionUuid"))
	if uuid == "" || sessionUuid == "" {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.svc.GetMetrics(c.Request.Context(), uuid, sessionUuid)
	if err == entity.ErrSessionNotFound {
		back.Error(c, xerr.NotFound, "会话不存在")
		return
	}
	back.Result(c, data, err)
}
