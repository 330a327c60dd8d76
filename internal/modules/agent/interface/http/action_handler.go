package http

import (
	"strings"

	agentRequest "StorePilot/internal/modules/agent/application/dto/request"
	"StorePilot/internal/modules/agent/application/dto/respond"
	"StorePilot/internal/modules/agent/application/service"
	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/internal/modules/agent/domain/repository"
	"StorePilot/pkg/back"
	"StorePilot/pkg/xerr"
	"StorePilot/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ActionHandler 待审批动作HTTP Handler
type ActionHandler struct {
	queue       service.ActionQueueService
	gateway     service.ApprovalGatewayService
	chat        service.ChatService
	sessionRepo repository.ChatSessionRepository
}

// NewActionHandler 创建ActionHandler
func NewActionHandler(
	queue service.ActionQueueService,
	gateway service.ApprovalGatewayService,
	chat service.ChatService,
	sessionRepo repository.ChatSessionRepository,
) *ActionHandler {
	return &ActionHandler{
		queue:       queue,
		gateway:     gateway,
		chat:        chat,
		sessionRepo: sessionRepo,
	}
}

// List 动作列表：带 session_uuid 时列该会话的全部动作，否则列本人待审批动作
//
// 路由: GET /agent/actions
func (h *ActionHandler) List(c *gin.Context) {
	var req agentRequest.ActionListRequest
	if err := c.BindQuery(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	uuid := strings.TrimSpace(c.GetString("uuid"))
	if uuid == "" {
		back.Error(c, xerr.Unauthorized, "未登录")
		return
	}

	ctx := c.Request.Context()
	var (
		actions []*entity.PendingAction
		err     error
	)
	sessionUuid := strings.TrimSpace(req.SessionUuid)
	if sessionUuid != "" {
		session, serr := h.sessionRepo.GetSessionByUuid(ctx, sessionUuid)
		if serr != nil {
			back.Result(c, nil, serr)
			return
		}
		if session == nil || session.AdminUserId != uuid {
			back.Error(c, xerr.NotFound, "会话不存在")
			return
		}
		actions, err = h.queue.ListBySession(ctx, session.Id, req.Limit, req.Offset)
	} else {
		actions, err = h.queue.ListPendingByRequester(ctx, uuid, req.Limit, req.Offset)
	}
	if err != nil {
		back.Result(c, nil, err)
		return
	}

	out := &respond.ActionListRespond{Actions: make([]respond.PendingActionRespond, 0, len(actions))}
	for _, action := range actions {
		out.Actions = append(out.Actions, *service.ToPendingActionRespond(action, sessionUuid))
	}
	back.Result(c, out, nil)
}

// Get 单个动作详情
//
// 路由: GET /agent/actions/:actionUuid
func (h *ActionHandler) Get(c *gin.Context) {
	uuid := strings.TrimSpace(c.GetString("uuid"))
	actionUuid := strings.TrimSpace(c.Param("actionUuid"))
	if uuid == "" || actionUuid == "" {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	action, err := h.queue.GetAction(c.Request.Context(), actionUuid)
	if err == entity.ErrUnknownReference {
		back.Error(c, xerr.ErrActionNotFound.Code, xerr.ErrActionNotFound.Message)
		return
	}
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Result(c, service.ToPendingActionRespond(action, ""), nil)
}

// Decide 管理后台直接裁决，approve 即执行并续跑被挂起的对话轮次
//
// 路由: POST /agent/actions/:actionUuid/decide
func (h *ActionHandler) Decide(c *gin.Context) {
	var req agentRequest.DecisionRequest
	if err := c.BindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	uuid := strings.TrimSpace(c.GetString("uuid"))
	actionUuid := strings.TrimSpace(c.Param("actionUuid"))
	if uuid == "" || actionUuid == "" {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	ctx := c.Request.Context()
	action, err := h.gateway.Decide(ctx, actionUuid, req.Decision, uuid)
	switch err {
	case nil:
	case entity.ErrUnknownReference:
		back.Error(c, xerr.ErrActionNotFound.Code, xerr.ErrActionNotFound.Message)
		return
	case entity.ErrActionExpired:
		back.Error(c, xerr.ErrActionExpired.Code, xerr.ErrActionExpired.Message)
		return
	case entity.ErrInvalidTransition:
		back.Error(c, xerr.ErrActionResolved.Code, xerr.ErrActionResolved.Message)
		return
	default:
		back.Result(c, nil, err)
		return
	}

	// 动作到了终态就续跑对话，失败不影响裁决结果
	if action != nil && action.IsTerminal() {
		if _, rerr := h.chat.ResumeOnDecision(ctx, action); rerr != nil {
			zlog.Error("resume after decision failed",
				zap.String("action_uuid", action.ActionUuid),
				zap.Error(rerr))
		}
	}
	back.Result(c, service.ToPendingActionRespond(action, ""), nil)
}
