package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"StorePilot/internal/config"
	"StorePilot/internal/modules/agent/application/dto/request"
	"StorePilot/internal/modules/agent/application/dto/respond"
	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/internal/modules/agent/domain/repository"
	"StorePilot/internal/modules/agent/domain/tool"
	"StorePilot/internal/modules/agent/infrastructure/commerce"
	"StorePilot/pkg/redis"
	"StorePilot/pkg/util"
	"StorePilot/pkg/zlog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

// 会话回复状态
const (
	ChatStatusCompleted        = "completed"
	ChatStatusAwaitingApproval = "awaiting_approval"
	ChatStatusFailed           = "failed"
)

// 模型调用失败重试一次前的退避
const generateRetryBackoff = 500 * time.Millisecond

var errSessionBusy = errors.New("session is processing another turn")

// ChatService 对话编排：路由、工具循环、审批挂起与续跑
type ChatService interface {
	// SendMessage 入口一：处理一条用户消息。命中变更类工具时入队审批并立即返回，
	// 本轮挂起
	SendMessage(ctx context.Context, adminUserId string, req request.ChatSendRequest) (*respond.ChatSendRespond, error)

	// ResumeOnDecision 入口二：动作到达终态后续跑被挂起的轮次，
	// 把执行结果（或拒绝/过期说明）交还模型生成最终回复
	ResumeOnDecision(ctx context.Context, action *entity.PendingAction) (*respond.ChatResumeRespond, error)

	// ListSessions 管理员的会话列表
	ListSessions(ctx context.Context, adminUserId string, limit, offset int) (*respond.SessionListRespond, error)

	// ListMessages 会话消息，带归属校验
	ListMessages(ctx context.Context, adminUserId, sessionUuid string, limit, offset int) (*respond.MessageListRespond, error)

	// GetMetrics 会话累计用量
	GetMetrics(ctx context.Context, adminUserId, sessionUuid string) (*respond.SessionMetricsRespond, error)

	// DeleteSession 删除会话并级联清理消息、用量与未决动作，带归属校验
	DeleteSession(ctx context.Context, adminUserId, sessionUuid string) error
}

type chatServiceImpl struct {
	sessionRepo repository.ChatSessionRepository
	messageRepo repository.ChatMessageRepository
	metricsRepo repository.ChatMetricsRepository
	router      ToolRouterService
	queue       ActionQueueService
	gateway     ApprovalGatewayService
	executor    commerce.ToolExecutor
	chatModel   model.BaseChatModel
	maxIter     int
}

// NewChatService 创建 ChatService
func NewChatService(
	sessionRepo repository.ChatSessionRepository,
	messageRepo repository.ChatMessageRepository,
	metricsRepo repository.ChatMetricsRepository,
	router ToolRouterService,
	queue ActionQueueService,
	gateway ApprovalGatewayService,
	executor commerce.ToolExecutor,
	chatModel model.BaseChatModel,
	conf *config.Config,
) ChatService {
	return &chatServiceImpl{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		metricsRepo: metricsRepo,
		router:      router,
		queue:       queue,
		gateway:     gateway,
		executor:    executor,
		chatModel:   chatModel,
		maxIter:     conf.AgentConfig.MaxToolIterations,
	}
}

func (s *chatServiceImpl) SendMessage(ctx context.Context, adminUserId string, req request.ChatSendRequest) (*respond.ChatSendRespond, error) {
	adminUserId = strings.TrimSpace(adminUserId)
	message := strings.TrimSpace(req.Message)
	if adminUserId == "" || message == "" {
		return nil, fmt.Errorf("adminUserId and message are required")
	}

	session, created, err := s.getOrCreateSession(ctx, adminUserId, req.SessionUuid, message)
	if err != nil {
		return nil, err
	}

	release, err := s.acquireTurnLock(ctx, session.SessionUuid)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.messageRepo.AppendMessage(ctx, &entity.ChatMessage{
		SessionId: session.Id,
		Role:      entity.RoleUser,
		Content:   message,
	}); err != nil {
		return nil, err
	}
	if !created {
		_ = s.sessionRepo.TouchSession(ctx, session.Id)
	}

	decision, err := s.router.Resolve(ctx, message, req.DomainHint)
	if err != nil {
		return nil, err
	}
	toolInfos := s.toolInfosFor(decision)

	outcome, err := s.runToolLoop(ctx, session, decision, message, toolInfos)
	if err != nil {
		return nil, err
	}

	resp := &respond.ChatSendRespond{
		SessionUuid: session.SessionUuid,
		Title:       session.Title,
		Status:      outcome.status,
		Reply:       outcome.reply,
	}
	if outcome.pending != nil {
		resp.PendingAction = ToPendingActionRespond(outcome.pending, session.SessionUuid)
	}
	return resp, nil
}

func (s *chatServiceImpl) ResumeOnDecision(ctx context.Context, action *entity.PendingAction) (*respond.ChatResumeRespond, error) {
	if action == nil || !action.IsTerminal() {
		return nil, entity.ErrInvalidTransition
	}

	session, err := s.sessionRepo.GetSessionById(ctx, action.SessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, entity.ErrSessionNotFound
	}

	release, err := s.acquireTurnLock(ctx, session.SessionUuid)
	if err != nil {
		return nil, err
	}
	defer release()

	// 终态作为工具结果交还模型
	toolResult := resolutionToolResult(action)
	resultPayload, _ := json.Marshal(map[string]string{
		"id":     action.ActionUuid,
		"name":   action.ToolName,
		"result": toolResult,
	})
	if err := s.messageRepo.AppendMessage(ctx, &entity.ChatMessage{
		SessionId:    session.Id,
		Role:         entity.RoleToolResult,
		Content:      toolResult,
		ToolCallJson: string(resultPayload),
	}); err != nil {
		return nil, err
	}

	// 执行成功说明路由正确，回写学习示例
	if action.Status == entity.ActionStatusExecuted {
		if query, qerr := s.lastUserQuery(ctx, session.Id); qerr == nil && query != "" {
			if cerr := s.router.ConfirmMatch(ctx, action.ToolName, query, 0, nil); cerr != nil {
				zlog.Warn("confirm match failed", zap.String("tool", action.ToolName), zap.Error(cerr))
			}
		}
	}

	history, err := s.buildModelMessages(ctx, session.Id)
	if err != nil {
		return nil, err
	}

	modelResp, err := s.callModel(ctx, session.Id, history)
	if err != nil {
		notice := s.appendTurnFailure(ctx, session.Id, err)
		return &respond.ChatResumeRespond{
			SessionUuid: session.SessionUuid,
			ActionUuid:  action.ActionUuid,
			Status:      ChatStatusFailed,
			Reply:       notice,
		}, nil
	}

	reply := modelResp.Content
	if err := s.messageRepo.AppendMessage(ctx, &entity.ChatMessage{
		SessionId: session.Id,
		Role:      entity.RoleAssistant,
		Content:   reply,
	}); err != nil {
		return nil, err
	}
	_ = s.sessionRepo.TouchSession(ctx, session.Id)

	return &respond.ChatResumeRespond{
		SessionUuid: session.SessionUuid,
		ActionUuid:  action.ActionUuid,
		Status:      ChatStatusCompleted,
		Reply:       reply,
	}, nil
}

type turnOutcome struct {
	status  string
	reply   string
	pending *entity.PendingAction
}

// runToolLoop 工具循环：模型每要求一次工具调用就执行并回填结果，
// 直到产生纯文本回复或命中变更类工具挂起
func (s *chatServiceImpl) runToolLoop(ctx context.Context, session *entity.ChatSession, decision *RouteDecision, query string, toolInfos []*schema.ToolInfo) (*turnOutcome, error) {
	for iter := 0; iter < s.maxIter; iter++ {
		history, err := s.buildModelMessages(ctx, session.Id)
		if err != nil {
			return nil, err
		}

		var opts []model.Option
		if len(toolInfos) > 0 {
			opts = append(opts, model.WithTools(toolInfos))
		}
		modelResp, err := s.callModel(ctx, session.Id, history, opts...)
		if err != nil {
			notice := s.appendTurnFailure(ctx, session.Id, err)
			return &turnOutcome{status: ChatStatusFailed, reply: notice}, nil
		}

		if len(modelResp.ToolCalls) == 0 {
			reply := modelResp.Content
			if err := s.messageRepo.AppendMessage(ctx, &entity.ChatMessage{
				SessionId: session.Id,
				Role:      entity.RoleAssistant,
				Content:   reply,
			}); err != nil {
				return nil, err
			}
			_ = s.sessionRepo.TouchSession(ctx, session.Id)
			return &turnOutcome{status: ChatStatusCompleted, reply: reply}, nil
		}

		tc := modelResp.ToolCalls[0]
		toolName := strings.TrimSpace(tc.Function.Name)
		argsJSON := tc.Function.Arguments
		if argsJSON == "" {
			argsJSON = "{}"
		}

		invocationPayload, _ := json.Marshal(map[string]string{
			"id":        tc.ID,
			"name":      toolName,
			"arguments": argsJSON,
		})
		invocationMsg := &entity.ChatMessage{
			SessionId:    session.Id,
			Role:         entity.RoleToolInvocation,
			Content:      modelResp.Content,
			ToolCallJson: string(invocationPayload),
		}
		if err := s.messageRepo.AppendMessage(ctx, invocationMsg); err != nil {
			return nil, err
		}

		if tool.IsMutating(toolName) {
			// 变更类工具：入队审批并挂起本轮，动作带上触发它的调用消息
			action, err := s.queue.Enqueue(ctx, session.Id, invocationMsg.Id, session.AdminUserId, toolName, argsJSON, actionSummary(toolName, query))
			if err != nil {
				return nil, err
			}
			s.gateway.RequestApproval(ctx, action)

			notice := fmt.Sprintf("该操作（%s）需要人工审批，已提交审批队列，批准后会自动执行并回复结果。", toolName)
			if err := s.messageRepo.AppendMessage(ctx, &entity.ChatMessage{
				SessionId: session.Id,
				Role:      entity.RoleAssistant,
				Content:   notice,
			}); err != nil {
				return nil, err
			}
			_ = s.sessionRepo.TouchSession(ctx, session.Id)
			return &turnOutcome{status: ChatStatusAwaitingApproval, reply: notice, pending: action}, nil
		}

		// 读类工具直接执行
		result, execErr := s.executor.Execute(ctx, toolName, argsJSON)
		if execErr != nil {
			result = fmt.Sprintf(`{"error": %q}`, execErr.Error())
		}
		resultPayload, _ := json.Marshal(map[string]string{
			"id":     tc.ID,
			"name":   toolName,
			"result": result,
		})
		if err := s.messageRepo.AppendMessage(ctx, &entity.ChatMessage{
			SessionId:    session.Id,
			Role:         entity.RoleToolResult,
			Content:      result,
			ToolCallJson: string(resultPayload),
		}); err != nil {
			return nil, err
		}

		if execErr == nil && decision != nil && decision.Outcome == RouteConfident &&
			len(decision.Candidates) > 0 && decision.Candidates[0].ToolName == toolName {
			if cerr := s.router.ConfirmMatch(ctx, toolName, query, decision.Candidates[0].ExampleId, decision.Embedding); cerr != nil {
				zlog.Warn("confirm match failed", zap.String("tool", toolName), zap.Error(cerr))
			}
			// 只学习一次
			decision = nil
		}
	}

	return nil, entity.ErrToolLoopExceeded
}

// toolInfosFor 路由三态对应的候选工具集：
// confident 只带命中的工具，ambiguous 带全部候选，no_match 回落到完整目录
func (s *chatServiceImpl) toolInfosFor(decision *RouteDecision) []*schema.ToolInfo {
	switch decision.Outcome {
	case RouteConfident:
		return tool.Infos(decision.Candidates[0].ToolName)
	case RouteAmbiguous:
		names := make([]string, 0, len(decision.Candidates))
		for _, c := range decision.Candidates {
			names = append(names, c.ToolName)
		}
		return tool.Infos(names...)
	default:
		return tool.AllInfos()
	}
}

func (s *chatServiceImpl) getOrCreateSession(ctx context.Context, adminUserId, sessionUuid, firstMessage string) (*entity.ChatSession, bool, error) {
	sessionUuid = strings.TrimSpace(sessionUuid)
	if sessionUuid != "" {
		session, err := s.sessionRepo.GetSessionByUuid(ctx, sessionUuid)
		if err != nil {
			return nil, false, err
		}
		if session == nil {
			return nil, false, entity.ErrSessionNotFound
		}
		if session.AdminUserId != adminUserId {
			return nil, false, entity.ErrSessionNotFound
		}
		return session, false, nil
	}

	session := &entity.ChatSession{
		SessionUuid: util.GenerateUUID(),
		AdminUserId: adminUserId,
		Title:       GenerateTitle(firstMessage),
	}
	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, false, err
	}
	return session, true, nil
}

// acquireTurnLock 同一会话同一时刻只处理一轮，短暂退避后重试一次
func (s *chatServiceImpl) acquireTurnLock(ctx context.Context, sessionUuid string) (func(), error) {
	if !redis.IsConnected() {
		return func() {}, nil
	}

	key := "agent:turn:" + sessionUuid
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := redis.SetNX(ctx, key, 1, 2*time.Minute)
		if err != nil {
			zlog.Warn("turn lock acquire failed", zap.String("session", sessionUuid), zap.Error(err))
			return func() {}, nil
		}
		if ok {
			return func() {
				_, _ = redis.Del(context.Background(), key)
			}, nil
		}
		if attempt == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}
	}
	return nil, errSessionBusy
}

// buildModelMessages 把会话历史转成模型消息，
// tool_invocation/tool_result 角色还原为带 tool_calls 的 assistant 消息和 tool 消息
func (s *chatServiceImpl) buildModelMessages(ctx context.Context, sessionId int64) ([]*schema.Message, error) {
	stored, err := s.messageRepo.ListMessages(ctx, sessionId, 0, 0)
	if err != nil {
		return nil, err
	}

	msgs := []*schema.Message{
		{Role: schema.System, Content: systemPrompt()},
	}
	for _, m := range stored {
		switch m.Role {
		case entity.RoleUser:
			msgs = append(msgs, &schema.Message{Role: schema.User, Content: m.Content})
		case entity.RoleAssistant:
			msgs = append(msgs, &schema.Message{Role: schema.Assistant, Content: m.Content})
		case entity.RoleToolInvocation:
			var payload struct {
				Id        string `json:"id"`
				Name      string `json:"name"`
				Arguments string `json:"arguments"`
			}
			if err := json.Unmarshal([]byte(m.ToolCallJson), &payload); err != nil {
				continue
			}
			msgs = append(msgs, &schema.Message{
				Role:    schema.Assistant,
				Content: m.Content,
				ToolCalls: []schema.ToolCall{
					{
						ID: payload.Id,
						Function: schema.FunctionCall{
							Name:      payload.Name,
							Arguments: payload.Arguments,
						},
					},
				},
			})
		case entity.RoleToolResult:
			var payload struct {
				Id     string `json:"id"`
				Result string `json:"result"`
			}
			if err := json.Unmarshal([]byte(m.ToolCallJson), &payload); err != nil {
				continue
			}
			msgs = append(msgs, &schema.Message{
				Role:       schema.Tool,
				Content:    payload.Result,
				ToolCallID: payload.Id,
			})
		}
	}
	return msgs, nil
}

// callModel 调用模型并计量本次耗时。瞬时失败退避后重试一次，
// 成功与否都把用量落到会话累计里
func (s *chatServiceImpl) callModel(ctx context.Context, sessionId int64, history []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	start := time.Now()
	calls := int64(1)
	resp, err := s.chatModel.Generate(ctx, history, opts...)
	if err != nil {
		zlog.Warn("model call failed, retrying once", zap.Int64("session_id", sessionId), zap.Error(err))
		time.Sleep(generateRetryBackoff)
		calls++
		resp, err = s.chatModel.Generate(ctx, history, opts...)
	}

	var toolCalls int64
	if resp != nil {
		toolCalls = int64(len(resp.ToolCalls))
	}
	s.recordUsage(ctx, sessionId, resp, calls, toolCalls, time.Since(start).Milliseconds())
	return resp, err
}

// appendTurnFailure 模型最终失败时把原因落成对话消息，轮次以 failed 状态收尾
func (s *chatServiceImpl) appendTurnFailure(ctx context.Context, sessionId int64, cause error) string {
	notice := fmt.Sprintf("本轮处理失败：模型服务暂时不可用（%s），请稍后重试。", cause.Error())
	if err := s.messageRepo.AppendMessage(ctx, &entity.ChatMessage{
		SessionId: sessionId,
		Role:      entity.RoleAssistant,
		Content:   notice,
	}); err != nil {
		zlog.Error("append failure notice failed", zap.Int64("session_id", sessionId), zap.Error(err))
	}
	return notice
}

func (s *chatServiceImpl) recordUsage(ctx context.Context, sessionId int64, resp *schema.Message, calls, toolCalls, durationMs int64) {
	delta := repository.MetricsDelta{ModelCalls: calls, ToolCalls: toolCalls, DurationMs: durationMs}
	if resp != nil && resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		usage := resp.ResponseMeta.Usage
		delta.PromptTokens = int64(usage.PromptTokens)
		delta.CompletionTokens = int64(usage.CompletionTokens)
		delta.TotalTokens = int64(usage.TotalTokens)
	}
	if err := s.metricsRepo.AddUsage(ctx, sessionId, delta); err != nil {
		zlog.Error("record usage failed", zap.Int64("session_id", sessionId), zap.Error(err))
	}
}

func (s *chatServiceImpl) lastUserQuery(ctx context.Context, sessionId int64) (string, error) {
	msgs, err := s.messageRepo.ListMessages(ctx, sessionId, 0, 0)
	if err != nil {
		return "", err
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == entity.RoleUser {
			return msgs[i].Content, nil
		}
	}
	return "", nil
}

func (s *chatServiceImpl) ListSessions(ctx context.Context, adminUserId string, limit, offset int) (*respond.SessionListRespond, error) {
	sessions, err := s.sessionRepo.ListSessions(ctx, adminUserId, limit, offset)
	if err != nil {
		return nil, err
	}
	out := &respond.SessionListRespond{Sessions: make([]respond.SessionRespond, 0, len(sessions))}
	for _, sess := range sessions {
		out.Sessions = append(out.Sessions, respond.SessionRespond{
			SessionUuid: sess.SessionUuid,
			Title:       sess.Title,
			CreatedAt:   sess.CreatedAt,
			UpdatedAt:   sess.UpdatedAt,
		})
	}
	return out, nil
}

func (s *chatServiceImpl) ListMessages(ctx context.Context, adminUserId, sessionUuid string, limit, offset int) (*respond.MessageListRespond, error) {
	session, err := s.ownedSession(ctx, adminUserId, sessionUuid)
	if err != nil {
		return nil, err
	}

	msgs, err := s.messageRepo.ListMessages(ctx, session.Id, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.messageRepo.CountMessages(ctx, session.Id)
	if err != nil {
		return nil, err
	}

	out := &respond.MessageListRespond{Total: total, Messages: make([]respond.ChatMessageRespond, 0, len(msgs))}
	for _, m := range msgs {
		out.Messages = append(out.Messages, respond.ChatMessageRespond{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			ToolCall:  m.ToolCallJson,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

func (s *chatServiceImpl) GetMetrics(ctx context.Context, adminUserId, sessionUuid string) (*respond.SessionMetricsRespond, error) {
	session, err := s.ownedSession(ctx, adminUserId, sessionUuid)
	if err != nil {
		return nil, err
	}

	m, err := s.metricsRepo.GetBySession(ctx, session.Id)
	if err != nil {
		return nil, err
	}
	out := &respond.SessionMetricsRespond{SessionUuid: sessionUuid}
	if m != nil {
		out.PromptTokens = m.PromptTokens
		out.CompletionTokens = m.CompletionTokens
		out.TotalTokens = m.TotalTokens
		out.ModelCalls = m.ModelCalls
		out.ToolCalls = m.ToolCalls
		out.TotalDurationMs = m.TotalDurationMs
	}
	return out, nil
}

func (s *chatServiceImpl) DeleteSession(ctx context.Context, adminUserId, sessionUuid string) error {
	session, err := s.ownedSession(ctx, adminUserId, sessionUuid)
	if err != nil {
		return err
	}

	// 先清子表再删会话本体，中途失败时会话仍可见，重试安全
	if err := s.queue.DeleteBySession(ctx, session.Id); err != nil {
		return err
	}
	if err := s.messageRepo.DeleteBySession(ctx, session.Id); err != nil {
		return err
	}
	if err := s.metricsRepo.DeleteBySession(ctx, session.Id); err != nil {
		return err
	}
	if err := s.sessionRepo.DeleteSession(ctx, session.Id); err != nil {
		return err
	}

	zlog.Info("chat session deleted",
		zap.String("session_uuid", sessionUuid),
		zap.String("admin_user", adminUserId))
	return nil
}

func (s *chatServiceImpl) ownedSession(ctx context.Context, adminUserId, sessionUuid string) (*entity.ChatSession, error) {
	session, err := s.sessionRepo.GetSessionByUuid(ctx, sessionUuid)
	if err != nil {
		return nil, err
	}
	if session == nil || session.AdminUserId != strings.TrimSpace(adminUserId) {
		return nil, entity.ErrSessionNotFound
	}
	return session, nil
}

func systemPrompt() string {
	var b strings.Builder
	b.WriteString("你是商城管理后台的运营助手，帮管理员查询经营数据并执行管理操作。\n")
	b.WriteString("可用的业务域：\n")
	for _, d := range tool.Domains {
		b.WriteString(fmt.Sprintf("- %s: %s\n", d.Name, d.Description))
	}
	b.WriteString("需要数据时调用合适的工具；变更类操作会先进入人工审批，审批结果会以工具结果的形式回到对话里。\n")
	b.WriteString("回答使用简洁的中文。")
	return b.String()
}

// resolutionToolResult 把动作终态转成给模型的工具结果文本
func resolutionToolResult(action *entity.PendingAction) string {
	switch action.Status {
	case entity.ActionStatusExecuted:
		if action.ResultJson != "" {
			return action.ResultJson
		}
		return `{"status": "executed"}`
	case entity.ActionStatusRejected:
		return fmt.Sprintf(`{"status": "rejected", "reviewer": %q}`, action.ResolvedBy)
	case entity.ActionStatusExpired:
		return `{"status": "expired", "detail": "approval request expired before a decision was made"}`
	case entity.ActionStatusFailed:
		return fmt.Sprintf(`{"status": "failed", "error": %q}`, action.ErrorMsg)
	}
	return fmt.Sprintf(`{"status": %q}`, action.Status)
}

func actionSummary(toolName, query string) string {
	return fmt.Sprintf("%s（由查询「%s」触发）", toolName, GenerateTitle(query))
}

// GenerateTitle 用首条消息生成会话标题：超过 50 字符时在词边界截断并加省略号
func GenerateTitle(message string) string {
	const maxLen = 50
	message = strings.TrimSpace(message)
	runes := []rune(message)
	if len(runes) <= maxLen {
		return message
	}

	truncated := string(runes[:maxLen])
	if idx := strings.LastIndex(truncated, " "); idx > 0 {
		truncated = truncated[:idx]
	}
	return strings.TrimSpace(truncated) + "..."
}

func ToPendingActionRespond(action *entity.PendingAction, sessionUuid string) *respond.PendingActionRespond {
	out := &respond.PendingActionRespond{
		ActionUuid:  action.ActionUuid,
		SessionUuid: sessionUuid,
		ToolName:    action.ToolName,
		Arguments:   action.ArgumentsJson,
		Summary:     action.Summary,
		Status:      action.Status,
		Result:      action.ResultJson,
		ErrorMsg:    action.ErrorMsg,
		ResolvedBy:  action.ResolvedBy,
		ExpiresAt:   action.ExpiresAt,
		CreatedAt:   action.CreatedAt,
	}
	if action.ResolvedAt.Valid {
		t := action.ResolvedAt.Time
		out.ResolvedAt = &t
	}
	return out
}
