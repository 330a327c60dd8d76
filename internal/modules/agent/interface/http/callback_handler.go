package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"StorePilot/internal/config"
	"StorePilot/internal/modules/agent/application/service"
	"StorePilot/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CallbackHandler 审批渠道（Slack 交互消息）回调
type CallbackHandler struct {
	gateway       service.ApprovalGatewayService
	chat          service.ChatService
	signingSecret string
}

// NewCallbackHandler 创建CallbackHandler
func NewCallbackHandler(gateway service.ApprovalGatewayService, chat service.ChatService, conf *config.Config) *CallbackHandler {
	return &CallbackHandler{
		gateway:       gateway,
		chat:          chat,
		signingSecret: conf.NotifyConfig.SigningSecret,
	}
}

type interactionPayload struct {
	Type string `json:"type"`
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Name     string `json:"name"`
	} `json:"user"`
	Actions []struct {
		ActionID string `json:"action_id"`
		Value    string `json:"value"`
	} `json:"actions"`
}

// Interact 处理按钮点击。渠道要求 3 秒内响应且失败时不应重发错误给用户，
// 所以这里吞掉业务错误、始终回 200，问题记日志
//
// 路由: POST /agent/callbacks/slack
func (h *CallbackHandler) Interact(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.Status(http.StatusOK)
		return
	}

	if !h.verifySignature(c, body) {
		zlog.Warn("slack callback signature mismatch")
		c.Status(http.StatusUnauthorized)
		return
	}

	// 交互回调是表单编码，payload 字段里才是 JSON
	values, err := url.ParseQuery(string(body))
	if err != nil {
		c.Status(http.StatusOK)
		return
	}
	var payload interactionPayload
	if err := json.Unmarshal([]byte(values.Get("payload")), &payload); err != nil {
		zlog.Warn("slack callback payload parse failed", zap.Error(err))
		c.Status(http.StatusOK)
		return
	}
	if len(payload.Actions) == 0 {
		c.Status(http.StatusOK)
		return
	}

	reviewer := payload.User.Username
	if reviewer == "" {
		reviewer = payload.User.Name
	}
	if reviewer == "" {
		reviewer = payload.User.ID
	}

	ctx := c.Request.Context()
	action, err := h.gateway.DecideByCallback(ctx, payload.Actions[0].ActionID, reviewer)
	if err != nil {
		zlog.Warn("slack callback decision failed",
			zap.String("action_id", payload.Actions[0].ActionID),
			zap.Error(err))
		c.Status(http.StatusOK)
		return
	}

	if action != nil && action.IsTerminal() {
		if _, rerr := h.chat.ResumeOnDecision(ctx, action); rerr != nil {
			zlog.Error("resume after callback failed",
				zap.String("action_uuid", action.ActionUuid),
				zap.Error(rerr))
		}
	}
	c.Status(http.StatusOK)
}

// verifySignature Slack v0 签名校验，未配置 secret 时跳过
func (h *CallbackHandler) verifySignature(c *gin.Context, body []byte) bool {
	if h.signingSecret == "" {
		return true
	}

	ts := c.GetHeader("X-Slack-Request-Timestamp")
	sig := c.GetHeader("X-Slack-Signature")
	if ts == "" || sig == "" {
		return false
	}
	tsInt, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || math.Abs(float64(time.Now().Unix()-tsInt)) > 300 {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.signingSecret))
	mac.Write([]byte("v0:" + ts + ":"))
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(sig)))
}
