package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"StorePilot/internal/config"
	"StorePilot/internal/modules/agent/domain/entity"
)

// SlackNotifier 通过 Slack Web API 发送和改写审批卡片，
// external_ref 形如 "channel:ts"
type SlackNotifier struct {
	botToken string
	channel  string
	baseURL  string
	httpCli  *http.Client
}

var _ Notifier = (*SlackNotifier)(nil)

func NewSlackNotifier(conf *config.Config) *SlackNotifier {
	baseURL := strings.TrimRight(conf.NotifyConfig.APIBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://slack.com/api"
	}
	timeout := 10 * time.Second
	if conf.NotifyConfig.TimeoutSeconds > 0 {
		timeout = time.Duration(conf.NotifyConfig.TimeoutSeconds) * time.Second
	}
	return &SlackNotifier{
		botToken: conf.NotifyConfig.BotToken,
		channel:  conf.NotifyConfig.Channel,
		baseURL:  baseURL,
		httpCli:  &http.Client{Timeout: timeout},
	}
}

type slackResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

func (n *SlackNotifier) PostApprovalCard(ctx context.Context, action *entity.PendingAction) (string, error) {
	payload := map[string]interface{}{
		"channel": n.channel,
		"text":    fmt.Sprintf("审批请求: %s", action.ToolName),
		"blocks":  BuildApprovalBlocks(action),
	}
	resp, err := n.call(ctx, "chat.postMessage", payload)
	if err != nil {
		return "", err
	}
	return resp.Channel + ":" + resp.TS, nil
}

func (n *SlackNotifier) UpdateCard(ctx context.Context, externalRef string, action *entity.PendingAction) error {
	channel, ts, ok := SplitExternalRef(externalRef)
	if !ok {
		return entity.ErrUnknownReference
	}
	payload := map[string]interface{}{
		"channel": channel,
		"ts":      ts,
		"text":    fmt.Sprintf("审批请求: %s（%s）", action.ToolName, statusLabel(action.Status)),
		"blocks":  BuildResolvedBlocks(action),
	}
	_, err := n.call(ctx, "chat.update", payload)
	return err
}

// SplitExternalRef 解析 "channel:ts" 形式的消息标识
func SplitExternalRef(externalRef string) (channel, ts string, ok bool) {
	idx := strings.LastIndex(externalRef, ":")
	if idx <= 0 || idx == len(externalRef)-1 {
		return "", "", false
	}
	return externalRef[:idx], externalRef[idx+1:], true
}

func (n *SlackNotifier) call(ctx context.Context, method string, payload interface{}) (*slackResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/"+method, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+n.botToken)

	httpResp, err := n.httpCli.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var resp slackResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("slack %s: invalid response: %w", method, err)
	}
	if !resp.OK {
		return nil, fmt.Errorf("slack %s failed: %s", method, resp.Error)
	}
	return &resp, nil
}
