package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"StorePilot/internal/modules/agent/domain/entity"
)

// 审批按钮的 action_id 前缀，回调按前缀分流
const (
	ApproveActionPrefix = "approve_"
	RejectActionPrefix  = "reject_"
)

// Block Slack Block Kit 消息块
type Block map[string]interface{}

// BuildApprovalBlocks 待审批卡片：动作摘要、参数明细和两个按钮
func BuildApprovalBlocks(action *entity.PendingAction) []Block {
	return []Block{
		{
			"type": "section",
			"text": map[string]string{
				"type": "mrkdwn",
				"text": fmt.Sprintf(":bell: *审批请求* — `%s`\n%s", action.ToolName, action.Summary),
			},
		},
		{
			"type": "section",
			"text": map[string]string{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*参数*\n```%s```\n*申请人*: %s\n*有效期至*: %s",
					prettyArgs(action.ArgumentsJson),
					action.RequesterId,
					action.ExpiresAt.Format("2006-01-02 15:04:05")),
			},
		},
		{
			"type": "actions",
			"elements": []map[string]interface{}{
				{
					"type":      "button",
					"action_id": ApproveActionPrefix + action.ActionUuid,
					"style":     "primary",
					"text":      map[string]string{"type": "plain_text", "text": "批准"},
					"value":     action.ActionUuid,
				},
				{
					"type":      "button",
					"action_id": RejectActionPrefix + action.ActionUuid,
					"style":     "danger",
					"text":      map[string]string{"type": "plain_text", "text": "拒绝"},
					"value":     action.ActionUuid,
				},
			},
		},
	}
}

// BuildResolvedBlocks 终态卡片：按钮去掉，只保留结果说明
func BuildResolvedBlocks(action *entity.PendingAction) []Block {
	return []Block{
		{
			"type": "section",
			"text": map[string]string{
				"type": "mrkdwn",
				"text": fmt.Sprintf("%s *%s* — `%s`\n%s", statusEmoji(action.Status), statusLabel(action.Status), action.ToolName, action.Summary),
			},
		},
		{
			"type": "context",
			"elements": []map[string]interface{}{
				{
					"type": "mrkdwn",
					"text": resolvedFooter(action),
				},
			},
		},
	}
}

func statusEmoji(status string) string {
	switch status {
	case entity.ActionStatusApproved, entity.ActionStatusExecuted:
		return ":white_check_mark:"
	case entity.ActionStatusRejected:
		return ":no_entry:"
	case entity.ActionStatusExpired:
		return ":hourglass:"
	case entity.ActionStatusFailed:
		return ":x:"
	}
	return ":grey_question:"
}

func statusLabel(status string) string {
	switch status {
	case entity.ActionStatusApproved:
		return "已批准"
	case entity.ActionStatusExecuted:
		return "已执行"
	case entity.ActionStatusRejected:
		return "已拒绝"
	case entity.ActionStatusExpired:
		return "已过期"
	case entity.ActionStatusFailed:
		return "执行失败"
	}
	return status
}

func resolvedFooter(action *entity.PendingAction) string {
	var parts []string
	if action.ResolvedBy != "" {
		parts = append(parts, "处理人: "+action.ResolvedBy)
	}
	if action.ResolvedAt.Valid {
		parts = append(parts, "时间: "+action.ResolvedAt.Time.Format("2006-01-02 15:04:05"))
	}
	if action.ErrorMsg != "" {
		parts = append(parts, "错误: "+action.ErrorMsg)
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, " | ")
}

func prettyArgs(argsJSON string) string {
	var v interface{}
	if err := json.Unmarshal([]byte(argsJSON), &v); err != nil {
		return argsJSON
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return argsJSON
	}
	return string(pretty)
}
