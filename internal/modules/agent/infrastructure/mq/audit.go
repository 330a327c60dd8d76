package mq

import (
	"context"
	"encoding/json"
	"time"

	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/pkg/zlog"

	"go.uber.org/zap"
)

// 动作审计事件类型
const (
	EventActionEnqueued = "action.enqueued"
	EventActionApproved = "action.approved"
	EventActionRejected = "action.rejected"
	EventActionExpired  = "action.expired"
	EventActionExecuted = "action.executed"
	EventActionFailed   = "action.failed"
)

// ActionEvent 动作状态变更的审计记录
type ActionEvent struct {
	EventType   string    `json:"event_type"`
	ActionUuid  string    `json:"action_uuid"`
	SessionId   int64     `json:"session_id"`
	RequesterId string    `json:"requester_id"`
	ToolName    string    `json:"tool_name"`
	Status      string    `json:"status"`
	ResolvedBy  string    `json:"resolved_by,omitempty"`
	ErrorMsg    string    `json:"error_msg,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// AuditEmitter 把动作状态变更发往 Kafka 审计主题。
// 发布失败只记日志，不影响主流程
type AuditEmitter struct {
	publisher Publisher
	topic     string
}

func NewAuditEmitter(publisher Publisher, topic string) *AuditEmitter {
	return &AuditEmitter{publisher: publisher, topic: topic}
}

func (e *AuditEmitter) EmitActionEvent(ctx context.Context, eventType string, action *entity.PendingAction) {
	if e == nil || e.publisher == nil || e.topic == "" {
		return
	}

	event := ActionEvent{
		EventType:   eventType,
		ActionUuid:  action.ActionUuid,
		SessionId:   action.SessionId,
		RequesterId: action.RequesterId,
		ToolName:    action.ToolName,
		Status:      action.Status,
		ResolvedBy:  action.ResolvedBy,
		ErrorMsg:    action.ErrorMsg,
		OccurredAt:  time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		zlog.Error("marshal action event failed", zap.Error(err))
		return
	}

	if _, err := e.publisher.Publish(ctx, Message{
		Topic: e.topic,
		Key:   []byte(action.ActionUuid),
		Value: payload,
		Headers: map[string]string{
			"event_type": eventType,
		},
	}); err != nil {
		zlog.Error("publish action event failed",
			zap.String("event_type", eventType),
			zap.String("action_uuid", action.ActionUuid),
			zap.Error(err))
	}
}
