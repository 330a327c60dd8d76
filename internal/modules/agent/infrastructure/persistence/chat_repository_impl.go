package persistence

import (
	"context"
	"strings"
	"time"

	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/internal/modules/agent/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type chatSessionRepositoryImpl struct {
	db *gorm.DB
}

func NewChatSessionRepository(db *gorm.DB) repository.ChatSessionRepository {
	return &chatSessionRepositoryImpl{db: db}
}

func (r *chatSessionRepositoryImpl) CreateSession(ctx context.Context, session *entity.ChatSession) error {
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	return wrapDB(r.db.WithContext(ctx).Create(session).Error)
}

func (r *chatSessionRepositoryImpl) GetSessionByUuid(ctx context.Context, sessionUuid string) (*entity.ChatSession, error) {
	sessionUuid = strings.TrimSpace(sessionUuid)
	if sessionUuid == "" {
		return nil, nil
	}

	var session entity.ChatSession
	err := r.db.WithContext(ctx).
		Where("session_uuid = ?", sessionUuid).
		Take(&session).Error
	if err == nil {
		return &session, nil
	}
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return nil, wrapDB(err)
}

func (r *chatSessionRepositoryImpl) GetSessionById(ctx context.Context, sessionId int64) (*entity.ChatSession, error) {
	if sessionId <= 0 {
		return nil, nil
	}

	var session entity.ChatSession
	err := r.db.WithContext(ctx).
		Where("id = ?", sessionId).
		Take(&session).Error
	if err == nil {
		return &session, nil
	}
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return nil, wrapDB(err)
}

func (r *chatSessionRepositoryImpl) ListSessions(ctx context.Context, adminUserId string, limit, offset int) ([]*entity.ChatSession, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var sessions []*entity.ChatSession
	err := r.db.WithContext(ctx).
		Where("admin_user_id = ?", adminUserId).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error
	return sessions, wrapDB(err)
}

func (r *chatSessionRepositoryImpl) UpdateSessionTitle(ctx context.Context, sessionId int64, title string) error {
	return wrapDB(r.db.WithContext(ctx).Model(&entity.ChatSession{}).
		Where("id = ?", sessionId).
		Updates(map[string]interface{}{
			"title":      title,
			"updated_at": time.Now(),
		}).Error)
}

func (r *chatSessionRepositoryImpl) TouchSession(ctx context.Context, sessionId int64) error {
	return wrapDB(r.db.WithContext(ctx).Model(&entity.ChatSession{}).
		Where("id = ?", sessionId).
		Update("updated_at", time.Now()).Error)
}

func (r *chatSessionRepositoryImpl) DeleteSession(ctx context.Context, sessionId int64) error {
	return wrapDB(r.db.WithContext(ctx).
		Where("id = ?", sessionId).
		Delete(&entity.ChatSession{}).Error)
}

type chatMessageRepositoryImpl struct {
	db *gorm.DB
}

func NewChatMessageRepository(db *gorm.DB) repository.ChatMessageRepository {
	return &chatMessageRepositoryImpl{db: db}
}

func (r *chatMessageRepositoryImpl) AppendMessage(ctx context.Context, msg *entity.ChatMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	return wrapDB(r.db.WithContext(ctx).Create(msg).Error)
}

func (r *chatMessageRepositoryImpl) ListMessages(ctx context.Context, sessionId int64, limit, offset int) ([]*entity.ChatMessage, error) {
	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	var msgs []*entity.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	return msgs, wrapDB(err)
}

func (r *chatMessageRepositoryImpl) CountMessages(ctx context.Context, sessionId int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.ChatMessage{}).
		Where("session_id = ?", sessionId).
		Count(&total).Error
	return total, wrapDB(err)
}

func (r *chatMessageRepositoryImpl) DeleteBySession(ctx context.Context, sessionId int64) error {
	return wrapDB(r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Delete(&entity.ChatMessage{}).Error)
}

type chatMetricsRepositoryImpl struct {
	db *gorm.DB
}

func NewChatMetricsRepository(db *gorm.DB) repository.ChatMetricsRepository {
	return &chatMetricsRepositoryImpl{db: db}
}

// AddUsage 使用 GORM 的 OnConflict 实现 upsert（对应 MySQL 的 ON DUPLICATE KEY UPDATE），
// 计数列只做加法，保证单调递增
func (r *chatMetricsRepositoryImpl) AddUsage(ctx context.Context, sessionId int64, delta repository.MetricsDelta) error {
	now := time.Now()
	row := entity.ChatSessionMetrics{
		SessionId:        sessionId,
		PromptTokens:     delta.PromptTokens,
		CompletionTokens: delta.CompletionTokens,
		TotalTokens:      delta.TotalTokens,
		ModelCalls:       delta.ModelCalls,
		ToolCalls:        delta.ToolCalls,
		TotalDurationMs:  delta.DurationMs,
		UpdatedAt:        now,
	}
	return wrapDB(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"prompt_tokens":     gorm.Expr("prompt_tokens + ?", delta.PromptTokens),
			"completion_tokens": gorm.Expr("completion_tokens + ?", delta.CompletionTokens),
			"total_tokens":      gorm.Expr("total_tokens + ?", delta.TotalTokens),
			"model_calls":       gorm.Expr("model_calls + ?", delta.ModelCalls),
			"tool_calls":        gorm.Expr("tool_calls + ?", delta.ToolCalls),
			"total_duration_ms": gorm.Expr("total_duration_ms + ?", delta.DurationMs),
			"updated_at":        now,
		}),
	}).Create(&row).Error)
}

func (r *chatMetricsRepositoryImpl) GetBySession(ctx context.Context, sessionId int64) (*entity.ChatSessionMetrics, error) {
	var m entity.ChatSessionMetrics
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Take(&m).Error
	if err == nil {
		return &m, nil
	}
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return nil, wrapDB(err)
}

func (r *chatMetricsRepositoryImpl) DeleteBySession(ctx context.Context, sessionId int64) error {
	return wrapDB(r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Delete(&entity.ChatSessionMetrics{}).Error)
}
