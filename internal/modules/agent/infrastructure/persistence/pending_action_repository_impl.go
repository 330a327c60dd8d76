package persistence

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/internal/modules/agent/domain/repository"

	"gorm.io/gorm"
)

type pendingActionRepositoryImpl struct {
	db *gorm.DB
}

func NewPendingActionRepository(db *gorm.DB) repository.PendingActionRepository {
	return &pendingActionRepositoryImpl{db: db}
}

func (r *pendingActionRepositoryImpl) CreateAction(ctx context.Context, action *entity.PendingAction) error {
	now := time.Now()
	if action.Status == "" {
		action.Status = entity.ActionStatusPending
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = now
	}
	action.UpdatedAt = now
	return wrapDB(r.db.WithContext(ctx).Create(action).Error)
}

func (r *pendingActionRepositoryImpl) GetByUuid(ctx context.Context, actionUuid string) (*entity.PendingAction, error) {
	actionUuid = strings.TrimSpace(actionUuid)
	if actionUuid == "" {
		return nil, nil
	}

	var action entity.PendingAction
	err := r.db.WithContext(ctx).
		Where("action_uuid = ?", actionUuid).
		Take(&action).Error
	if err == nil {
		return &action, nil
	}
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return nil, wrapDB(err)
}

func (r *pendingActionRepositoryImpl) GetByExternalRef(ctx context.Context, externalRef string) (*entity.PendingAction, error) {
	externalRef = strings.TrimSpace(externalRef)
	if externalRef == "" {
		return nil, nil
	}

	var action entity.PendingAction
	err := r.db.WithContext(ctx).
		Where("external_ref = ?", externalRef).
		Take(&action).Error
	if err == nil {
		return &action, nil
	}
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return nil, wrapDB(err)
}

func (r *pendingActionRepositoryImpl) AttachExternalRef(ctx context.Context, actionUuid, externalRef string) error {
	res := r.db.WithContext(ctx).Model(&entity.PendingAction{}).
		Where("action_uuid = ? AND status = ?", actionUuid, entity.ActionStatusPending).
		Updates(map[string]interface{}{
			"external_ref": sql.NullString{String: externalRef, Valid: externalRef != ""},
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return wrapDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return entity.ErrInvalidTransition
	}
	return nil
}

// TransitionStatus 条件更新实现 CAS：WHERE 带上期望的当前状态，
// 影响行数为 0 即说明状态已被并发方迁走
func (r *pendingActionRepositoryImpl) TransitionStatus(ctx context.Context, actionUuid, fromStatus, toStatus string, update repository.ActionUpdate) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     toStatus,
		"updated_at": now,
	}
	if update.ResultJson != "" {
		updates["result_json"] = update.ResultJson
	}
	if update.ErrorMsg != "" {
		updates["error_msg"] = update.ErrorMsg
	}
	if update.ResolvedBy != "" {
		updates["resolved_by"] = update.ResolvedBy
	}
	switch toStatus {
	case entity.ActionStatusApproved, entity.ActionStatusRejected, entity.ActionStatusExpired:
		updates["resolved_at"] = sql.NullTime{Time: now, Valid: true}
	}

	res := r.db.WithContext(ctx).Model(&entity.PendingAction{}).
		Where("action_uuid = ? AND status = ?", actionUuid, fromStatus).
		Updates(updates)
	if res.Error != nil {
		return wrapDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return entity.ErrInvalidTransition
	}
	return nil
}

func (r *pendingActionRepositoryImpl) ListExpired(ctx context.Context, now time.Time, limit int) ([]*entity.PendingAction, error) {
	if limit <= 0 {
		limit = 100
	}

	var actions []*entity.PendingAction
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", entity.ActionStatusPending, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&actions).Error
	return actions, wrapDB(err)
}

func (r *pendingActionRepositoryImpl) ListBySession(ctx context.Context, sessionId int64, limit, offset int) ([]*entity.PendingAction, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var actions []*entity.PendingAction
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&actions).Error
	return actions, wrapDB(err)
}

func (r *pendingActionRepositoryImpl) ListPendingByRequester(ctx context.Context, requesterId string, limit, offset int) ([]*entity.PendingAction, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var actions []*entity.PendingAction
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND status = ?", requesterId, entity.ActionStatusPending).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&actions).Error
	return actions, wrapDB(err)
}

func (r *pendingActionRepositoryImpl) DeleteBySession(ctx context.Context, sessionId int64) error {
	return wrapDB(r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Delete(&entity.PendingAction{}).Error)
}
