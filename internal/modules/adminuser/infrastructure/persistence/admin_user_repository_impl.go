package persistence

import (
	"context"
	"time"

	"StorePilot/internal/modules/adminuser/domain/entity"
	"StorePilot/internal/modules/adminuser/domain/repository"

	"gorm.io/gorm"
)

type adminUserRepositoryImpl struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) repository.AdminUserRepository {
	return &adminUserRepositoryImpl{db: db}
}

func (r *adminUserRepositoryImpl) CreateAdminUser(ctx context.Context, user *entity.AdminUser) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *adminUserRepositoryImpl) GetByUsername(ctx context.Context, username string) (*entity.AdminUser, error) {
	var user entity.AdminUser
	err := r.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if err == nil {
		return &user, nil
	}
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return nil, err
}

func (r *adminUserRepositoryImpl) GetByUuid(ctx context.Context, uuid string) (*entity.AdminUser, error) {
	var user entity.AdminUser
	err := r.db.WithContext(ctx).Where("uuid = ?", uuid).Take(&user).Error
	if err == nil {
		return &user, nil
	}
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return nil, err
}
